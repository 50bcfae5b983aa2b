package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitBurst(t *testing.T) {
	handler := RateLimit(rate.Limit(0), 3)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", w.Code)
	}
}

func TestRateLimitPerClient(t *testing.T) {
	handler := RateLimit(rate.Limit(0), 1)(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	first.RemoteAddr = "10.0.0.1:5000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for first client, got %d", w.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Fatalf("other clients must have their own bucket, got %d", w.Code)
	}
}

func TestRateLimitExemptsStaticRoutes(t *testing.T) {
	handler := RateLimit(rate.Limit(0), 1)(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/uploads/property-1.jpg", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("static request %d: expected 200, got %d", i, w.Code)
		}
	}
}

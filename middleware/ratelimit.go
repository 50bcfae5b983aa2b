package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nestconnect/backend/models"
)

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	r       rate.Limit
	burst   int
	ttl     time.Duration
}

func newRateLimiter(r rate.Limit, burst int, ttl time.Duration) *rateLimiter {
	rl := &rateLimiter{clients: make(map[string]*clientLimiter), r: r, burst: burst, ttl: ttl}
	go rl.gc()
	return rl
}

func (rl *rateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cl, ok := rl.clients[key]
	if ok {
		cl.seen = time.Now()
		return cl.lim
	}
	lim := rate.NewLimiter(rl.r, rl.burst)
	rl.clients[key] = &clientLimiter{lim: lim, seen: time.Now()}
	return lim
}

func (rl *rateLimiter) gc() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for k, v := range rl.clients {
			if now.Sub(v.seen) > rl.ttl {
				delete(rl.clients, k)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit limits /api requests per client IP with a token bucket. Static
// file routes are exempt.
func RateLimit(r rate.Limit, burst int) func(http.Handler) http.Handler {
	rl := newRateLimiter(r, burst, 30*time.Minute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !strings.HasPrefix(req.URL.Path, "/api") {
				next.ServeHTTP(w, req)
				return
			}
			if !rl.get(clientIP(req.RemoteAddr)).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{Message: "Too many requests, please try again later"})
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func clientIP(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}

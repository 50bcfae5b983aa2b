package controllers

import (
	"net/http"
	"time"
)

func HealthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "OK",
			"message":   "NESTCONNECT API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

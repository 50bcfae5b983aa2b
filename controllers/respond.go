package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/nestconnect/backend/models"
)

type ContextKey string

const (
	UserIDKey   = ContextKey("userID")
	UserRoleKey = ContextKey("userRole")
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Message: message})
}

func writeValidationErrors(w http.ResponseWriter, errs []models.FieldError) {
	writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Message: "Validation failed",
		Errors:  errs,
	})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"shared-house-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// respondDomainError maps a domain error to its HTTP status. Unrecognized
// errors are infrastructure failures and surface as a generic 500.
func respondDomainError(w http.ResponseWriter, err error) {
	var conflictErr *services.ConflictError
	var incompleteErr *services.IncompleteCategoryError

	switch {
	case errors.As(err, &conflictErr):
		respondError(w, conflictErr.Error(), http.StatusConflict)
	case errors.As(err, &incompleteErr):
		respondError(w, incompleteErr.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrPastDate),
		errors.Is(err, services.ErrRangeTooLong),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrValidation):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrDeviceNotAuthorized):
		respondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidTransition):
		respondError(w, err.Error(), http.StatusConflict)
	default:
		respondError(w, "operation failed", http.StatusInternalServerError)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"kidpoints/internal/service"
)

// respondWithError writes a JSON error response, logging the underlying
// cause when one is present.
func respondWithError(w http.ResponseWriter, status int, userMsg string, err error) {
	if err != nil {
		log.Printf("%s: %v", userMsg, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": userMsg})
}

// respondWithServiceError maps taxonomy errors to HTTP statuses. Anything
// outside the taxonomy is a store or transport failure.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, service.ErrDuplicate):
		respondWithError(w, http.StatusConflict, "already recorded for that day", err)
	case errors.Is(err, service.ErrInvalidState):
		respondWithError(w, http.StatusConflict, "completion is not pending", err)
	case errors.Is(err, service.ErrDenied):
		respondWithError(w, http.StatusForbidden, "denied", err)
	case errors.Is(err, service.ErrNotConfigured):
		respondWithError(w, http.StatusPreconditionFailed, "parent secret not configured", err)
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrAssetFailure):
		respondWithError(w, http.StatusBadGateway, "avatar storage failed", err)
	default:
		respondWithError(w, http.StatusBadGateway, "store unavailable", err)
	}
}

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

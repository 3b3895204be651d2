package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/safar/go-marketplace/internal/database"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps store errors onto status codes. Anything
// outside the known taxonomy is logged and reported as a generic
// failure so internals never reach the client.
func respondStoreError(w http.ResponseWriter, err error) {
	var stockErr *database.InsufficientStockError

	switch {
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.As(err, &stockErr):
		respondError(w, http.StatusBadRequest, stockErr.Error())

	case errors.Is(err, database.ErrEmptyOrder),
		errors.Is(err, database.ErrInvalidQuantity),
		errors.Is(err, database.ErrNegativePrice),
		errors.Is(err, database.ErrNegativeStock),
		errors.Is(err, database.ErrEmailTaken),
		errors.Is(err, database.ErrInvalidCredentials),
		errors.Is(err, database.ErrOrderCompleted):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, database.ErrNotSeller),
		errors.Is(err, database.ErrNotOwner):
		respondError(w, http.StatusForbidden, err.Error())

	default:
		log.Printf("Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}

package main

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/safar/go-marketplace/internal/auth"
	"github.com/safar/go-marketplace/internal/store"
)

func handleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFrom(r.Context())
		respondJSON(w, http.StatusOK, user)
	}
}

func handleUpdateProfile(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := auth.UserFrom(r.Context())

		var req struct {
			FullName string `json:"full_name"`
			Email    string `json:"email"`
			Phone    string `json:"phone"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := store.UpdateProfile(r.Context(), db, principal.ID, req.FullName, req.Email, req.Phone)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, user)
	}
}

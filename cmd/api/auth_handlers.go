package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safar/go-marketplace/internal/auth"
	"github.com/safar/go-marketplace/internal/config"
	"github.com/safar/go-marketplace/internal/database"
	"github.com/safar/go-marketplace/internal/store"
)

func handleSignup(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FullName string `json:"full_name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			IsSeller bool   `json:"is_seller"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.FullName == "" || req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "full name, email and password are required")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to process password")
			return
		}

		user, err := store.CreateUser(r.Context(), db, req.FullName, req.Email, hash, req.IsSeller)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "user created successfully",
			"user":    user,
		})
	}
}

func handleLogin(db *sql.DB, cfg *config.AuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := store.GetUserByEmail(r.Context(), db, req.Email)
		if err != nil {
			// Unknown email and wrong password are indistinguishable.
			if errors.Is(err, database.ErrUserNotFound) {
				respondStoreError(w, database.ErrInvalidCredentials)
				return
			}
			respondStoreError(w, err)
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			respondStoreError(w, database.ErrInvalidCredentials)
			return
		}

		token, err := auth.GenerateToken(cfg.JWTSecret, user.ID, user.IsSeller, cfg.TokenTTL)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cfg.CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(cfg.TokenTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	}
}

func handleLogout(cfg *config.AuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     cfg.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		respondJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
	}
}

func handleAuthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFrom(r.Context())
		respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	}
}

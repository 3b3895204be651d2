package main

import (
	"database/sql"
	"net/http"

	"github.com/safar/go-marketplace/internal/auth"
	"github.com/safar/go-marketplace/internal/config"
	"github.com/safar/go-marketplace/internal/store"
)

// requireAuth verifies the session cookie and attaches the account as
// the request principal. Handlers behind it can assume auth.UserFrom
// succeeds.
func requireAuth(db *sql.DB, cfg *config.AuthConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(cfg.CookieName)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		claims, err := auth.ParseToken(cfg.JWTSecret, cookie.Value)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		user, err := store.GetUser(r.Context(), db, claims.UserID)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		next(w, r.WithContext(auth.WithUser(r.Context(), user)))
	}
}

func requireSeller(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if !user.IsSeller {
			respondError(w, http.StatusForbidden, "seller account required")
			return
		}
		next(w, r)
	}
}

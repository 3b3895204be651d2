package auth

import (
	"context"

	"github.com/safar/go-marketplace/internal/models"
)

type contextKey struct{}

// WithUser attaches the verified principal to the request context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFrom returns the principal set by the auth middleware.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*models.User)
	return user, ok
}

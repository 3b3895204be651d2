package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/safar/go-marketplace/internal/auth"
	"github.com/safar/go-marketplace/internal/database"
	"github.com/safar/go-marketplace/internal/store"
)

func TestSignupDuplicateEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	seedUser(t, db, "First", "taken@example.com", false)

	_, err := store.CreateUser(ctx, db, "Second", "taken@example.com", "hash", false)
	if !errors.Is(err, database.ErrEmailTaken) {
		t.Errorf("Expected email taken error, got: %v", err)
	}
}

func TestLoginCredentials(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	seedUser(t, db, "User", "login@example.com", false)

	user, err := store.GetUserByEmail(ctx, db, "login@example.com")
	if err != nil {
		t.Fatalf("Get user by email: %v", err)
	}

	if !auth.CheckPassword(user.PasswordHash, "password123") {
		t.Error("Expected seeded password to verify")
	}
	if auth.CheckPassword(user.PasswordHash, "wrong-password") {
		t.Error("Wrong password should not verify")
	}

	if _, err := store.GetUserByEmail(ctx, db, "nobody@example.com"); !errors.Is(err, database.ErrUserNotFound) {
		t.Errorf("Expected user not found, got: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := seedUser(t, db, "Original", "profile@example.com", false)
	seedUser(t, db, "Other", "other@example.com", false)

	updated, err := store.UpdateProfile(ctx, db, user.ID, "Renamed", "", "555-0100")
	if err != nil {
		t.Fatalf("Update profile: %v", err)
	}
	if updated.FullName != "Renamed" {
		t.Errorf("Expected name Renamed, got %s", updated.FullName)
	}
	if updated.Email != "profile@example.com" {
		t.Errorf("Empty email should keep the current one, got %s", updated.Email)
	}
	if updated.Phone != "555-0100" {
		t.Errorf("Expected phone 555-0100, got %s", updated.Phone)
	}

	// Phone is always written, so it can be cleared.
	updated, err = store.UpdateProfile(ctx, db, user.ID, "", "", "")
	if err != nil {
		t.Fatalf("Clear phone: %v", err)
	}
	if updated.Phone != "" {
		t.Errorf("Expected phone cleared, got %s", updated.Phone)
	}

	_, err = store.UpdateProfile(ctx, db, user.ID, "", "other@example.com", "")
	if !errors.Is(err, database.ErrEmailTaken) {
		t.Errorf("Expected email taken error, got: %v", err)
	}
}

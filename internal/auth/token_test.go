package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", 42, true, time.Hour)
	if err != nil {
		t.Fatalf("Generate token: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("Parse token: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("Expected user id 42, got %d", claims.UserID)
	}
	if !claims.IsSeller {
		t.Error("Expected seller flag to survive the round trip")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", 1, false, time.Hour)
	if err != nil {
		t.Fatalf("Generate token: %v", err)
	}

	if _, err := ParseToken("other-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected invalid token error, got: %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", 1, false, -time.Minute)
	if err != nil {
		t.Fatalf("Generate token: %v", err)
	}

	if _, err := ParseToken("secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected invalid token error, got: %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := ParseToken("secret", "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected invalid token error, got: %v", err)
	}
}

package auth

import (
	"testing"
	"time"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "filantropia-api-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := testManager()

	token, jti, err := m.GenerateAccessToken(1, "user@example.com", "member", 0)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if jti == "" {
		t.Error("expected a JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != 1 || claims.Email != "user@example.com" || claims.TokenType != "access" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	m := testManager()
	token, _, err := m.GenerateAccessToken(1, "user@example.com", "member", 0)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	other := NewJWTManager(JWTConfig{Secret: "different", Expiry: time.Hour, RefreshExpiry: time.Hour, Issuer: "x"})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        -time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "x",
	})

	token, _, err := m.GenerateAccessToken(1, "user@example.com", "member", 0)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := m.ValidateToken(token); err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestRefreshAccessToken(t *testing.T) {
	m := testManager()

	refresh, _, err := m.GenerateRefreshToken(1, "user@example.com", "member", 3)
	if err != nil {
		t.Fatalf("generate refresh failed: %v", err)
	}

	access, _, err := m.RefreshAccessToken(refresh, 3)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	claims, err := m.ValidateToken(access)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.TokenType != "access" || claims.TokenVersion != 3 {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	m := testManager()

	access, _, err := m.GenerateAccessToken(1, "user@example.com", "member", 0)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, _, err := m.RefreshAccessToken(access, 0); err == nil {
		t.Error("an access token must not be usable as a refresh token")
	}
}

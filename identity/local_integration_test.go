package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rafaelcosta/filantropia-api/database"
	"github.com/rafaelcosta/filantropia-api/utils/auth"
	"gorm.io/gorm"
)

// Integration test against a real Postgres instance. Set
// RUN_INTEGRATION_TESTS=true and the usual DB_* variables to run.
func setupIntegration(t *testing.T) *LocalProvider {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := database.StartGORM()
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	db := store.GetDB().(*gorm.DB)
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        "integration-test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "filantropia-api-test",
	})

	provider := NewLocalProvider(db, jwtManager)
	t.Cleanup(func() { provider.Close() })
	return provider
}

func TestLocalProviderLifecycle(t *testing.T) {
	provider := setupIntegration(t)
	ctx := context.Background()

	email := fmt.Sprintf("it-%d@filantropia.local", time.Now().UnixNano())

	user, session, err := provider.SignUp(ctx, email, "integration-pw-1", &UserMetadata{FullName: "Integration Test"})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	if user.Name != "Integration Test" {
		t.Errorf("metadata full name should become the display name, got %q", user.Name)
	}

	// Duplicate email is rejected.
	if _, _, err := provider.SignUp(ctx, email, "integration-pw-1", nil); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	// Wrong password is rejected.
	if _, _, err := provider.SignIn(ctx, email, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	// The issued token resolves back to the user.
	resolved, err := provider.GetUser(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if resolved == nil || resolved.ID != user.ID {
		t.Errorf("expected user %d, got %+v", user.ID, resolved)
	}

	// Refresh rotates the access token and emits an event.
	rotated, err := provider.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	select {
	case ev := <-provider.Events():
		if ev.Type != EventTokenRefreshed || ev.UserID != user.ID {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Error("expected a TOKEN_REFRESHED event")
	}

	// Sign out blacklists the token; it no longer resolves.
	if err := provider.SignOut(ctx, rotated.AccessToken); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	gone, err := provider.GetSession(ctx, rotated.AccessToken)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if gone != nil {
		t.Error("a revoked token must resolve as anonymous")
	}
}

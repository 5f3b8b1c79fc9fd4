package identity

import (
	"context"
	"time"
)

// User is the authenticated identity exposed to the rest of the app.
type User struct {
	ID        uint         `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name"`
	Role      string       `json:"role"`
	Metadata  UserMetadata `json:"metadata"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// UserMetadata carries the optional profile fields attached at sign-up.
type UserMetadata struct {
	FullName      string `json:"full_name,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	InstitutionID string `json:"institution_id,omitempty"`
}

// Session is an issued token pair.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// EventType identifies an asynchronous auth push event.
type EventType string

const (
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventSignedOut      EventType = "SIGNED_OUT"
)

// AuthEvent is pushed by a provider when a session changes outside a
// direct request/response call (token refresh, forced sign-out).
type AuthEvent struct {
	Type    EventType `json:"type"`
	UserID  uint      `json:"user_id"`
	Session *Session  `json:"session,omitempty"` // nil on sign-out
}

// Provider is the identity-provider contract the session layer consumes.
// Every call may fail with an error carrying a human-readable message.
type Provider interface {
	// SignUp registers a new user and returns the user with a fresh session.
	SignUp(ctx context.Context, email, password string, metadata *UserMetadata) (*User, *Session, error)

	// SignIn authenticates by email/password and returns a fresh session.
	SignIn(ctx context.Context, email, password string) (*User, *Session, error)

	// SignOut revokes the given access token.
	SignOut(ctx context.Context, accessToken string) error

	// GetSession resolves a token to its session, or (nil, nil) when the
	// caller is anonymous.
	GetSession(ctx context.Context, accessToken string) (*Session, error)

	// GetUser resolves a token to its user, or (nil, nil) when anonymous.
	GetUser(ctx context.Context, accessToken string) (*User, error)

	// Events exposes the provider's push-event stream.
	Events() <-chan AuthEvent

	// Close releases the event stream; the provider is unusable afterwards.
	Close() error
}

// Package auth exposes the authentication endpoints: registration,
// login, token refresh, logout, password lifecycle and profile.
package auth

import (
	"time"

	"github.com/rafaelcosta/filantropia-api/identity"
	"github.com/rafaelcosta/filantropia-api/model"
	authutil "github.com/rafaelcosta/filantropia-api/utils/auth"
	"github.com/rafaelcosta/filantropia-api/utils/middleware"
	"gorm.io/gorm"
)

// AuthHandler serves the /auth routes
type AuthHandler struct {
	db                   *gorm.DB
	provider             *identity.LocalProvider
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection

	// exposeResetTokens returns reset tokens in API responses when no
	// mailer is wired up. Never enabled in production.
	exposeResetTokens bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, provider *identity.LocalProvider, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, exposeResetTokens bool) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		provider:             provider,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		exposeResetTokens:    exposeResetTokens,
	}
}

// UserResponse is the user shape returned by auth endpoints
type UserResponse struct {
	ID        uint                  `json:"id"`
	Email     string                `json:"email"`
	Name      string                `json:"name"`
	Role      string                `json:"role"`
	Metadata  identity.UserMetadata `json:"metadata"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func toUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Metadata:  u.Metadata,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func modelUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Metadata:  identity.UserMetadata(u.ParsedMetadata()),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

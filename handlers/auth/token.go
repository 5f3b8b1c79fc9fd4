package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/utils/middleware"
	"github.com/rafaelcosta/filantropia-api/utils/response"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse represents a successful token refresh
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // in seconds
}

// Refresh exchanges a refresh token for a new access token
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	session, err := h.provider.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}

	return response.Success(c, RefreshResponse{
		AccessToken: session.AccessToken,
		ExpiresIn:   int(h.jwtManager.AccessExpiry().Seconds()),
	})
}

// Logout revokes the current access token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, ok := middleware.GetAccessToken(c)
	if !ok {
		return response.Unauthorized(c, "Missing access token")
	}

	if err := h.provider.SignOut(c.Context(), token); err != nil {
		return response.InternalServerError(c, "Failed to sign out")
	}

	return response.SuccessWithMessage(c, "Signed out successfully", nil)
}

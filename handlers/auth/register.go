package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/identity"
	authutil "github.com/rafaelcosta/filantropia-api/utils/auth"
	"github.com/rafaelcosta/filantropia-api/utils/response"
	"github.com/rafaelcosta/filantropia-api/utils/validation"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
}

// RegisterResponse represents a successful registration response
type RegisterResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = validation.SanitizeString(req.Email)
	req.Name = validation.SanitizeString(req.Name)

	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email address")
	}
	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}
	if len(req.Name) < 2 {
		return response.BadRequest(c, "Name must be at least 2 characters")
	}

	user, session, err := h.provider.SignUp(c.Context(), req.Email, req.Password, &identity.UserMetadata{
		FullName: req.Name,
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return response.Conflict(c, "Email is already registered")
		}
		return response.InternalServerError(c, "Failed to register user")
	}

	res := RegisterResponse{
		User:         toUserResponse(user),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(h.jwtManager.AccessExpiry().Seconds()),
	}

	return response.Created(c, res)
}

package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/utils/middleware"
	"github.com/rafaelcosta/filantropia-api/utils/response"
	"github.com/rafaelcosta/filantropia-api/utils/validation"
)

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	return response.Success(c, modelUserResponse(user))
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	Name          *string `json:"name,omitempty"`
	FullName      *string `json:"full_name,omitempty"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	InstitutionID *string `json:"institution_id,omitempty"`
}

// UpdateProfile updates name and metadata fields of the authenticated user
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	meta := user.ParsedMetadata()
	if req.Name != nil {
		name := validation.SanitizeString(*req.Name)
		if len(name) < 2 {
			return response.BadRequest(c, "Name must be at least 2 characters")
		}
		user.Name = name
	}
	if req.FullName != nil {
		meta.FullName = validation.SanitizeString(*req.FullName)
	}
	if req.AvatarURL != nil {
		meta.AvatarURL = validation.SanitizeString(*req.AvatarURL)
	}
	if req.InstitutionID != nil {
		meta.InstitutionID = *req.InstitutionID
	}

	if err := user.SetMetadata(meta); err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	if err := h.db.WithContext(c.Context()).Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, modelUserResponse(user))
}

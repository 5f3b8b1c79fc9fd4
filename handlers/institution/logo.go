package institution

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/model"
	"github.com/rafaelcosta/filantropia-api/services/spaces"
	"github.com/rafaelcosta/filantropia-api/utils/middleware"
	"github.com/rafaelcosta/filantropia-api/utils/response"
	"gorm.io/gorm"
)

// 5 MB is plenty for a logo image.
const maxLogoSize = 5 * 1024 * 1024

// UploadLogo stores a logo image for an institution and records its URL
func (h *InstitutionHandler) UploadLogo(c *fiber.Ctx) error {
	if h.storage == nil {
		return response.ServiceUnavailable(c, "File storage is not configured")
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	id := c.Params("id")

	var institution model.Institution
	err := h.db.WithContext(c.Context()).First(&institution, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Institution not found")
		}
		return response.InternalServerError(c, "Failed to load institution")
	}
	if institution.UserID != userID {
		return response.Forbidden(c, "You do not own this institution")
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return response.BadRequest(c, "Missing logo file")
	}
	if fileHeader.Size > maxLogoSize {
		return response.BadRequest(c, "Logo file exceeds 5MB")
	}

	contentType := spaces.ContentTypeForImage(fileHeader.Filename)
	if contentType == "application/octet-stream" {
		return response.BadRequest(c, "Unsupported image format")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read logo file")
	}
	defer file.Close()

	key := spaces.GenerateKey("logos/"+institution.ID, fileHeader.Filename)
	url, err := h.storage.UploadFile(c.Context(), key, file, contentType)
	if err != nil {
		return response.InternalServerError(c, "Failed to upload logo")
	}

	institution.LogoURL = url
	if err := h.db.WithContext(c.Context()).Save(&institution).Error; err != nil {
		return response.InternalServerError(c, "Failed to save logo URL")
	}

	h.data.InvalidateLists(c.Context())
	h.notify(c, "Logo updated", institution.Name)
	return response.Success(c, fiber.Map{"logo_url": url})
}

// Package institution exposes the institution CRUD endpoints and the
// logo upload.
package institution

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/model"
	"github.com/rafaelcosta/filantropia-api/services"
	"github.com/rafaelcosta/filantropia-api/services/spaces"
	"github.com/rafaelcosta/filantropia-api/utils/middleware"
	"github.com/rafaelcosta/filantropia-api/utils/response"
	"github.com/rafaelcosta/filantropia-api/utils/validation"
	"github.com/rafaelcosta/filantropia-api/viewstate"
	"gorm.io/gorm"
)

// InstitutionHandler serves the /institutions routes
type InstitutionHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	data      *services.DataService
	views     *viewstate.Manager
	storage   *spaces.Client
}

// NewInstitutionHandler creates a new institution handler. storage may
// be nil when Spaces is not configured; logo upload then returns 503.
func NewInstitutionHandler(db *gorm.DB, data *services.DataService, views *viewstate.Manager, storage *spaces.Client) *InstitutionHandler {
	return &InstitutionHandler{
		db:        db,
		validator: validation.NewValidator(),
		data:      data,
		views:     views,
		storage:   storage,
	}
}

// notify records a success notification in the acting user's view state
func (h *InstitutionHandler) notify(c *fiber.Ctx, title, message string) {
	if h.views == nil {
		return
	}
	if userID, ok := middleware.GetUserID(c); ok {
		h.views.ForUser(userID).Notify("success", title, message)
	}
}

// CreateInstitutionRequest represents an institution creation payload
type CreateInstitutionRequest struct {
	Name        string   `json:"name" validate:"required,min=2"`
	Description string   `json:"description,omitempty"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone,omitempty"`
	Address     string   `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Website     string   `json:"website,omitempty"`
	Category    string   `json:"category,omitempty"`
	FoundedYear *int     `json:"founded_year,omitempty" validate:"omitempty,gte=1800"`
}

// Create registers a new institution owned by the authenticated user
func (h *InstitutionHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateInstitutionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	institution := model.Institution{
		Name:        validation.SanitizeString(req.Name),
		Description: req.Description,
		Email:       validation.SanitizeString(req.Email),
		Phone:       req.Phone,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Website:     req.Website,
		Category:    req.Category,
		FoundedYear: req.FoundedYear,
		UserID:      userID,
	}

	if err := h.db.WithContext(c.Context()).Create(&institution).Error; err != nil {
		return response.InternalServerError(c, "Failed to create institution")
	}

	h.data.InvalidateLists(c.Context())
	h.notify(c, "Institution created", institution.Name)
	return response.Created(c, institution)
}

// List returns all institutions
func (h *InstitutionHandler) List(c *fiber.Ctx) error {
	institutions, err := h.data.ListInstitutions(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list institutions")
	}
	return response.Success(c, institutions)
}

// Get returns one institution by id
func (h *InstitutionHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	var institution model.Institution
	err := h.db.WithContext(c.Context()).First(&institution, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Institution not found")
		}
		return response.InternalServerError(c, "Failed to load institution")
	}

	return response.Success(c, institution)
}

// UpdateInstitutionRequest represents a partial institution update
type UpdateInstitutionRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2"`
	Description *string  `json:"description,omitempty"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string  `json:"phone,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Website     *string  `json:"website,omitempty"`
	Category    *string  `json:"category,omitempty"`
	FoundedYear *int     `json:"founded_year,omitempty" validate:"omitempty,gte=1800"`
}

// Update modifies an institution owned by the authenticated user
func (h *InstitutionHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	id := c.Params("id")

	var req UpdateInstitutionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

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

	if req.Name != nil {
		institution.Name = validation.SanitizeString(*req.Name)
	}
	if req.Description != nil {
		institution.Description = *req.Description
	}
	if req.Email != nil {
		institution.Email = validation.SanitizeString(*req.Email)
	}
	if req.Phone != nil {
		institution.Phone = *req.Phone
	}
	if req.Address != nil {
		institution.Address = *req.Address
	}
	if req.Latitude != nil {
		institution.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		institution.Longitude = req.Longitude
	}
	if req.Website != nil {
		institution.Website = *req.Website
	}
	if req.Category != nil {
		institution.Category = *req.Category
	}
	if req.FoundedYear != nil {
		institution.FoundedYear = req.FoundedYear
	}

	if err := h.db.WithContext(c.Context()).Save(&institution).Error; err != nil {
		return response.InternalServerError(c, "Failed to update institution")
	}

	h.data.InvalidateLists(c.Context())
	h.notify(c, "Institution updated", institution.Name)
	return response.Success(c, institution)
}

// Delete removes an institution owned by the authenticated user
func (h *InstitutionHandler) Delete(c *fiber.Ctx) error {
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

	if err := h.db.WithContext(c.Context()).Delete(&institution).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete institution")
	}

	h.data.InvalidateLists(c.Context())
	h.notify(c, "Institution deleted", institution.Name)
	return response.NoContent(c)
}

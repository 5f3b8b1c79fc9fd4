// Package activity exposes the philanthropic activity CRUD endpoints.
package activity

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/model"
	"github.com/rafaelcosta/filantropia-api/services"
	"github.com/rafaelcosta/filantropia-api/utils/middleware"
	"github.com/rafaelcosta/filantropia-api/utils/response"
	"github.com/rafaelcosta/filantropia-api/utils/validation"
	"github.com/rafaelcosta/filantropia-api/viewstate"
	"gorm.io/gorm"
)

// ActivityHandler serves the /activities routes
type ActivityHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	data      *services.DataService
	views     *viewstate.Manager
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(db *gorm.DB, data *services.DataService, views *viewstate.Manager) *ActivityHandler {
	return &ActivityHandler{
		db:        db,
		validator: validation.NewValidator(),
		data:      data,
		views:     views,
	}
}

func (h *ActivityHandler) notify(c *fiber.Ctx, title, message string) {
	if h.views == nil {
		return
	}
	if userID, ok := middleware.GetUserID(c); ok {
		h.views.ForUser(userID).Notify("success", title, message)
	}
}

// ownsInstitution checks the institution exists and belongs to the user
func (h *ActivityHandler) ownsInstitution(c *fiber.Ctx, institutionID string, userID uint) (bool, error) {
	var institution model.Institution
	err := h.db.WithContext(c.Context()).First(&institution, "id = ?", institutionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, response.NotFound(c, "Institution not found")
		}
		return false, response.InternalServerError(c, "Failed to load institution")
	}
	if institution.UserID != userID {
		return false, response.Forbidden(c, "You do not own this institution")
	}
	return true, nil
}

// CreateActivityRequest represents an activity creation payload
type CreateActivityRequest struct {
	Title              string     `json:"title" validate:"required,min=2"`
	Description        string     `json:"description,omitempty"`
	Category           string     `json:"category" validate:"required"`
	StartDate          time.Time  `json:"start_date" validate:"required"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Budget             *float64   `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Status             string     `json:"status,omitempty" validate:"omitempty,oneof=planning active completed cancelled"`
	Location           string     `json:"location,omitempty"`
	Latitude           *float64   `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude          *float64   `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	BeneficiariesCount *int       `json:"beneficiaries_count,omitempty" validate:"omitempty,gte=0"`
	InstitutionID      string     `json:"institution_id" validate:"required,uuid"`
}

// Create registers a new activity under one of the user's institutions
func (h *ActivityHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return response.BadRequest(c, "End date cannot be before start date")
	}

	if ok, err := h.ownsInstitution(c, req.InstitutionID, userID); !ok {
		return err
	}

	activity := model.Activity{
		Title:              validation.SanitizeString(req.Title),
		Description:        req.Description,
		Category:           req.Category,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Budget:             req.Budget,
		Status:             model.ActivityStatus(req.Status),
		Location:           req.Location,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		BeneficiariesCount: req.BeneficiariesCount,
		InstitutionID:      req.InstitutionID,
	}

	if err := h.db.WithContext(c.Context()).Create(&activity).Error; err != nil {
		return response.InternalServerError(c, "Failed to create activity")
	}

	h.data.InvalidateLists(c.Context())
	h.notify(c, "Activity created", activity.Title)
	return response.Created(c, activity)
}

// List returns activities, optionally filtered by institution_id
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	institutionID := c.Query("institution_id")

	activities, err := h.data.ListActivities(c.Context(), institutionID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list activities")
	}
	return response.Success(c, activities)
}

// Get returns one activity by id with its institution
func (h *ActivityHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	var activity model.Activity
	err := h.db.WithContext(c.Context()).
		Preload("Institution").
		First(&activity, "id = ?", id).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Activity not found")
		}
		return response.InternalServerError(c, "Failed to load activity")
	}

	return response.Success(c, activity)
}

// UpdateActivityRequest represents a partial activity update. Any
// status value from the allowed set may be written; there is no
// transition guard.
type UpdateActivityRequest struct {
	Title              *string    `json:"title,omitempty" validate:"omitempty,min=2"`
	Description        *string    `json:"description,omitempty"`
	Category           *string    `json:"category,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Budget             *float64   `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Status             *string    `json:"status,omitempty" validate:"omitempty,oneof=planning active completed cancelled"`
	Location           *string    `json:"location,omitempty"`
	Latitude           *float64   `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude          *float64   `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	BeneficiariesCount *int       `json:"beneficiaries_count,omitempty" validate:"omitempty,gte=0"`
}

// Update modifies an activity under one of the user's institutions
func (h *ActivityHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	id := c.Params("id")

	var req UpdateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var activity model.Activity
	err := h.db.WithContext(c.Context()).First(&activity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Activity not found")
		}
		return response.InternalServerError(c, "Failed to load activity")
	}

	if ok, err := h.ownsInstitution(c, activity.InstitutionID, userID); !ok {
		return err
	}

	if req.Title != nil {
		activity.Title = validation.SanitizeString(*req.Title)
	}
	if req.Description != nil {
		activity.Description = *req.Description
	}
	if req.Category != nil {
		activity.Category = *req.Category
	}
	if req.StartDate != nil {
		activity.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		activity.EndDate = req.EndDate
	}
	if req.Budget != nil {
		activity.Budget = req.Budget
	}
	if req.Status != nil {
		activity.Status = model.ActivityStatus(*req.Status)
	}
	if req.Location != nil {
		activity.Location = *req.Location
	}
	if req.Latitude != nil {
		activity.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		activity.Longitude = req.Longitude
	}
	if req.BeneficiariesCount != nil {
		activity.BeneficiariesCount = req.BeneficiariesCount
	}

	if activity.EndDate != nil && activity.EndDate.Before(activity.StartDate) {
		return response.BadRequest(c, "End date cannot be before start date")
	}

	if err := h.db.WithContext(c.Context()).Save(&activity).Error; err != nil {
		return response.InternalServerError(c, "Failed to update activity")
	}

	h.data.InvalidateLists(c.Context())
	h.notify(c, "Activity updated", activity.Title)
	return response.Success(c, activity)
}

// Delete removes an activity under one of the user's institutions
func (h *ActivityHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	id := c.Params("id")

	var activity model.Activity
	err := h.db.WithContext(c.Context()).First(&activity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Activity not found")
		}
		return response.InternalServerError(c, "Failed to load activity")
	}

	if ok, err := h.ownsInstitution(c, activity.InstitutionID, userID); !ok {
		return err
	}

	if err := h.db.WithContext(c.Context()).Delete(&activity).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete activity")
	}

	h.data.InvalidateLists(c.Context())
	h.notify(c, "Activity deleted", activity.Title)
	return response.NoContent(c)
}

// Package investor exposes the investor contact CRUD endpoints.
package investor

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/model"
	"github.com/rafaelcosta/filantropia-api/utils/middleware"
	"github.com/rafaelcosta/filantropia-api/utils/response"
	"github.com/rafaelcosta/filantropia-api/utils/validation"
	"gorm.io/gorm"
)

// InvestorHandler serves the /investors routes. Investors are private
// to the user who registered them.
type InvestorHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewInvestorHandler creates a new investor handler
func NewInvestorHandler(db *gorm.DB) *InvestorHandler {
	return &InvestorHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateInvestorRequest represents an investor creation payload
type CreateInvestorRequest struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone,omitempty"`
	Company         string `json:"company,omitempty"`
	InvestmentFocus string `json:"investment_focus,omitempty"`
}

// Create registers a new investor contact
func (h *InvestorHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateInvestorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	investor := model.Investor{
		Name:            validation.SanitizeString(req.Name),
		Email:           validation.SanitizeString(req.Email),
		Phone:           req.Phone,
		Company:         req.Company,
		InvestmentFocus: req.InvestmentFocus,
		UserID:          userID,
	}

	if err := h.db.WithContext(c.Context()).Create(&investor).Error; err != nil {
		return response.InternalServerError(c, "Failed to create investor")
	}

	return response.Created(c, investor)
}

// List returns the authenticated user's investors
func (h *InvestorHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var investors []model.Investor
	err := h.db.WithContext(c.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&investors).
		Error
	if err != nil {
		return response.InternalServerError(c, "Failed to list investors")
	}

	return response.Success(c, investors)
}

// Get returns one of the user's investors by id
func (h *InvestorHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var investor model.Investor
	err := h.db.WithContext(c.Context()).
		Where("id = ? AND user_id = ?", c.Params("id"), userID).
		First(&investor).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Investor not found")
		}
		return response.InternalServerError(c, "Failed to load investor")
	}

	return response.Success(c, investor)
}

// UpdateInvestorRequest represents a partial investor update
type UpdateInvestorRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone           *string `json:"phone,omitempty"`
	Company         *string `json:"company,omitempty"`
	InvestmentFocus *string `json:"investment_focus,omitempty"`
}

// Update modifies one of the user's investors
func (h *InvestorHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	id := c.Params("id")

	var req UpdateInvestorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var investor model.Investor
	err := h.db.WithContext(c.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&investor).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Investor not found")
		}
		return response.InternalServerError(c, "Failed to load investor")
	}

	if req.Name != nil {
		investor.Name = validation.SanitizeString(*req.Name)
	}
	if req.Email != nil {
		investor.Email = validation.SanitizeString(*req.Email)
	}
	if req.Phone != nil {
		investor.Phone = *req.Phone
	}
	if req.Company != nil {
		investor.Company = *req.Company
	}
	if req.InvestmentFocus != nil {
		investor.InvestmentFocus = *req.InvestmentFocus
	}

	if err := h.db.WithContext(c.Context()).Save(&investor).Error; err != nil {
		return response.InternalServerError(c, "Failed to update investor")
	}

	return response.Success(c, investor)
}

// Delete removes one of the user's investors
func (h *InvestorHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	id := c.Params("id")

	result := h.db.WithContext(c.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Investor{})
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete investor")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Investor not found")
	}

	return response.NoContent(c)
}

// Package metric exposes the impact metric endpoints.
package metric

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

// MetricHandler serves the /metrics routes
type MetricHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	data      *services.DataService
	views     *viewstate.Manager
}

// NewMetricHandler creates a new metric handler
func NewMetricHandler(db *gorm.DB, data *services.DataService, views *viewstate.Manager) *MetricHandler {
	return &MetricHandler{
		db:        db,
		validator: validation.NewValidator(),
		data:      data,
		views:     views,
	}
}

func (h *MetricHandler) notify(c *fiber.Ctx, title, message string) {
	if h.views == nil {
		return
	}
	if userID, ok := middleware.GetUserID(c); ok {
		h.views.ForUser(userID).Notify("success", title, message)
	}
}

// CreateMetricRequest represents a metric creation payload
type CreateMetricRequest struct {
	MetricType      string    `json:"metric_type" validate:"required"`
	Value           float64   `json:"value" validate:"required"`
	Unit            string    `json:"unit,omitempty"`
	Description     string    `json:"description,omitempty"`
	MeasurementDate time.Time `json:"measurement_date" validate:"required"`
	ActivityID      *string   `json:"activity_id,omitempty" validate:"omitempty,uuid"`
	InstitutionID   string    `json:"institution_id" validate:"required,uuid"`
}

// Create records a new metric under one of the user's institutions
func (h *MetricHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateMetricRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var institution model.Institution
	err := h.db.WithContext(c.Context()).First(&institution, "id = ?", req.InstitutionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Institution not found")
		}
		return response.InternalServerError(c, "Failed to load institution")
	}
	if institution.UserID != userID {
		return response.Forbidden(c, "You do not own this institution")
	}

	if req.ActivityID != nil {
		var activity model.Activity
		err := h.db.WithContext(c.Context()).First(&activity, "id = ?", *req.ActivityID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFound(c, "Activity not found")
			}
			return response.InternalServerError(c, "Failed to load activity")
		}
		if activity.InstitutionID != req.InstitutionID {
			return response.BadRequest(c, "Activity does not belong to the given institution")
		}
	}

	metric := model.Metric{
		MetricType:      validation.SanitizeString(req.MetricType),
		Value:           req.Value,
		Unit:            req.Unit,
		Description:     req.Description,
		MeasurementDate: req.MeasurementDate,
		ActivityID:      req.ActivityID,
		InstitutionID:   req.InstitutionID,
	}

	if err := h.db.WithContext(c.Context()).Create(&metric).Error; err != nil {
		return response.InternalServerError(c, "Failed to create metric")
	}

	h.data.InvalidateLists(c.Context())
	h.notify(c, "Metric recorded", metric.MetricType)
	return response.Created(c, metric)
}

// List returns metrics, optionally filtered by activity_id and institution_id
func (h *MetricHandler) List(c *fiber.Ctx) error {
	activityID := c.Query("activity_id")
	institutionID := c.Query("institution_id")

	metrics, err := h.data.ListMetrics(c.Context(), activityID, institutionID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list metrics")
	}
	return response.Success(c, metrics)
}

// Delete removes a metric under one of the user's institutions
func (h *MetricHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	id := c.Params("id")

	var metric model.Metric
	err := h.db.WithContext(c.Context()).
		Preload("Institution").
		First(&metric, "id = ?", id).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Metric not found")
		}
		return response.InternalServerError(c, "Failed to load metric")
	}
	if metric.Institution == nil || metric.Institution.UserID != userID {
		return response.Forbidden(c, "You do not own this metric")
	}

	if err := h.db.WithContext(c.Context()).Delete(&metric).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete metric")
	}

	h.data.InvalidateLists(c.Context())
	h.notify(c, "Metric deleted", metric.MetricType)
	return response.NoContent(c)
}

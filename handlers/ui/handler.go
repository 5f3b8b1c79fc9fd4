// Package ui exposes the per-user view-state endpoints: modals,
// notifications, map viewport and layout preferences.
package ui

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/utils/middleware"
	"github.com/rafaelcosta/filantropia-api/utils/response"
	"github.com/rafaelcosta/filantropia-api/viewstate"
)

// UIHandler serves the /ui routes
type UIHandler struct {
	views *viewstate.Manager
}

// NewUIHandler creates a new UI state handler
func NewUIHandler(views *viewstate.Manager) *UIHandler {
	return &UIHandler{views: views}
}

func (h *UIHandler) store(c *fiber.Ctx) (*viewstate.Store, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, false
	}
	return h.views.ForUser(userID), true
}

// GetState returns the full view state snapshot
func (h *UIHandler) GetState(c *fiber.Ctx) error {
	store, ok := h.store(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	return response.Success(c, store.Snapshot())
}

// SetViewport replaces the persisted map viewport
func (h *UIHandler) SetViewport(c *fiber.Ctx) error {
	store, ok := h.store(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var viewport viewstate.Viewport
	if err := c.BodyParser(&viewport); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if viewport.Latitude < -90 || viewport.Latitude > 90 ||
		viewport.Longitude < -180 || viewport.Longitude > 180 {
		return response.BadRequest(c, "Coordinates out of range")
	}
	if viewport.Zoom < 0 || viewport.Zoom > 24 {
		return response.BadRequest(c, "Zoom out of range")
	}
	if viewport.Bearing != nil && (*viewport.Bearing < -180 || *viewport.Bearing > 180) {
		return response.BadRequest(c, "Bearing out of range")
	}
	if viewport.Pitch != nil && (*viewport.Pitch < 0 || *viewport.Pitch > 85) {
		return response.BadRequest(c, "Pitch out of range")
	}

	store.SetViewport(viewport)
	return response.Success(c, store.Snapshot())
}

// SetLayout replaces the persisted layout preferences
func (h *UIHandler) SetLayout(c *fiber.Ctx) error {
	store, ok := h.store(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var layout viewstate.Layout
	if err := c.BodyParser(&layout); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if layout.ChartType != "" && layout.ChartType != "bar" && layout.ChartType != "line" {
		return response.BadRequest(c, "Unknown chart type")
	}

	store.SetLayout(layout)
	return response.Success(c, store.Snapshot())
}

// OpenModal marks a modal open
func (h *UIHandler) OpenModal(c *fiber.Ctx) error {
	store, ok := h.store(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	name := c.Params("name")
	if name == "" {
		return response.BadRequest(c, "Modal name is required")
	}

	store.OpenModal(name)
	return response.Success(c, store.Snapshot())
}

// CloseModal marks a modal closed
func (h *UIHandler) CloseModal(c *fiber.Ctx) error {
	store, ok := h.store(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	name := c.Params("name")
	if name == "" {
		return response.BadRequest(c, "Modal name is required")
	}

	store.CloseModal(name)
	return response.Success(c, store.Snapshot())
}

// NotifyRequest represents an explicit notification post
type NotifyRequest struct {
	Severity string `json:"severity" validate:"required,oneof=success error warning info"`
	Title    string `json:"title" validate:"required"`
	Message  string `json:"message,omitempty"`
}

// Notify records a notification in the user's view state
func (h *UIHandler) Notify(c *fiber.Ctx) error {
	store, ok := h.store(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req NotifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	switch req.Severity {
	case "success", "error", "warning", "info":
	default:
		return response.BadRequest(c, "Unknown severity")
	}
	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}

	id := store.Notify(req.Severity, req.Title, req.Message)
	return response.Created(c, fiber.Map{"id": id})
}

// DismissNotification removes a notification by id
func (h *UIHandler) DismissNotification(c *fiber.Ctx) error {
	store, ok := h.store(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	store.DismissNotification(c.Params("id"))
	return response.NoContent(c)
}

// ClearNotifications removes every notification for the current user
func (h *UIHandler) ClearNotifications(c *fiber.Ctx) error {
	store, ok := h.store(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	store.ClearNotifications()
	return response.NoContent(c)
}

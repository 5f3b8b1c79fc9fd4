// Package dashboard exposes the aggregated chart endpoint.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/services"
	"github.com/rafaelcosta/filantropia-api/utils/response"
)

// DashboardHandler serves the /dashboard route
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get returns the chart-ready dashboard payload, optionally scoped to
// one institution via ?institution_id=
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	institutionID := c.Query("institution_id")

	payload, err := h.dashboard.Build(c.Context(), institutionID)
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, payload)
}

// Package handlers holds route handlers that do not warrant their own
// package.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/database"
	"github.com/rafaelcosta/filantropia-api/utils/response"
)

// HandleCheckHealth reports process and database health
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database unavailable")
	}
	return response.Success(c, fiber.Map{"status": "ok"})
}

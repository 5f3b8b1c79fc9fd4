package investor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rafaelcosta/filantropia-api/database"
	"github.com/rafaelcosta/filantropia-api/model"
	"gorm.io/gorm"
)

// Integration test against a real Postgres instance. Set
// RUN_INTEGRATION_TESTS=true and the usual DB_* variables to run.
func setupIntegration(t *testing.T) (*fiber.App, *gorm.DB, uint) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := database.StartGORM()
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	db := store.GetDB().(*gorm.DB)
	user := model.User{
		Email:        fmt.Sprintf("it-inv-%d@filantropia.local", time.Now().UnixNano()),
		PasswordHash: "unused",
		Name:         "Investor Owner",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	handler := NewInvestorHandler(db)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", user.ID)
		return c.Next()
	})
	app.Get("/investors/", handler.List)
	app.Get("/investors/:id", handler.Get)
	app.Post("/investors/", handler.Create)
	app.Put("/investors/:id", handler.Update)
	app.Delete("/investors/:id", handler.Delete)

	return app, db, user.ID
}

type investorEnvelope struct {
	Success bool           `json:"success"`
	Data    model.Investor `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, investorEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}

	var env investorEnvelope
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode %s %s response: %v", method, path, err)
		}
	}
	resp.Body.Close()
	return resp, env
}

func TestInvestorCRUD(t *testing.T) {
	app, db, userID := setupIntegration(t)

	resp, created := doJSON(t, app, http.MethodPost, "/investors/", map[string]string{
		"name":  "Fundo Verde",
		"email": "contato@fundoverde.example",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	t.Cleanup(func() {
		db.Unscoped().Where("user_id = ?", userID).Delete(&model.Investor{})
	})

	resp, got := doJSON(t, app, http.MethodGet, "/investors/"+created.Data.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", resp.StatusCode)
	}
	if got.Data.ID != created.Data.ID || got.Data.Name != "Fundo Verde" {
		t.Errorf("get returned wrong investor: %+v", got.Data)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/investors/"+uuid.NewString(), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", resp.StatusCode)
	}

	resp, updated := doJSON(t, app, http.MethodPut, "/investors/"+created.Data.ID, map[string]string{
		"company": "Fundo Verde Capital",
	})
	if resp.StatusCode != http.StatusOK || updated.Data.Company != "Fundo Verde Capital" {
		t.Errorf("expected updated company, got %d %+v", resp.StatusCode, updated.Data)
	}

	resp, _ = doJSON(t, app, http.MethodDelete, "/investors/"+created.Data.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 on delete, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/investors/"+created.Data.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rafaelcosta/filantropia-api/model"
	"github.com/rafaelcosta/filantropia-api/utils/auth"
	"gorm.io/gorm"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

// RunSeeds populates a development database with a demo user, two
// institutions and enough activities and metrics to light up the
// dashboard and the map. Running twice is safe; existing rows are
// left alone.
func RunSeeds(db *gorm.DB) error {
	email := os.Getenv("SEED_EMAIL")
	if email == "" {
		email = "demo@filantropia.local"
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo-password"
	}

	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("Seed user %s already exists, skipping", email)
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	user := model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Demo User",
		Role:         "member",
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create seed user: %w", err)
	}

	institutions := []model.Institution{
		{
			Name:        "Instituto Esperança",
			Description: "Education programs for children in the east side of São Paulo",
			Email:       "contato@esperanca.org.br",
			Category:    "education",
			Latitude:    ptrFloat(-23.5505),
			Longitude:   ptrFloat(-46.6333),
			FoundedYear: ptrInt(2009),
			UserID:      user.ID,
		},
		{
			Name:        "Rede Alimentar",
			Description: "Food distribution network for families in vulnerable situations",
			Email:       "ola@redealimentar.org.br",
			Category:    "food-security",
			Latitude:    ptrFloat(-23.5631),
			Longitude:   ptrFloat(-46.6544),
			FoundedYear: ptrInt(2015),
			UserID:      user.ID,
		},
	}
	for i := range institutions {
		if err := db.Create(&institutions[i]).Error; err != nil {
			return fmt.Errorf("failed to create seed institution: %w", err)
		}
	}

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	activities := []model.Activity{
		{
			Title:              "Reforço escolar 2024",
			Category:           "education",
			StartDate:          date(2024, time.January, 5),
			Budget:             ptrFloat(100),
			Status:             model.ActivityStatusActive,
			Latitude:           ptrFloat(-23.55),
			Longitude:          ptrFloat(-46.61),
			BeneficiariesCount: ptrInt(120),
			InstitutionID:      institutions[0].ID,
		},
		{
			Title:              "Biblioteca comunitária",
			Category:           "education",
			StartDate:          date(2024, time.January, 20),
			Budget:             ptrFloat(200),
			Status:             model.ActivityStatusPlanning,
			Latitude:           ptrFloat(-23.5505),
			Longitude:          ptrFloat(-46.6095),
			BeneficiariesCount: ptrInt(180),
			InstitutionID:      institutions[0].ID,
		},
		{
			Title:              "Cestas básicas de fevereiro",
			Category:           "food-security",
			StartDate:          date(2024, time.February, 1),
			Budget:             ptrFloat(50),
			Status:             model.ActivityStatusCompleted,
			Latitude:           ptrFloat(-23.5631),
			Longitude:          ptrFloat(-46.6544),
			BeneficiariesCount: ptrInt(50),
			InstitutionID:      institutions[1].ID,
		},
	}
	for i := range activities {
		if err := db.Create(&activities[i]).Error; err != nil {
			return fmt.Errorf("failed to create seed activity: %w", err)
		}
	}

	metrics := []model.Metric{
		{
			MetricType:      model.MetricTypeBeneficiaries,
			Value:           300,
			Unit:            "people",
			MeasurementDate: date(2024, time.January, 31),
			ActivityID:      &activities[0].ID,
			InstitutionID:   institutions[0].ID,
		},
		{
			MetricType:      model.MetricTypeBeneficiaries,
			Value:           50,
			Unit:            "people",
			MeasurementDate: date(2024, time.February, 28),
			ActivityID:      &activities[2].ID,
			InstitutionID:   institutions[1].ID,
		},
		{
			MetricType:      "meals-served",
			Value:           1200,
			Unit:            "meals",
			MeasurementDate: date(2024, time.February, 28),
			InstitutionID:   institutions[1].ID,
		},
	}
	for i := range metrics {
		if err := db.Create(&metrics[i]).Error; err != nil {
			return fmt.Errorf("failed to create seed metric: %w", err)
		}
	}

	log.Printf("Seeded user %s with %d institutions, %d activities, %d metrics",
		email, len(institutions), len(activities), len(metrics))
	return nil
}

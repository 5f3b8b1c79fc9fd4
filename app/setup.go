package app

import (
	"fmt"
	"os"

	"github.com/rafaelcosta/filantropia-api/api"
	"github.com/rafaelcosta/filantropia-api/config"
	"github.com/rafaelcosta/filantropia-api/database"
	"github.com/rafaelcosta/filantropia-api/router"
	"github.com/rafaelcosta/filantropia-api/services/cron"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Error running migrations\n")
		return err
	}

	// Housekeeping jobs, opt-out via CRON_ENABLED=false
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			cronManager = cron.NewCronManager(db)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
			}
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), store)
	app := server.GetEngine()

	// Logging and panic recovery are attached by SetupSecurity in the
	// router, along with helmet, CORS and the rate limiter.
	router.SetupRoutes(app, store)

	return server.Run()
}

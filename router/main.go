package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/database"
	"github.com/rafaelcosta/filantropia-api/handlers"
	activity_handlers "github.com/rafaelcosta/filantropia-api/handlers/activity"
	auth_handlers "github.com/rafaelcosta/filantropia-api/handlers/auth"
	dashboard_handlers "github.com/rafaelcosta/filantropia-api/handlers/dashboard"
	geo_handlers "github.com/rafaelcosta/filantropia-api/handlers/geo"
	institution_handlers "github.com/rafaelcosta/filantropia-api/handlers/institution"
	investor_handlers "github.com/rafaelcosta/filantropia-api/handlers/investor"
	metric_handlers "github.com/rafaelcosta/filantropia-api/handlers/metric"
	ui_handlers "github.com/rafaelcosta/filantropia-api/handlers/ui"
	"github.com/rafaelcosta/filantropia-api/identity"
	"github.com/rafaelcosta/filantropia-api/services"
	"github.com/rafaelcosta/filantropia-api/services/mapbox"
	"github.com/rafaelcosta/filantropia-api/services/spaces"
	"github.com/rafaelcosta/filantropia-api/utils/auth"
	"github.com/rafaelcosta/filantropia-api/utils/cache"
	"github.com/rafaelcosta/filantropia-api/utils/middleware"
	"github.com/rafaelcosta/filantropia-api/viewstate"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "filantropia-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs brute force protection, list caching and view-state
	// persistence; all of them degrade gracefully without it.
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Caching and brute force protection will be disabled.", err)
		redisCache = nil
	}

	var bruteForceProtection *middleware.BruteForceProtection
	var viewPersister viewstate.Persister
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
		viewPersister = viewstate.NewRedisPersister(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	provider := identity.NewLocalProvider(db, jwtManager)
	views := viewstate.NewManager(viewPersister)

	dataService := services.NewDataService(db, redisCache)
	dashboardService := services.NewDashboardService(dataService, redisCache)

	// Mapbox is optional; without a token the map endpoint serves a
	// degraded payload and geocoding returns 503.
	var mapboxClient *mapbox.Client
	if token := os.Getenv("MAPBOX_ACCESS_TOKEN"); token != "" {
		mapboxClient = mapbox.NewClient(token)
	} else {
		log.Println("Warning: MAPBOX_ACCESS_TOKEN not set, map features disabled")
	}

	// Spaces is optional; without credentials logo upload returns 503.
	var spacesClient *spaces.Client
	if os.Getenv("SPACES_ACCESS_KEY") != "" && os.Getenv("SPACES_SECRET_KEY") != "" {
		spacesClient, err = spaces.NewClient(spaces.Config{
			AccessKey: os.Getenv("SPACES_ACCESS_KEY"),
			SecretKey: os.Getenv("SPACES_SECRET_KEY"),
			Bucket:    os.Getenv("SPACES_BUCKET"),
			Region:    os.Getenv("SPACES_REGION"),
			Endpoint:  os.Getenv("SPACES_ENDPOINT"),
			CDNURL:    os.Getenv("SPACES_CDN_URL"),
		})
		if err != nil {
			log.Printf("Warning: Failed to create Spaces client: %v. Logo upload disabled.", err)
			spacesClient = nil
		}
	} else {
		log.Println("Warning: Spaces credentials not set, logo upload disabled")
	}

	exposeResetTokens := os.Getenv("GO_ENV") != "production"

	authHandler := auth_handlers.NewAuthHandler(db, provider, jwtManager, bruteForceProtection, exposeResetTokens)
	institutionHandler := institution_handlers.NewInstitutionHandler(db, dataService, views, spacesClient)
	activityHandler := activity_handlers.NewActivityHandler(db, dataService, views)
	metricHandler := metric_handlers.NewMetricHandler(db, dataService, views)
	investorHandler := investor_handlers.NewInvestorHandler(db)
	dashboardHandler := dashboard_handlers.NewDashboardHandler(dashboardService)
	geoHandler := geo_handlers.NewGeoHandler(dataService, mapboxClient)
	uiHandler := ui_handlers.NewUIHandler(views)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Institution routes
	institutions := api.Group("/institutions")
	institutions.Get("/", institutionHandler.List)
	institutions.Get("/:id", institutionHandler.Get)
	institutions.Post("/", authMiddleware.Required(), institutionHandler.Create)
	institutions.Put("/:id", authMiddleware.Required(), institutionHandler.Update)
	institutions.Delete("/:id", authMiddleware.Required(), institutionHandler.Delete)
	institutions.Post("/:id/logo", authMiddleware.Required(), institutionHandler.UploadLogo)

	// Activity routes
	activities := api.Group("/activities")
	activities.Get("/", activityHandler.List)
	activities.Get("/:id", activityHandler.Get)
	activities.Post("/", authMiddleware.Required(), activityHandler.Create)
	activities.Put("/:id", authMiddleware.Required(), activityHandler.Update)
	activities.Delete("/:id", authMiddleware.Required(), activityHandler.Delete)

	// Metric routes
	metrics := api.Group("/metrics")
	metrics.Get("/", metricHandler.List)
	metrics.Post("/", authMiddleware.Required(), metricHandler.Create)
	metrics.Delete("/:id", authMiddleware.Required(), metricHandler.Delete)

	// Investor routes (all private to the owner)
	investors := api.Group("/investors", authMiddleware.Required())
	investors.Get("/", investorHandler.List)
	investors.Get("/:id", investorHandler.Get)
	investors.Post("/", investorHandler.Create)
	investors.Put("/:id", investorHandler.Update)
	investors.Delete("/:id", investorHandler.Delete)

	// Dashboard route
	api.Get("/dashboard", dashboardHandler.Get)

	// Map and geocoding routes
	api.Get("/map/features", geoHandler.Features)
	api.Get("/geo/geocode", geoHandler.Geocode)
	api.Get("/geo/reverse", geoHandler.ReverseGeocode)

	// Per-user UI state routes (protected)
	ui := api.Group("/ui", authMiddleware.Required())
	ui.Get("/state", uiHandler.GetState)
	ui.Put("/viewport", uiHandler.SetViewport)
	ui.Put("/layout", uiHandler.SetLayout)
	ui.Post("/modals/:name", uiHandler.OpenModal)
	ui.Delete("/modals/:name", uiHandler.CloseModal)
	ui.Post("/notifications", uiHandler.Notify)
	ui.Delete("/notifications/:id", uiHandler.DismissNotification)
	ui.Delete("/notifications", uiHandler.ClearNotifications)
}

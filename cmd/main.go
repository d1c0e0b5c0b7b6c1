package main

import (
	"context"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"note-service/internal/handler"
	"note-service/internal/middleware"
	"note-service/internal/model"
	"note-service/internal/store"
	"note-service/pkg/config"
	"note-service/pkg/database"
	"note-service/pkg/jwtutil"
	"note-service/pkg/logger"
	"note-service/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting note service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(db, &model.Tenant{}, &model.User{}, &model.Note{}); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Stores
	users := store.NewUserStore(db)
	tenants := store.NewTenantStore(db)
	notes := store.NewNoteStore(db)

	if cfg.Seed.Enabled {
		if err := store.SeedDemoData(context.Background(), db); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
		log.Info("Demo data seeded")
	}

	// Token service, shares the process-wide signing secret
	jwt := jwtutil.NewJWTUtil(&cfg.JWT)

	// Handlers
	authHandler := handler.NewAuthHandler(users, jwt)
	noteHandler := handler.NewNoteHandler(notes)
	tenantHandler := handler.NewTenantHandler(tenants)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, middleware.Auth(jwt))

	// Note routes - all require authentication, all scoped to the
	// caller's tenant
	api := e.Group("/api", middleware.Auth(jwt))
	api.GET("/notes", noteHandler.List)
	api.POST("/notes", noteHandler.Create)
	api.GET("/notes/:id", noteHandler.Get)
	api.PUT("/notes/:id", noteHandler.Update)
	api.DELETE("/notes/:id", noteHandler.Delete)

	// Tenant management - admin only
	e.POST("/tenants/:slug/upgrade", tenantHandler.Upgrade,
		middleware.Auth(jwt), middleware.RequireRole(model.RoleAdmin))

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

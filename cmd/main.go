package main

import (
	"tracker-service/internal/audit"
	"tracker-service/internal/handler"
	"tracker-service/internal/middleware"
	"tracker-service/internal/service"
	"tracker-service/pkg/config"
	"tracker-service/pkg/database"
	"tracker-service/pkg/jwtutil"
	"tracker-service/pkg/logger"
	"tracker-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting tracker service...", cfg.LogConfig()...)

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&jwtutil.Config{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
	log.Info("JWT utility initialized")

	// Wire services: one audit recorder shared by all of them, invoked
	// after each mutation commits
	db := database.GetDB()
	recorder := audit.NewDBRecorder(db, log)

	tenantSvc := service.NewTenantService(db, recorder)
	userSvc := service.NewUserService(db, recorder)
	projectSvc := service.NewProjectService(db, recorder)
	taskSvc := service.NewTaskService(db, recorder)

	authHandler := handler.NewAuthHandler(tenantSvc, userSvc)
	tenantHandler := handler.NewTenantHandler(tenantSvc)
	userHandler := handler.NewUserHandler(userSvc)
	projectHandler := handler.NewProjectHandler(projectSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/register-tenant", authHandler.RegisterTenant)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, middleware.AuthMiddleware)
	auth.POST("/logout", authHandler.Logout, middleware.AuthMiddleware)

	// API routes - all require an authenticated principal
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Tenant management
	api.GET("/tenants", tenantHandler.List)
	api.GET("/tenants/:tenantId", tenantHandler.Get)
	api.PUT("/tenants/:tenantId", tenantHandler.Update)

	// Tenant user management
	api.POST("/tenants/:tenantId/users", userHandler.Create)
	api.GET("/tenants/:tenantId/users", userHandler.List)
	api.PUT("/users/:userId", userHandler.Update)
	api.DELETE("/users/:userId", userHandler.Delete)

	// Projects
	api.POST("/projects", projectHandler.Create)
	api.GET("/projects", projectHandler.List)
	api.PUT("/projects/:projectId", projectHandler.Update)
	api.DELETE("/projects/:projectId", projectHandler.Delete)

	// Tasks
	api.POST("/projects/:projectId/tasks", taskHandler.Create)
	api.GET("/projects/:projectId/tasks", taskHandler.List)
	api.PATCH("/tasks/:taskId/status", taskHandler.UpdateStatus)
	api.PUT("/tasks/:taskId", taskHandler.Update)
	api.DELETE("/tasks/:taskId", taskHandler.Delete)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

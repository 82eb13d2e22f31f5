package main

import (
	"inventory-service/internal/handler"
	"inventory-service/internal/mailer"
	mid "inventory-service/internal/middleware"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env if present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting inventory-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire the alert transport into the handlers
	handler.Init(mailer.New(&appConfig.Mail, log))
	if appConfig.Mail.SMTPHost == "" {
		log.Warn("SMTP host not configured, stock alerts will be logged only")
	}

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Auth routes; register and login are public, the profile endpoints
	// require a valid token
	authAPI := e.Group("/api/auth")
	authAPI.POST("/register", handler.Register)
	authAPI.POST("/login", handler.Login)
	authAPI.GET("/me", handler.Me, mid.AuthMiddleware)
	authAPI.PUT("/me", handler.UpdateProfile, mid.AuthMiddleware)

	// Product API routes, including stock movements and CSV import/export
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", handler.ListProducts)
	productAPI.GET("/:id", handler.GetProduct)
	productAPI.POST("", handler.CreateProduct)
	productAPI.PUT("/:id", handler.UpdateProduct)
	productAPI.DELETE("/:id", handler.DeleteProduct)
	productAPI.POST("/:id/stock", handler.UpdateStock)
	productAPI.GET("/:id/movements", handler.ListStockMovements)
	productAPI.POST("/import", handler.ImportProducts)
	productAPI.GET("/export", handler.ExportProducts)

	// Category API routes
	categoryAPI := e.Group("/api/categories", mid.AuthMiddleware)
	categoryAPI.GET("", handler.ListCategories)
	categoryAPI.GET("/:id", handler.GetCategory)
	categoryAPI.POST("", handler.CreateCategory)
	categoryAPI.PUT("/:id", handler.UpdateCategory)
	categoryAPI.DELETE("/:id", handler.DeleteCategory)

	// Supplier API routes
	supplierAPI := e.Group("/api/suppliers", mid.AuthMiddleware)
	supplierAPI.GET("", handler.ListSuppliers)
	supplierAPI.GET("/:id", handler.GetSupplier)
	supplierAPI.POST("", handler.CreateSupplier)
	supplierAPI.PUT("/:id", handler.UpdateSupplier)
	supplierAPI.DELETE("/:id", handler.DeleteSupplier)

	// Dashboard and reports
	dashboardAPI := e.Group("/api/dashboard", mid.AuthMiddleware)
	dashboardAPI.GET("", handler.Dashboard)

	reportAPI := e.Group("/api/reports", mid.AuthMiddleware)
	reportAPI.GET("/inventory", handler.InventoryReport)
	reportAPI.GET("/suppliers", handler.SupplierReport)
	reportAPI.POST("/expiry-alerts", handler.SendExpiryAlerts)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

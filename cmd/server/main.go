package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/config"
	"github.com/tourvista/tours-backend/internal/database"
	"github.com/tourvista/tours-backend/internal/handlers"
	"github.com/tourvista/tours-backend/internal/middleware"
	"github.com/tourvista/tours-backend/internal/services"
	"github.com/tourvista/tours-backend/pkg/gateway"
	"github.com/tourvista/tours-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting TourVista Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	tourRepo := database.NewTourRepository(db)
	availabilityRepo := database.NewAvailabilityRepository(db)
	holdRepo := database.NewHoldRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	earningsRepo := database.NewEarningsRepository(db)
	agentRepo := database.NewAgentRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	gatewayClient := gateway.NewClient(gateway.Config{
		Environment:   cfg.Payment.Environment,
		BaseURL:       cfg.Payment.BaseURL,
		MerchantKey:   cfg.Payment.MerchantKey,
		MerchantToken: cfg.Payment.MerchantToken,
	}, logger)
	if !gatewayClient.IsConfigured() {
		logger.Warn("Payment gateway credentials missing, reconciliation will fail")
	}

	notifier := services.NewLogNotifier(logger)
	pricingService := services.NewPricingService()
	capacityService := services.NewCapacityService(availabilityRepo, bookingRepo, holdRepo)
	holdService := services.NewHoldService(db, holdRepo, capacityService, logger, cfg.Hold.TTL)
	checkoutService := services.NewCheckoutService(tourRepo, pricingService, holdService)
	bookingService := services.NewBookingService(
		db, bookingRepo, holdRepo, paymentRepo, earningsRepo,
		tourRepo, pricingService, gatewayClient, notifier, logger,
	)
	availabilityService := services.NewAvailabilityService(availabilityRepo, tourRepo, logger)
	authService := services.NewAgentAuthService(agentRepo, jwtService, logger)

	// Initialize and start the stale-hold cleanup job
	cleanupService := services.NewCleanupService(holdRepo, logger, cfg.Hold.CleanupSpec, cfg.Hold.CleanupAfter)
	if err := cleanupService.Start(); err != nil {
		logger.Fatalf("Failed to start cleanup service: %v", err)
	}

	// Initialize handlers
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, holdService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(db, tourRepo, capacityService, availabilityService, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", authHandler.Login)

		v1.POST("/checkout/quote", checkoutHandler.Quote)
		v1.POST("/holds/:id", checkoutHandler.HoldAction)

		v1.POST("/bookings/reserve", bookingHandler.Reserve)
		v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)
		v1.GET("/bookings/:id/payment-status", bookingHandler.PaymentStatus)

		v1.GET("/tours/:id/availability", availabilityHandler.Window)

		v1.POST("/payments/webhook", bookingHandler.Webhook)

		// Agent calendar management
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			protected.PUT("/tours/:id/availability/:date", availabilityHandler.Upsert)
			protected.GET("/tours/:id/availability-entries", availabilityHandler.List)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cleanupService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if agentCtx, ok := middleware.GetAgentContext(c); ok {
			fields["agent_id"] = agentCtx.AgentID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

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

	"github.com/zugo/transit-backend/internal/config"
	"github.com/zugo/transit-backend/internal/database"
	"github.com/zugo/transit-backend/internal/handlers"
	"github.com/zugo/transit-backend/internal/middleware"
	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/services"
	"github.com/zugo/transit-backend/internal/store"
	"github.com/zugo/transit-backend/internal/wizard"
	"github.com/zugo/transit-backend/pkg/jwt"
	"github.com/zugo/transit-backend/pkg/mailer"
	"github.com/zugo/transit-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

const wizardSessionTTL = 30 * time.Minute

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting ZuGo Transit Backend")
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

	// Select the storage backend. Without DATABASE_URL the server runs
	// against a seeded in-memory store and loses everything on restart.
	var st *store.Store
	var db database.DB
	if cfg.Database.URL != "" {
		logger.Info("Connecting to database...")
		db, err = database.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Info("Database connection established")
		st = database.NewStore(db)
	} else {
		logger.Warn("DATABASE_URL not set, using seeded in-memory store; data will not survive a restart")
		st = store.NewMemoryStore()
		transporterID, err := store.Seed(st)
		if err != nil {
			logger.Fatalf("Failed to seed in-memory store: %v", err)
		}
		logger.WithFields(logrus.Fields{
			"transporter_email": store.DevTransporterEmail,
			"passenger_email":   store.DevPassengerEmail,
			"transporter_id":    transporterID,
		}).Info("Development accounts seeded")
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	verificationService := services.NewVerificationService(services.VerificationConfig{
		CodeLength:  cfg.Verification.CodeLength,
		Expiry:      time.Duration(cfg.Verification.ExpiryMinutes) * time.Minute,
		MaxAttempts: cfg.Verification.MaxAttempts,
		RateLimit:   cfg.Verification.RateLimit,
		RateWindow:  time.Duration(cfg.Verification.RateWindowMinutes) * time.Minute,
	})
	formValidator := validator.NewFormValidator()
	reportService := services.NewReportService(st)
	wizardManager := wizard.NewManager(wizardSessionTTL, wizard.NewStoreSubmitter(st.Trips))

	// Initialize mail gateway
	var mailGateway mailer.Mailer
	if cfg.Mail.Mode == "production" {
		logger.Info("Initializing mail gateway in production mode...")
		mailGateway = mailer.NewAPIGateway(mailer.APIConfig{
			APIURL: cfg.Mail.APIURL,
			APIKey: cfg.Mail.APIKey,
			Sender: cfg.Mail.Sender,
		})
	} else {
		logger.Info("Mail gateway in development mode (messages are logged, not sent)")
		mailGateway = mailer.NewDevGateway(logger)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		jwtService,
		verificationService,
		formValidator,
		st,
		mailGateway,
		cfg,
	)
	busHandler := handlers.NewBusHandler(st.Buses)
	driverHandler := handlers.NewDriverHandler(st.Drivers)
	routeHandler := handlers.NewRouteHandler(st.Routes)
	tripHandler := handlers.NewTripHandler(st.Trips, wizardManager)
	notificationHandler := handlers.NewNotificationHandler(st.Notifications)
	reportHandler := handlers.NewReportHandler(reportService, st.Users)

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
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register/passenger", authHandler.RegisterPassenger)
			auth.POST("/register/transporter", authHandler.RegisterTransporter)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/verify-email", authHandler.VerifyEmail)
			auth.POST("/resend-verification", authHandler.ResendVerification)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)

			// Protected routes (require JWT authentication)
			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.POST("/logout", authHandler.Logout)
				protected.GET("/profile", authHandler.GetProfile)
				protected.PATCH("/profile", authHandler.UpdateProfile)
				protected.GET("/sessions", authHandler.ListSessions)
			}
		}

		// Routes shared by all authenticated roles
		authenticated := v1.Group("")
		authenticated.Use(middleware.AuthMiddleware(jwtService))
		{
			authenticated.GET("/routes", routeHandler.ListRoutes)
			authenticated.GET("/routes/:id", routeHandler.GetRoute)

			authenticated.GET("/notifications", notificationHandler.ListNotifications)
			authenticated.POST("/notifications/read-all", notificationHandler.MarkAllRead)
			authenticated.POST("/notifications/:id/read", notificationHandler.MarkRead)
			authenticated.DELETE("/notifications/:id", notificationHandler.Dismiss)
		}

		// Transporter routes (transporter role only)
		transporter := v1.Group("/transporter")
		transporter.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(string(models.RoleTransporter)))
		{
			transporter.GET("/buses", busHandler.ListBuses)
			transporter.GET("/buses/stats", busHandler.GetFleetStats)
			transporter.GET("/buses/:id", busHandler.GetBus)
			transporter.POST("/buses", busHandler.CreateBus)
			transporter.PATCH("/buses/:id", busHandler.UpdateBus)
			transporter.DELETE("/buses/:id", busHandler.DeleteBus)

			transporter.GET("/drivers", driverHandler.ListDrivers)
			transporter.GET("/drivers/stats", driverHandler.GetDriverStats)
			transporter.GET("/drivers/:id", driverHandler.GetDriver)
			transporter.POST("/drivers", driverHandler.CreateDriver)
			transporter.PATCH("/drivers/:id", driverHandler.UpdateDriver)
			transporter.DELETE("/drivers/:id", driverHandler.DeleteDriver)

			transporter.POST("/routes", routeHandler.CreateRoute)

			transporter.GET("/trips", tripHandler.ListTrips)
			transporter.GET("/trips/stats", tripHandler.GetTripStats)
			transporter.POST("/trips/wizard", tripHandler.StartWizard)
			transporter.GET("/trips/wizard/:id", tripHandler.GetWizard)
			transporter.POST("/trips/wizard/:id/next", tripHandler.WizardNext)
			transporter.POST("/trips/wizard/:id/prev", tripHandler.WizardPrev)
			transporter.DELETE("/trips/wizard/:id", tripHandler.CancelWizard)
			transporter.GET("/trips/:id", tripHandler.GetTrip)
			transporter.PATCH("/trips/:id", tripHandler.UpdateTrip)
			transporter.DELETE("/trips/:id", tripHandler.DeleteTrip)

			transporter.GET("/reports/operations", reportHandler.GetReport)
			transporter.GET("/reports/operations/pdf", reportHandler.DownloadReportPDF)
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

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request failed with errors")
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint. db is nil when the
// server runs on the in-memory store.
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		storage := "memory"
		if db != nil {
			storage = "postgres"
			if err := db.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"storage": storage,
					"error":   err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"storage":   storage,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

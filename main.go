package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"clockwork-server/config"
	"clockwork-server/database"
	"clockwork-server/jobs"
	"clockwork-server/middleware"
	"clockwork-server/routes"
	"clockwork-server/services"
	ws "clockwork-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(); err != nil {
			log.Printf("❌ Demo seed failed: %v", err)
		}
	}

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Disable automatic redirects for trailing slashes
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security middleware stack
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.InputValidationMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8081"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))
	router.Use(middleware.AuditLogMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "ClockWork server is running",
			"time":    time.Now().UTC(),
		})
	})

	// Live notification hub
	hub := ws.NewHub()
	go hub.Run()

	// Wire services
	notificationService := services.NewNotificationService(database.DB, hub)
	creditService := services.NewCreditService(database.DB)
	trustService := services.NewTrustService(database.DB)
	jobService := services.NewJobService(database.DB, creditService, trustService, notificationService)
	authService := services.NewAuthService(database.DB, creditService)

	uploader, err := services.NewCloudinaryUploader()
	if err != nil {
		log.Printf("⚠️ Media uploads disabled: %v", err)
	}

	// API routes
	api := router.Group("/api/v1")
	{
		routes.RegisterAuthRoutes(api, authService)
		routes.RegisterJobRoutes(api, jobService, hub)
		routes.RegisterCreditRoutes(api, creditService)
		routes.RegisterTrustRoutes(api, trustService)
		routes.RegisterNotificationRoutes(api, notificationService)
		routes.RegisterWorkerRoutes(api, uploaderOrNil(uploader))
		routes.RegisterWebSocketRoutes(api, hub)
	}

	// Background maintenance
	maintenanceJob := jobs.NewTrustMaintenanceJob(trustService, authService, notificationService)
	maintenanceJob.Start()
	defer maintenanceJob.Stop()

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// uploaderOrNil keeps the nil interface nil when cloudinary is unconfigured.
func uploaderOrNil(u *services.CloudinaryUploader) services.Uploader {
	if u == nil {
		return nil
	}
	return u
}

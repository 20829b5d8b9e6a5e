package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ticketing-backoffice/internal/cache"
	"ticketing-backoffice/internal/commerce"
	"ticketing-backoffice/internal/config"
	"ticketing-backoffice/internal/handlers"
	"ticketing-backoffice/internal/notify"
	"ticketing-backoffice/internal/repositories"
	"ticketing-backoffice/internal/services"
	"ticketing-backoffice/pkg/database"
	"ticketing-backoffice/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Initialize database
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// Run migrations
	if err := repositories.AutoMigrate(db); err != nil {
		log.Fatalf("Migration error: %v", err)
	}

	// Initialize read cache with pub/sub invalidation
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Redis connection error: %v", err)
	}
	store := cache.NewStore(redisClient, cfg.CacheTTL)

	listenCtx, stopListener := context.WithCancel(context.Background())
	defer stopListener()
	go store.Listen(listenCtx)

	// External collaborators
	commerceClient := commerce.NewClient(cfg.CommerceBaseURL, cfg.CommerceTimeout)
	notifier := notify.NewNotifier(cfg.ConfirmContactURL)

	// Initialize repositories
	repo := repositories.NewRepository(db)

	// Initialize services
	authSvc := services.NewAuthService(repo, cfg)
	eventSvc := services.NewEventService(repo, store, commerceClient, cfg)
	orderSvc := services.NewOrderService(repo, store, commerceClient, cfg)
	checkinSvc := services.NewCheckinService(repo, store, notifier, cfg)
	bundleSvc := services.NewBundleService(repo, store, commerceClient, cfg)

	// Initialize handlers
	handler := handlers.NewHandler(authSvc, eventSvc, orderSvc, checkinSvc, bundleSvc, cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Ticketing Back-Office API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// QR code images
	if err := os.MkdirAll(cfg.QRDir, 0755); err != nil {
		log.Fatalf("Failed to create QR directory: %v", err)
	}
	app.Static("/qrcodes", cfg.QRDir)

	// Register routes
	api := app.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopListener()
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}
	log.Println("Server stopped gracefully")
}

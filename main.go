package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"trailmate/internal/config"
	"trailmate/internal/handlers"
	"trailmate/internal/middleware"
	"trailmate/internal/models"
	"trailmate/internal/repositories"
	"trailmate/internal/services"
	"trailmate/pkg/rabbitmq"
	"trailmate/pkg/storage"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	ctx := context.Background()

	// --- Database ---
	// TranslateError lets the repositories surface unique-index
	// violations as gorm.ErrDuplicatedKey across drivers.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Mountain{},
		&models.Path{},
		&models.Footprint{},
		&models.HikingHistory{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Redis (token store) ---
	redisClient, err := repositories.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	tokenStore := repositories.NewRedisTokenStore(redisClient)

	// --- S3 (profile images) ---
	imageStorage, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// --- RabbitMQ (auth events, best effort) ---
	// The auth service tolerates a nil publisher, so a missing broker
	// degrades to skipped events rather than a failed boot.
	var events services.EventPublisher
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Printf("Warning: RabbitMQ unavailable, auth events disabled: %v", err)
	} else {
		defer mqClient.Close()
		events = mqClient
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	footprintRepo := repositories.NewGORMFootprintRepository(db)
	historyRepo := repositories.NewGORMHikingHistoryRepository(db)

	// --- Initialize Services ---
	tokenService := services.NewTokenService(tokenStore, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	kakaoService := services.NewKakaoService(cfg.KakaoClientID, cfg.KakaoClientSecret, cfg.KakaoRedirectURL)
	userService := services.NewUserService(historyRepo)
	authService := services.NewAuthService(userRepo, userService, tokenService, kakaoService, imageStorage, events, cfg.DeepLinkScheme)
	footprintService := services.NewFootprintService(footprintRepo)
	historyService := services.NewHikingHistoryService(historyRepo, footprintRepo)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService, cfg.RefreshTokenTTL)
	footprintHandler := handlers.NewFootprintHandler(footprintService, historyService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Protected routes (require a valid, non-revoked access token)
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(tokenService))
	footprintHandler.RegisterRoutes(protectedRoutes)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start auth-events consumer ---
	// Placeholder consumer; downstream processing (welcome mail, stats)
	// hangs off this queue in sibling services.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for auth events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received auth event %s (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeAuthEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

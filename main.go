package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"katalog/internal/config"
	"katalog/internal/handlers"
	"katalog/internal/middleware"
	"katalog/internal/repositories"
	"katalog/internal/services"
	"katalog/pkg/media"
	"katalog/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Document store ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting MongoDB client: %v", err)
		}
	}()
	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	// --- Media store ---
	mediaClient, err := media.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		log.Fatalf("Failed to initialize media client: %v", err)
	}

	// --- RabbitMQ (compensating media cleanup) ---
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close()

	// --- Repositories / services / handlers ---
	productRepo := repositories.NewMongoProductRepository(mongoClient.Database(cfg.MongoDatabase))
	productService := services.NewProductService(productRepo, mediaClient, mqClient, cfg)
	productHandler := handlers.NewProductHandler(productService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())
	// Resolve the caller's admin flag before any handler runs.
	app.Use(middleware.ResolveAdmin(cfg.JWTSecret))

	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Media cleanup consumer ---
	// Retries deletion of assets the request path could not release. A task
	// that still fails is nacked and requeued by the client.
	go func() {
		log.Println("Starting RabbitMQ consumer for media cleanup...")
		messageHandler := func(msg amqp.Delivery) error {
			var task rabbitmq.CleanupTask
			if err := json.Unmarshal(msg.Body, &task); err != nil {
				log.Printf("Dropping malformed cleanup task: %v", err)
				return nil
			}
			for _, externalID := range task.ExternalIDs {
				if err := mediaClient.Destroy(context.Background(), externalID); err != nil {
					return fmt.Errorf("cleanup of asset %s failed: %w", externalID, err)
				}
				log.Printf("Cleaned up media asset %s (%s)", externalID, task.Reason)
			}
			return nil
		}
		if consumerErr := mqClient.ConsumeCleanupTasks(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}()

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

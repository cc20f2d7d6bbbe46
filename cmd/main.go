package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"covent/docs/swagger"
	"covent/internal/api"
	"covent/internal/config"
	"covent/internal/db"
	"covent/internal/events"
	"covent/internal/models"
	"covent/internal/services"
	"covent/internal/tasks"
	"covent/internal/utils/logger"

	"github.com/joho/godotenv"
)

// @title Covent API
// @version 1.0
// @description Event co-hosting and permission resolution API
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {

	logger := logger.New("covent")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log.Fatalf("Failed to close database connection: %v", err)
		}
	}()

	db_instance := db.GetDB()

	// Initialize task handlers
	taskHandler := tasks.NewTaskHandler(db_instance)

	// Initialize task server
	taskServer := tasks.NewServer(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		taskHandler,
		logger,
	)

	// Create a context for task server
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// Start task server
	go func() {
		if err := taskServer.Start(serverCtx); err != nil {
			logger.Error("Task server error", err)
		}
	}()

	// Initialize task scheduler
	taskScheduler := tasks.NewScheduler(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		logger,
	)

	// Start task scheduler
	go func() {
		if err := taskScheduler.Start(); err != nil {
			logger.Error("Task scheduler error", err)
		}
	}()

	// Task client for enqueueing from event hooks
	taskClient := tasks.NewTaskClient(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	defer taskClient.Close()

	grantService := services.NewGrantService(db_instance)

	// A fresh brand gets its founder and default member roles immediately.
	events.On(events.TopicBrandCreated, func(data interface{}) {
		brand, ok := data.(*models.Brand)
		if !ok {
			return
		}
		if err := models.SeedBrandRoles(db_instance, brand); err != nil {
			logger.Error("Failed to seed roles for brand "+brand.ID, err)
		}
	})

	// A new code template re-normalizes the stored grants of every event it
	// scopes to, so deny-fill stays current.
	events.On(events.TopicCodeTemplateCreated, func(data interface{}) {
		template, ok := data.(*models.CodeTemplate)
		if !ok {
			return
		}
		eventIDs, err := grantService.EventIDsForTemplate(context.Background(), template)
		if err != nil {
			logger.Error("Failed to list events for template "+template.ID, err)
			return
		}
		for _, eventID := range eventIDs {
			if err := taskClient.EnqueueGrantsSync(tasks.GrantsSyncPayload{
				EventID: eventID,
				BrandID: template.BrandID,
			}); err != nil {
				logger.Error("Failed to enqueue grant sync for event "+eventID, err)
			}
		}
	})

	// Initialize API server
	apiServer := api.NewServer(cfg, db_instance)
	go func() {
		logger.Success("API server started")

		// Swagger documentation
		swagger.SwaggerInfo.Title = "Covent API Documentation"
		swagger.SwaggerInfo.Description = "Event co-hosting and permission resolution API"
		swagger.SwaggerInfo.Version = "1.0"
		swagger.SwaggerInfo.Schemes = []string{"https"}

		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop task scheduler
	taskScheduler.Stop()

	// Stop task server
	serverCancel()

	// Shutdown API server
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}

	logger.Info("Servers shutdown gracefully")
}

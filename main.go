package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"xlmongo/internal/config"
	"xlmongo/internal/container"
	"xlmongo/internal/logging"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(appConfig.Logging.Level, appConfig.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		logger.Fatal("failed to create application container", zap.Error(err))
	}
	defer appContainer.Shutdown(context.Background())

	// Initialize container with database
	if err := appContainer.Connect(ctx); err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	server, err := appContainer.Server()
	if err != nil {
		logger.Fatal("failed to initialize server", zap.Error(err))
	}

	// Start the server
	logger.Info("starting xlmongo server", zap.String("port", appConfig.Server.Port))
	if err := server.ListenAndServe(ctx, ":"+appConfig.Server.Port, appConfig.Server.ShutdownTimeout); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}

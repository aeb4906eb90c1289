package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nuanswers/internal"
	"nuanswers/internal/config"
	"nuanswers/internal/container"
	"nuanswers/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
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
	logger := internal.NewLoggerTo(os.Stdout, internal.ParseLogLevel(appConfig.Logging.Level), appConfig.Logging.Pretty)
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	server, err := ui.NewServer(appContainer.ServerDeps())
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}

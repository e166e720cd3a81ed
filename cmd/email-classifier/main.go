package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/di"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	apiServer ports.APIServer,
	repo core.EmailRepository,
) error {
	defer logger.Sync()

	// Start the API server
	if err := apiServer.Start(); err != nil {
		logger.Fatal("Failed to start API server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the server
	if err := apiServer.Stop(); err != nil {
		logger.Error("Failed to stop API server", zap.Error(err))
	}

	// Close the store
	if err := repo.Close(); err != nil {
		logger.Error("Failed to close email store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}

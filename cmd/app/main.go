package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"uniform-inspection/internal/config"
	"uniform-inspection/pkg/log"
	"uniform-inspection/pkg/roboflow"
	"uniform-inspection/pkg/sheets"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	detector := roboflow.New(logger)
	sheetsClient := sheets.New(logger)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithMiddleware(),
		config.WithStorage(),
		config.WithDetector(detector),
		config.WithSheetsClient(sheetsClient),
		config.WithGeminiClient(),
		config.WithS3Client(),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")
}

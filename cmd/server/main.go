package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/voicelab/voiceclone/adapters/seedvc"
	"github.com/voicelab/voiceclone/domain/repositories"
	"github.com/voicelab/voiceclone/internal/api"
	"github.com/voicelab/voiceclone/internal/config"
	"github.com/voicelab/voiceclone/internal/metrics"
	"github.com/voicelab/voiceclone/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded configuration from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Initialize the model converter adapter
	var converter repositories.VoiceConverter
	if cfg.UseMockConverter {
		logger.Warn("Using mock voice converter, conversions will produce synthetic audio")
		converter = seedvc.NewMockConverter(logger)
	} else {
		client := seedvc.NewClient(seedvc.Config{
			RunnerURL: cfg.RunnerURL,
			Timeout:   cfg.RunnerTimeout,
		}, logger)

		if err := client.Health(context.Background()); err != nil {
			// The runner loads models for minutes on first boot;
			// requests will fail until it is up.
			logger.Warn("Seed-VC runner is not reachable yet",
				zap.String("runnerURL", cfg.RunnerURL),
				zap.Error(err))
		}
		converter = client
	}

	// Initialize usecase services
	cloneService := usecase.NewCloneService(converter, logger)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Initialize API routes
	api.InitRoutes(e, cloneService, converter, cfg, m, registry, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Voice clone server started",
		zap.String("port", cfg.Port),
		zap.String("runnerURL", cfg.RunnerURL))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

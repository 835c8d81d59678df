package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/grbod/shipdash/internal/aggregator"
	"github.com/grbod/shipdash/internal/cache"
	"github.com/grbod/shipdash/internal/config"
	"github.com/grbod/shipdash/internal/provider/registry"
	"github.com/grbod/shipdash/internal/server"
	"github.com/grbod/shipdash/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize OpenTelemetry
	shutdown, err := telemetry.InitTracer("shipdash", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Missing credentials are a startup failure, not a runtime condition.
	fetchers, err := registry.BuildFetchers(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build providers: %v", err)
	}

	shipmentCache := cache.New(cfg.Cache.TTLDuration(), logger)
	agg := aggregator.New(fetchers, shipmentCache, logger)

	srv := server.New(cfg.Server.Port, logger, server.NewHandler(agg, cfg.Fetch.DaysBack, logger))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("shipdash started",
		slog.Int("port", cfg.Server.Port),
		slog.Duration("cache_ttl", cfg.Cache.TTLDuration()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case sig := <-sigChan:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}
}

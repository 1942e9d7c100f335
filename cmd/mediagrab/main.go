package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mediagrab/internal/api"
	"mediagrab/internal/config"
	"mediagrab/internal/extract"
	"mediagrab/internal/fetch"
	"mediagrab/internal/monitoring"
	"mediagrab/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}
	if cfg.SessionToken == "" {
		logger.Warn("SESSION_TOKEN not set, running in degraded mode: unauthenticated fetches only")
	}

	// Optional stores
	var cache *storage.RedisStore
	if cfg.RedisAddr != "" {
		cache = storage.NewRedisStore(cfg.RedisAddr, time.Duration(cfg.CacheTTLMinutes)*time.Minute)
	} else {
		logger.Info("REDIS_ADDR not set, result cache disabled")
	}

	var history *storage.PostgresStore
	if cfg.PostgresURL != "" {
		history, err = storage.NewPostgresStore(cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
	} else {
		logger.Info("POSTGRES_URL not set, extraction history disabled")
	}

	metrics := monitoring.NewMetrics()

	// Core extraction pipeline
	fetcher := fetch.NewClient(time.Duration(cfg.FetchTimeout)*time.Second, cfg.SessionToken)
	var renderer extract.Renderer
	if cfg.RenderFallback {
		renderer = fetch.NewRenderer(time.Duration(cfg.RenderTimeout) * time.Second)
	}
	extractor := extract.NewExtractor(fetcher, renderer, metrics, logger,
		time.Duration(cfg.CascadeTimeout)*time.Second)

	// API server
	server := api.NewServer(cfg, extractor, fetcher, cache, history, metrics, logger)

	// Graceful shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/logging"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api server failed")
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Redis is optional; mutations are not rate limited without it.
	var limiter *middleware.RateLimiter
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiting disabled")
		} else {
			defer func() { _ = client.Close() }()
			limiter = middleware.NewMutationRateLimiter(client, cfg.RateLimitPerHour)
		}
	}

	svcs, err := server.NewServices(cfg, db)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	srv := server.New(cfg, db, svcs, limiter)

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("environment", string(cfg.Environment)).Msg("starting server")
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("received signal")
	}

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

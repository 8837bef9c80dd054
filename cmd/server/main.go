package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/lostfound/internal/api"
	"github.com/eldtechnologies/lostfound/internal/api/middleware"
	"github.com/eldtechnologies/lostfound/internal/config"
	"github.com/eldtechnologies/lostfound/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Claims: PostgreSQL when configured, SQLite otherwise
	var claims store.DataStore
	if cfg.DatabaseURL != "" {
		logger.Info().Msg("running database migrations...")
		if err := store.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Msg("migrations completed")

		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		claims = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		claims = sqliteStore
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite claims store")
	}
	defer claims.Close()

	// Chat: Redis when configured, in-process otherwise
	var chat store.ChatStore
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		chat = redisStore
		logger.Info().Msg("connected to Redis")
	} else {
		chat = store.NewMemoryChatStore()
		logger.Warn().Msg("REDIS_URL not set, chat messages are kept in memory")
	}

	limiter := middleware.NewRateLimiter(logger, middleware.RateLimiterConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Whitelist: cfg.RateLimitWhitelist,
	})
	go sweepLimiter(ctx, limiter, logger)

	router := api.NewRouter(logger, claims, chat, api.RouterConfig{
		JWTSecret:       cfg.JWTSecret,
		TimestampFormat: cfg.ChatTimestampFormat,
		AllowedOrigins:  cfg.AllowedOrigins,
		Limiter:         limiter,
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("timestamp_format", cfg.ChatTimestampFormat).
			Msg("starting lostfound server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")
	cancel()

	// Graceful shutdown with 30 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// sweepLimiter drops idle rate limit buckets until ctx is done.
func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter, logger zerolog.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(15 * time.Minute); n > 0 {
				logger.Debug().Int("buckets", n).Msg("rate limit buckets swept")
			}
		}
	}
}

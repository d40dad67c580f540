package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Toprix-comparateur/toprix-backend/config"
	httpDelivery "github.com/Toprix-comparateur/toprix-backend/internal/delivery/http"
	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
	"github.com/Toprix-comparateur/toprix-backend/internal/infrastructure/cache"
	"github.com/Toprix-comparateur/toprix-backend/internal/infrastructure/mongostore"
	"github.com/Toprix-comparateur/toprix-backend/internal/telemetry"
	"github.com/Toprix-comparateur/toprix-backend/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Int("stores", len(cfg.Stores)).
		Msg("Starting Toprix backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Server.Environment,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	registry, err := mongostore.NewRegistryFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize store registry")
	}

	facetCache, closeCache := initCache(ctx, cfg, logger)

	catalog := usecase.NewCatalogService(
		registry,
		registry.Comparatif(),
		facetCache,
		usecase.CatalogServiceConfig{
			PageSize:          cfg.Search.PageSize,
			MaxPage:           cfg.Search.MaxPage,
			TextFetchFactor:   cfg.Search.TextFetchFactor,
			FilterFetchFactor: cfg.Search.FilterFetchFactor,
			StoreTimeout:      cfg.Search.StoreTimeout,
			FacetCacheTTL:     cfg.Cache.FacetTTL,
			InStockValue:      cfg.Search.InStockValue,
		},
		logger,
	)

	limiter := httpDelivery.NewIPRateLimiter(httpDelivery.RateLimiterConfig{
		RequestsPerMinute: cfg.RateLimit.PerIP,
		BurstSize:         cfg.RateLimit.Burst,
	})
	go limiter.Run(ctx, 5*time.Minute)

	handler := httpDelivery.NewHandler(catalog, registry, logger)
	router := httpDelivery.SetupRouter(cfg, handler, limiter, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	closeCache()
	registry.Close(shutdownCtx)
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	logger = logger.Level(level).With().Timestamp().Str("service", "toprix-backend").Logger()
	return &logger
}

// initCache returns the facet cache and its close function. An unreachable
// Redis falls back to the in-memory cache.
func initCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.CacheRepository, func()) {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:    cfg.Cache.RedisURL,
			Prefix: cfg.Cache.RedisPrefix,
		})
		if err == nil {
			logger.Info().Msg("Redis cache connected")
			return redisCache, func() { _ = redisCache.Close() }
		}
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
	}

	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	return memoryCache, func() { _ = memoryCache.Close() }
}

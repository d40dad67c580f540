package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Toprix-comparateur/toprix-backend/config"
)

// SetupRouter creates and configures the Gin router. limiter may be nil to
// disable rate limiting.
func SetupRouter(cfg *config.Config, handler *Handler, limiter *IPRateLimiter, logger *zerolog.Logger) *gin.Engine {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.Telemetry.Enabled {
		router.Use(TracingMiddleware(cfg.Telemetry.ServiceName))
	}

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(RateLimitMiddleware(limiter))
	}
	{
		produits := v1.Group("/produits")
		{
			produits.GET("", handler.SearchProducts)
			produits.GET("/:id", handler.GetProduct)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", handler.ListCategories)
			categories.GET("/:slug", handler.CategoryDetail)
		}

		marques := v1.Group("/marques")
		{
			marques.GET("", handler.ListBrands)
			marques.GET("/:nom", handler.BrandDetail)
		}

		v1.GET("/boutiques", handler.ListStores)
	}

	return router
}

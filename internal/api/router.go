// Package api wires the catalog's HTTP surface: middleware, health probes,
// the Prometheus endpoint and the versioned resource routes.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sgci.io/catalog/internal/api/handlers"
	"sgci.io/catalog/internal/api/middleware"
	"sgci.io/catalog/internal/metrics"
)

// RouterConfig holds configuration for setting up the HTTP router.
type RouterConfig struct {
	// Service answers resource queries.
	Service handlers.ResourceQuerier

	// Store is pinged by the readiness probe.
	Store handlers.Pinger

	// Logger is the Zap logger for request logging.
	Logger *zap.Logger

	// InstanceID identifies this server process in health responses.
	InstanceID string

	// AllowOrigins is the list of allowed CORS origins. Empty disables CORS.
	AllowOrigins []string

	// RateLimiter throttles clients by IP. Nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
}

// SetupRouter creates the Gin engine with all routes and middleware.
func SetupRouter(config *RouterConfig) *gin.Engine {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	router.Use(gin.Recovery())

	// Metrics first so rejected requests are counted.
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	if len(config.AllowOrigins) > 0 {
		router.Use(middleware.CORS(config.AllowOrigins))
	}

	healthHandler := handlers.NewHealthHandler(config.Store, config.InstanceID)
	resourceHandler := handlers.NewResourceHandler(config.Service)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		metrics.Registry,
		promhttp.HandlerOpts{},
	)))

	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Liveness)
		health.GET("/ready", healthHandler.Readiness)
	}

	v1 := router.Group("/api/v1")
	if config.RateLimiter != nil {
		v1.Use(middleware.RateLimitByIP(config.RateLimiter))
	}
	{
		// GET /api/v1/resources?id=&name=&resourceType=
		v1.GET("/resources", resourceHandler.ListResources)
	}

	return router
}

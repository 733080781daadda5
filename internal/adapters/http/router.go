package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/adapters/http/handlers"
	"github.com/jsamuelsen/scopestore/internal/adapters/http/middleware"
	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/platform/config"
	"github.com/jsamuelsen/scopestore/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = config.DefaultRequestTimeout

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// Store holds each request's scope. Required.
	Store *scope.Store

	// AuthConfig contains authentication header configuration.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// HomeHandler serves the greeting and profile endpoints.
	HomeHandler *handlers.HomeHandler

	// ContextHandler exposes the caller's scope.
	ContextHandler *handlers.ContextHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Scope - fresh context slot for the request
//  2. Recovery - catch panics, slot still readable
//  3. Request ID - generate/extract request ID
//  4. Correlation ID - handle distributed tracing correlation
//  5. OpenTelemetry - tracing and metrics
//  6. Trace ID - span trace id, or a generated one
//  7. Logging - request logging (skips health endpoints)
//  8. Authenticate - gateway claims into the scope
//  9. Timeout - request deadline on /api/v1
//
// Route groups:
//   - /-/ (internal): Health endpoints, no auth required
//   - /api/v1/ (public API): Business endpoints, auth as needed
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	serviceName := "scopestore"
	if cfg.AppConfig != nil && cfg.AppConfig.Name != "" {
		serviceName = cfg.AppConfig.Name
	}

	engine.Use(
		middleware.Scope(cfg.Store),
		middleware.Recovery(cfg.Store, cfg.Logger),
		middleware.RequestID(cfg.Store),
		middleware.CorrelationID(cfg.Store),
		telemetry.TracingMiddleware(serviceName),
		telemetry.Middleware(cfg.Store),
		middleware.TraceID(cfg.Store),
		middleware.Logging(cfg.Logger),
		middleware.Authenticate(cfg.Store, cfg.AuthConfig, cfg.Logger),
	)

	// Register health endpoints (no auth, no timeout for probes)
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Store, cfg.Logger, cfg.Timeout))
	}

	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers business API routes.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.HomeHandler != nil {
		cfg.HomeHandler.RegisterRoutes(rg)
	}

	if cfg.ContextHandler != nil {
		cfg.ContextHandler.RegisterRoutes(rg)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(
	engine *gin.Engine,
	store *scope.Store,
	logger *slog.Logger,
	healthHandler *handlers.HealthHandler,
) {
	engine.Use(
		middleware.Scope(store),
		middleware.Recovery(store, logger),
		middleware.RequestID(store),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig from the loaded configuration.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	store *scope.Store,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	timeout := DefaultRequestTimeout
	if cfg.Scope.RequestTimeout >= 0 {
		timeout = cfg.Scope.RequestTimeout
	}

	return RouterConfig{
		Logger:        logger,
		Store:         store,
		AuthConfig:    &cfg.Auth,
		AppConfig:     &cfg.App,
		HealthHandler: healthHandler,
		Timeout:       timeout,
	}
}

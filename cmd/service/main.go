// Package main is the entry point for the service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jsamuelsen/scopestore/internal/adapters/directory"
	"github.com/jsamuelsen/scopestore/internal/adapters/http"
	"github.com/jsamuelsen/scopestore/internal/adapters/http/handlers"
	"github.com/jsamuelsen/scopestore/internal/app"
	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/platform/config"
	"github.com/jsamuelsen/scopestore/internal/platform/logging"
	"github.com/jsamuelsen/scopestore/internal/platform/telemetry"
	"github.com/jsamuelsen/scopestore/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging. The store is built against the base logger;
	// everything else logs through the scope-enriched one.
	baseLogger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		Redact:  cfg.Log.Redact,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})

	// 4. Create the request-scoped context store
	store := scope.New(scope.Config{
		Logger:    baseLogger,
		Providers: identityProviders(cfg.Scope.Tier),
	})
	defer store.Close()

	if err := checkIsolation(cfg.Scope.Tier, store); err != nil {
		return err
	}

	logger := logging.WithScope(baseLogger, store, cfg.Scope.LogKeys...)
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("scope_tier", store.Unit().Tier.String()),
	)

	// 5. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		ScopeTier:    store.Unit().Tier.String(),
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 6. Prometheus registry with store metrics
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		scope.NewCollector(store, cfg.Scope.MetricsNamespace),
	)

	// 7. Create the user directory and register it for readiness
	healthRegistry := ports.NewHealthRegistry()

	userDirectory := directory.New(directory.Config{
		Timeout: cfg.Directory.Timeout,
		Breaker: directory.BreakerConfig{
			MaxFailures:   cfg.Directory.CircuitBreaker.MaxFailures,
			OpenTimeout:   cfg.Directory.CircuitBreaker.Timeout,
			HalfOpenLimit: cfg.Directory.CircuitBreaker.HalfOpenLimit,
		},
		Logger: logger,
	})

	if err := healthRegistry.Register(userDirectory); err != nil {
		return fmt.Errorf("registering user directory health check: %w", err)
	}

	// 8. Create user service (application layer)
	userService := app.NewUserService(app.UserServiceConfig{
		Store:     store,
		Directory: userDirectory,
		Logger:    logger,
	})

	// 9. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo, metrics)

	// 10. Create HTTP server
	server := http.New(&cfg.Server, store, logger)

	// 11. Setup router with all middleware and routes
	routerCfg := http.NewDefaultRouterConfig(logger, store, cfg, healthHandler)
	routerCfg.HomeHandler = handlers.NewHomeHandler(store, userService)
	routerCfg.ContextHandler = handlers.NewContextHandler(store)
	http.SetupRouter(server.Engine(), routerCfg)

	// 12. Start server (non-blocking)
	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	// 13. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// checkIsolation refuses to serve requests from a shared process slot unless
// the config asked for one.
func checkIsolation(tier string, store *scope.Store) error {
	if tier == "process" || store.Isolated() {
		return nil
	}

	return fmt.Errorf("scope tier %q: goroutine identity unavailable on %s; set scope.tier=process to run with a shared slot",
		tier, runtime.Version())
}

// identityProviders maps the configured tier onto the providers consulted
// after fibers. nil lets the store detect them.
func identityProviders(tier string) []scope.IdentityProvider {
	switch tier {
	case "goroutine":
		return []scope.IdentityProvider{scope.GoroutineProvider{}, scope.ProcessProvider{}}
	case "process":
		return []scope.IdentityProvider{scope.ProcessProvider{}}
	default:
		return nil
	}
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	// Listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

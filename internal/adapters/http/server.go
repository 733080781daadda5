// Package http serves the context API over Gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/platform/config"
)

// Server owns the listener and Gin engine for the context API.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	cfg    *config.ServerConfig
	store  *scope.Store
	logger *slog.Logger
	ln     net.Listener
}

// New creates a server for the given store. Routes are registered on Engine
// before Start.
func New(cfg *config.ServerConfig, store *scope.Store, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(limitBody(cfg.MaxRequestSize))

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           engine,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start binds the listener and serves on a background goroutine. A bind
// failure is returned directly. Later serve errors arrive on the channel,
// which is closed once the server stops.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	s.ln = ln

	s.logger.Info("serving context API",
		slog.String("addr", ln.Addr().String()),
		slog.String("scope_tier", s.store.Unit().Tier.String()),
		slog.Int64("max_request_bytes", s.cfg.MaxRequestSize),
	)

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)

		err := s.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serving context API: %w", err)
		}
	}()

	return errCh, nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires. Request slots still registered after the drain are
// reported, since every request scope should have been released by then.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("draining context API")

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	stats := s.store.Stats()
	if stats.ActiveSlots > 0 {
		s.logger.Warn("context slots still registered after drain",
			slog.Int("active_slots", stats.ActiveSlots),
		)
	}

	s.logger.Info("context API stopped",
		slog.Int64("runs", stats.Runs),
		slog.Int64("slots_created", stats.SlotsCreated),
	)

	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}

	return s.srv.Addr
}

// limitBody caps request bodies so a merge cannot grow a slot without bound.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

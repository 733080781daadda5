//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/scopestore/internal/adapters/directory"
	httpadapter "github.com/jsamuelsen/scopestore/internal/adapters/http"
	"github.com/jsamuelsen/scopestore/internal/adapters/http/handlers"
	"github.com/jsamuelsen/scopestore/internal/app"
	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/domain"
	"github.com/jsamuelsen/scopestore/internal/platform/config"
	"github.com/jsamuelsen/scopestore/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testService is the full HTTP stack served over a real listener.
type testService struct {
	server    *httptest.Server
	store     *scope.Store
	directory *directory.Directory
}

type serviceOptions struct {
	source  directory.Source
	timeout time.Duration
}

func newTestService(t *testing.T, opts serviceOptions) *testService {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	store := scope.New(scope.Config{Logger: logger})

	dir := directory.New(directory.Config{
		Timeout: 100 * time.Millisecond,
		Breaker: directory.BreakerConfig{MaxFailures: 1, OpenTimeout: time.Minute, HalfOpenLimit: 1},
		Logger:  logger,
		Source:  opts.source,
	})

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(dir))

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(scope.NewCollector(store, "scopestore"))

	users := app.NewUserService(app.UserServiceConfig{Store: store, Directory: dir, Logger: logger})

	timeout := opts.timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:         logger,
		Store:          store,
		AuthConfig:     &config.AuthConfig{SubjectHeader: "X-User-ID", RolesHeader: "X-User-Roles"},
		AppConfig:      &config.AppConfig{Name: "scopestore", Environment: "test", Version: "test"},
		HealthHandler:  handlers.NewHealthHandler(registry, handlers.BuildInfo{}, metrics),
		HomeHandler:    handlers.NewHomeHandler(store, users),
		ContextHandler: handlers.NewContextHandler(store),
		Timeout:        timeout,
	})

	server := httptest.NewServer(engine)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testService{server: server, store: store, directory: dir}
}

// do sends a request and returns the status and body. Failures are reported
// with t.Errorf so it is safe to call from worker goroutines.
func (s *testService) do(t *testing.T, method, path, body string, headers map[string]string) (int, string) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, s.server.URL+path, reader)
	if err != nil {
		t.Errorf("building request: %v", err)
		return 0, ""
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.server.Client().Do(req)
	if err != nil {
		t.Errorf("%s %s: %v", method, path, err)
		return 0, ""
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Errorf("reading body: %v", err)
	}

	return resp.StatusCode, string(data)
}

// failingSource is unavailable until healed.
type failingSource struct {
	mu     sync.Mutex
	broken bool
	calls  int
}

func (f *failingSource) User(ctx context.Context, id int) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	if f.broken {
		return nil, domain.NewUnavailableError("user-store", "connection refused")
	}

	return directory.Synthetic{}.User(ctx, id)
}

func (f *failingSource) Permissions(ctx context.Context, id int) ([]domain.Permission, error) {
	if _, err := f.User(ctx, id); err != nil {
		return nil, err
	}

	return directory.Synthetic{}.Permissions(ctx, id)
}

func (f *failingSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

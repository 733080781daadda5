// Package directory resolves user ids to users and permissions. Lookups go
// through a circuit breaker and a per-call timeout so a slow or failing
// source degrades into domain.ErrUnavailable instead of stalling requests.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jsamuelsen/scopestore/internal/domain"
	"github.com/jsamuelsen/scopestore/internal/ports"
)

const serviceName = "user-directory"

// Source is the backing store the directory guards.
type Source interface {
	User(ctx context.Context, id int) (*domain.User, error)
	Permissions(ctx context.Context, id int) ([]domain.Permission, error)
}

// Config configures a Directory.
type Config struct {
	// Timeout bounds each source call. Zero means no timeout.
	Timeout time.Duration

	Breaker BreakerConfig
	Logger  *slog.Logger

	// Source defaults to Synthetic.
	Source Source
}

// Directory implements ports.UserDirectory and ports.HealthChecker.
type Directory struct {
	source  Source
	breaker *Breaker
	timeout time.Duration
	logger  *slog.Logger
}

var (
	_ ports.UserDirectory = (*Directory)(nil)
	_ ports.HealthChecker = (*Directory)(nil)
)

// New creates a directory.
func New(cfg Config) *Directory {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", serviceName))

	source := cfg.Source
	if source == nil {
		source = Synthetic{}
	}

	return &Directory{
		source:  source,
		breaker: NewBreaker(cfg.Breaker, logger),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// GetUser returns the user with the given id.
func (d *Directory) GetUser(ctx context.Context, id int) (*domain.User, error) {
	var user *domain.User

	err := d.call(ctx, func(ctx context.Context) error {
		var err error
		user, err = d.source.User(ctx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Permissions returns the permissions granted to the user with the given id.
func (d *Directory) Permissions(ctx context.Context, id int) ([]domain.Permission, error) {
	var perms []domain.Permission

	err := d.call(ctx, func(ctx context.Context) error {
		var err error
		perms, err = d.source.Permissions(ctx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	return perms, nil
}

// Name implements ports.HealthChecker.
func (d *Directory) Name() string {
	return serviceName
}

// Check implements ports.HealthChecker. The directory is unhealthy while its
// circuit is open.
func (d *Directory) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if state := d.breaker.State(); state == BreakerOpen {
		return fmt.Errorf("circuit %s", state)
	}

	return nil
}

// BreakerState returns the current circuit state.
func (d *Directory) BreakerState() BreakerState {
	return d.breaker.State()
}

func (d *Directory) call(ctx context.Context, fn func(context.Context) error) error {
	if !d.breaker.Allow() {
		return domain.NewUnavailableError(serviceName, "circuit open")
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	err := fn(ctx)
	d.breaker.Record(tripsBreaker(err))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		d.logger.WarnContext(ctx, "directory lookup timed out", slog.Duration("timeout", d.timeout))
		return domain.NewUnavailableError(serviceName, "timeout")
	default:
		return err
	}
}

// tripsBreaker reports whether err says the source is unhealthy. Answers
// about the data itself do not count.
func tripsBreaker(err error) bool {
	if err == nil {
		return false
	}

	return !domain.IsNotFound(err) && !domain.IsValidation(err) && !errors.Is(err, context.Canceled)
}

// Synthetic derives users from their id. User 1 is the administrator.
type Synthetic struct{}

// User implements Source.
func (Synthetic) User(ctx context.Context, id int) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id <= 0 {
		return nil, domain.NewNotFoundError("user", strconv.Itoa(id))
	}

	return &domain.User{
		ID:    id,
		Name:  fmt.Sprintf("User_%d", id),
		Email: fmt.Sprintf("user%d@example.com", id),
	}, nil
}

// Permissions implements Source.
func (Synthetic) Permissions(ctx context.Context, id int) ([]domain.Permission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id <= 0 {
		return nil, domain.NewNotFoundError("user", strconv.Itoa(id))
	}

	if id == 1 {
		return []domain.Permission{domain.PermissionAdmin, domain.PermissionUser}, nil
	}

	return []domain.Permission{domain.PermissionUser}, nil
}

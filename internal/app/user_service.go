// Package app contains application services that orchestrate use cases.
// Services read request metadata (the authenticated user id, trace id) from
// the request-scoped store instead of taking it as parameters.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/scopestore/internal/app/scope"
	"github.com/jsamuelsen/scopestore/internal/domain"
	"github.com/jsamuelsen/scopestore/internal/ports"
)

// UserService resolves the caller of the current request.
type UserService struct {
	store     *scope.Store
	directory ports.UserDirectory
	logger    *slog.Logger
}

// UserServiceConfig contains the user service dependencies.
type UserServiceConfig struct {
	Store     *scope.Store
	Directory ports.UserDirectory
	Logger    *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(cfg UserServiceConfig) *UserService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		store:     cfg.Store,
		directory: cfg.Directory,
		logger:    logger.With(slog.String("component", "app.UserService")),
	}
}

// Authenticated reports whether a user id is attached to the current scope.
func (s *UserService) Authenticated() bool {
	return s.store.Has(domain.KeyUserID)
}

// CurrentUser returns the user attached to the current scope.
// The directory is consulted once per scope; later calls reuse the result.
func (s *UserService) CurrentUser(ctx context.Context) (*domain.User, error) {
	id, err := s.userID()
	if err != nil {
		return nil, err
	}

	v, err := s.store.GetOrFetch(ctx, domain.KeyCurrentUser, func(ctx context.Context) (any, error) {
		s.logger.DebugContext(ctx, "loading current user from directory", slog.Int("id", id))
		return s.directory.GetUser(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}

	return v.(*domain.User), nil
}

// Permissions returns the permissions of the current user.
func (s *UserService) Permissions(ctx context.Context) ([]domain.Permission, error) {
	id, err := s.userID()
	if err != nil {
		return nil, err
	}

	perms, err := s.directory.Permissions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading permissions: %w", err)
	}

	return perms, nil
}

// Profile loads the current user and its permissions concurrently. Both
// lookups run on worker goroutines that inherit the request scope.
func (s *UserService) Profile(ctx context.Context) (*domain.Profile, error) {
	if !s.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	user, perms, err := Parallel2(ctx, s.store, s.CurrentUser, s.Permissions)
	if err != nil {
		return nil, err
	}

	// Workers wrote into their own copies; cache in the request's slot.
	s.store.Set(domain.KeyCurrentUser, user)

	s.logger.InfoContext(ctx, "profile loaded", slog.Int("permissions", len(perms)))

	return &domain.Profile{User: *user, Permissions: perms}, nil
}

func (s *UserService) userID() (int, error) {
	id, ok := scope.Value[int](s.store, domain.KeyUserID)
	if !ok {
		return 0, domain.ErrUnauthenticated
	}

	return id, nil
}

// Package ports defines the contracts the application layer depends on.
// Adapters implement them; services only see these interfaces and domain types.
package ports

import (
	"context"

	"github.com/jsamuelsen/scopestore/internal/domain"
)

// UserDirectory resolves users by id.
type UserDirectory interface {
	// GetUser returns the user with the given id.
	// Returns domain.ErrNotFound if no such user exists and
	// domain.ErrUnavailable if the directory cannot be reached.
	GetUser(ctx context.Context, id int) (*domain.User, error)

	// Permissions returns the permissions granted to the user.
	Permissions(ctx context.Context, id int) ([]domain.Permission, error)
}

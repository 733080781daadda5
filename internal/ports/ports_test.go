package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(context.Context) error { return s.err }

type ctxChecker struct{ name string }

func (c *ctxChecker) Name() string { return c.name }

func (c *ctxChecker) Check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
		return nil
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(&stubChecker{name: "directory"}))

	err := registry.Register(&stubChecker{name: "directory"})
	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "directory")
}

func TestCheckAll_NoCheckers(t *testing.T) {
	result := NewHealthRegistry().CheckAll(context.Background())

	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Empty(t, result.Checks)
	assert.False(t, result.Timestamp.IsZero())
}

func TestCheckAll_MixedResults(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(&stubChecker{name: "directory"}))
	require.NoError(t, registry.Register(&stubChecker{name: "scope", err: errors.New("too many slots")}))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	require.Len(t, result.Checks, 2)
	assert.Equal(t, HealthStatusHealthy, result.Checks["directory"].Status)
	assert.Equal(t, HealthStatusUnhealthy, result.Checks["scope"].Status)
	assert.Equal(t, "too many slots", result.Checks["scope"].Message)
}

func TestCheckAll_ContextCancelled(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(&ctxChecker{name: "slow"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["slow"].Message, "deadline exceeded")
}

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallel2_InheritsScope(t *testing.T) {
	store := newStore(t)

	err := store.Run(func() error {
		store.Set("request_id", "req-1")

		seen, written, err := Parallel2(context.Background(), store,
			func(context.Context) (string, error) {
				return store.Get("request_id").(string), nil
			},
			func(context.Context) (string, error) {
				store.Set("request_id", "overwritten")
				return store.Get("request_id").(string), nil
			},
		)
		require.NoError(t, err)
		assert.Equal(t, "req-1", seen)
		assert.Equal(t, "overwritten", written)

		// worker writes stay in the worker
		assert.Equal(t, "req-1", store.Get("request_id"))

		return nil
	})
	require.NoError(t, err)
}

func TestParallel2_NilBinder(t *testing.T) {
	a, b, err := Parallel2(context.Background(), nil,
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (string, error) { return "two", nil },
	)

	require.NoError(t, err)
	assert.Equal(t, 1, a)
	assert.Equal(t, "two", b)
}

func TestParallel2_ReleasesWorkerSlots(t *testing.T) {
	store := newStore(t)

	_, _, err := Parallel2(context.Background(), store,
		func(context.Context) (int, error) {
			store.Set("a", 1)
			return 1, nil
		},
		func(context.Context) (int, error) {
			store.Set("b", 2)
			return 2, nil
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 0, store.Stats().ActiveSlots)
}

func TestParallel2(t *testing.T) {
	store := newStore(t)
	store.Set("tenant", "acme")

	name, count, err := Parallel2(context.Background(), store,
		func(context.Context) (string, error) { return store.Get("tenant").(string), nil },
		func(context.Context) (int, error) { return store.Count(), nil },
	)

	require.NoError(t, err)
	assert.Equal(t, "acme", name)
	assert.Equal(t, 1, count)
}

func TestParallel2_Error(t *testing.T) {
	boom := errors.New("boom")

	name, count, err := Parallel2(context.Background(), newStore(t),
		func(context.Context) (string, error) { return "x", nil },
		func(context.Context) (int, error) { return 0, boom },
	)

	require.ErrorIs(t, err, boom)
	assert.Empty(t, name)
	assert.Zero(t, count)
}

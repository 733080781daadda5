package scope

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store := New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	t.Cleanup(store.Close)

	return store
}

func TestGet_MissIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	for range 3 {
		assert.Nil(t, store.Get("nonexistent"))
		assert.Equal(t, "default", store.GetOr("nonexistent", "default"))
	}

	assert.Equal(t, 0, store.Count())
	assert.Equal(t, 0, store.Stats().ActiveSlots)
}

func TestSetAndGet(t *testing.T) {
	store := newTestStore(t)

	type user struct{ Name string }
	u := &user{Name: "alice"}

	store.Set("key1", "value1")
	store.Set("key2", 123)
	store.Set("key3", []string{"a", "b", "c"})
	store.Set("object", u)

	assert.Equal(t, "value1", store.Get("key1"))
	assert.Equal(t, 123, store.Get("key2"))
	assert.Equal(t, []string{"a", "b", "c"}, store.Get("key3"))
	assert.Same(t, u, store.Get("object"))
}

func TestSet_Overwrite(t *testing.T) {
	store := newTestStore(t)

	store.Set("a", 1)
	store.Set("b", 2)
	store.Set("a", 3)

	assert.Equal(t, 3, store.Get("a"))
	assert.Equal(t, []string{"a", "b"}, store.Keys())
}

func TestHas_NilValueIsPresent(t *testing.T) {
	store := newTestStore(t)

	store.Set("nil", nil)
	store.Set("zero", 0)
	store.Set("empty", "")

	assert.True(t, store.Has("nil"))
	assert.True(t, store.Has("zero"))
	assert.True(t, store.Has("empty"))
	assert.False(t, store.Has("nonexistent"))

	assert.Nil(t, store.GetOr("nil", "default"))
}

func TestDelete_RemovesExactlyOneKey(t *testing.T) {
	store := newTestStore(t)

	store.Set("a", 1)
	store.Set("b", 2)
	store.Delete("a")

	assert.False(t, store.Has("a"))
	assert.True(t, store.Has("b"))
	assert.Equal(t, 1, store.Count())
	assert.Nil(t, store.Get("a"))
}

func TestDelete_MissingKeyIsNoop(t *testing.T) {
	store := newTestStore(t)

	store.Delete("nonexistent")
	store.Set("a", 1)
	store.Delete("nonexistent")

	assert.Equal(t, 1, store.Count())
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	store.Set("key1", "value1")
	store.Set("key2", "value2")
	store.Set("key3", "value3")

	store.Clear()

	assert.Equal(t, 0, store.Count())
	assert.Empty(t, store.Copy())
	assert.Empty(t, store.Keys())
	assert.False(t, store.Has("key1"))

	store.Set("key4", "value4")
	assert.Equal(t, []string{"key4"}, store.Keys())
}

func TestKeys_InsertionOrder(t *testing.T) {
	store := newTestStore(t)

	store.Set("zeta", 1)
	store.Set("alpha", 2)
	store.Set("mid", 3)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, store.Keys())
	assert.Equal(t, 3, store.Count())
}

func TestCopy_IsIndependentSnapshot(t *testing.T) {
	store := newTestStore(t)

	store.Set("key1", "value1")
	store.Set("key2", 123)

	snapshot := store.Copy()
	require.Len(t, snapshot, 2)

	store.Set("key1", "changed")
	store.Set("key3", "new")
	store.Delete("key2")

	assert.Equal(t, map[string]any{"key1": "value1", "key2": 123}, snapshot)

	snapshot["key4"] = "from snapshot"
	assert.False(t, store.Has("key4"))
	assert.Equal(t, store.Copy(), store.All())
}

func TestSnapshot_KeepsOrder(t *testing.T) {
	store := newTestStore(t)

	store.Set("b", 1)
	store.Set("a", 2)

	snap := store.Snapshot()
	store.Set("c", 3)

	assert.Equal(t, []string{"b", "a"}, snap.Keys())
	assert.Equal(t, 2, snap.Len())
}

func TestMerge_OverwriteSemantics(t *testing.T) {
	store := newTestStore(t)

	store.Set("a", 1)
	store.Set("b", 2)

	store.Merge(map[string]any{"b": 3, "c": 4}, true)
	assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, store.Copy())

	store.Merge(map[string]any{"b": 5, "d": 6}, false)
	assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4, "d": 6}, store.Copy())

	assert.Equal(t, []string{"a", "b", "c", "d"}, store.Keys())
}

func TestMerge_EmptyDataDoesNotAllocate(t *testing.T) {
	store := newTestStore(t)

	store.Merge(nil, true)
	store.Merge(map[string]any{}, false)

	assert.Equal(t, 0, store.Stats().ActiveSlots)
}

func TestValue_Typed(t *testing.T) {
	store := newTestStore(t)

	store.Set("user_id", 42)

	id, ok := Value[int](store, "user_id")
	assert.True(t, ok)
	assert.Equal(t, 42, id)

	_, ok = Value[string](store, "user_id")
	assert.False(t, ok)

	_, ok = Value[int](store, "nonexistent")
	assert.False(t, ok)
}

func TestStore_GoroutinesAreIsolated(t *testing.T) {
	store := newTestStore(t)
	store.Set("owner", "test")

	const workers = 32

	var wg sync.WaitGroup
	for i := range workers {
		wg.Go(func() {
			assert.False(t, store.Has("owner"))

			store.Set("worker", i)
			for range 100 {
				assert.Equal(t, i, store.Get("worker"))
			}
			store.Clear()
		})
	}

	wg.Wait()

	assert.Equal(t, map[string]any{"owner": "test"}, store.Copy())
}

func TestStore_UnitTier(t *testing.T) {
	store := newTestStore(t)

	u := store.Unit()
	assert.Equal(t, TierGoroutine, u.Tier)
	assert.Positive(t, u.ID)
}

func TestNew_DefaultConfigUsesGoroutineTier(t *testing.T) {
	store := New(Config{})
	t.Cleanup(store.Close)

	assert.Equal(t, TierGoroutine, store.Unit().Tier)
	assert.True(t, store.Isolated())
}

func TestStore_Isolated(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name      string
		providers []IdentityProvider
		want      bool
	}{
		{name: "detected", want: true},
		{name: "forced goroutine", providers: []IdentityProvider{GoroutineProvider{}, ProcessProvider{}}, want: true},
		{name: "process only", providers: []IdentityProvider{ProcessProvider{}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(Config{Logger: logger, Providers: tt.providers})
			t.Cleanup(store.Close)

			assert.Equal(t, tt.want, store.Isolated())
		})
	}
}

func TestStats_CountsSlots(t *testing.T) {
	store := newTestStore(t)

	store.Set("a", 1)
	store.Set("b", 2)

	st := store.Stats()
	assert.Equal(t, 1, st.ActiveSlots)
	assert.Equal(t, int64(1), st.SlotsCreated)

	store.Clear()
	assert.Equal(t, 0, store.Stats().ActiveSlots)
}

func TestClose_DropsAllSlots(t *testing.T) {
	store := newTestStore(t)

	store.Set("a", 1)
	store.Close()

	assert.False(t, store.Has("a"))
	assert.Equal(t, 0, store.Stats().ActiveSlots)
}

package scope

import (
	"log/slog"
	"sync/atomic"
)

// Config holds optional store settings.
type Config struct {
	// Logger receives resolver diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Providers replaces the detected identity tiers that follow the fiber
	// tier. Leave nil to detect them at construction.
	Providers []IdentityProvider
}

// Store is the process-wide registry of context slots, one per execution unit.
// Construct one at startup with New and inject it where it is needed.
type Store struct {
	resolver *resolver
	slots    *registry
	fibers   *fiberTable
	logger   *slog.Logger
	isolated bool

	created   atomic.Int64
	runs      atomic.Int64
	runErrors atomic.Int64
	spawned   atomic.Int64
	fiberSeq  atomic.Int64
}

// Stats is a point-in-time view of store activity.
type Stats struct {
	ActiveSlots   int   `json:"activeSlots"`
	SlotsCreated  int64 `json:"slotsCreated"`
	Runs          int64 `json:"runs"`
	RunErrors     int64 `json:"runErrors"`
	Fallbacks     int64 `json:"fallbacks"`
	FibersSpawned int64 `json:"fibersSpawned"`
}

// New creates a store. Concurrency-model detection happens here, once:
// fibers first, then goroutines when the runtime exposes their ids, then the
// process-wide slot.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fibers := newFiberTable()

	tail := cfg.Providers
	if tail == nil {
		tail = detectProviders(logger)
	}

	providers := make([]IdentityProvider, 0, len(tail)+1)
	providers = append(providers, fibers)
	providers = append(providers, tail...)

	return &Store{
		resolver: newResolver(logger, providers),
		slots:    newRegistry(),
		fibers:   fibers,
		logger:   logger,
		isolated: hasGoroutineTier(tail),
	}
}

func detectProviders(logger *slog.Logger) []IdentityProvider {
	if goroutineSupported() {
		return []IdentityProvider{GoroutineProvider{}, ProcessProvider{}}
	}

	// Every goroutine now shares one slot; concurrent requests will see
	// each other's values.
	logger.Error("goroutine identity unavailable, all goroutines share the process-wide context slot")

	return []IdentityProvider{ProcessProvider{}}
}

func hasGoroutineTier(providers []IdentityProvider) bool {
	for _, p := range providers {
		if _, ok := p.(GoroutineProvider); ok {
			return goroutineSupported()
		}
	}

	return false
}

// Isolated reports whether plain goroutines get their own slots. When it is
// false every goroutine outside a fiber resolves to the process-wide slot.
func (s *Store) Isolated() bool {
	return s.isolated
}

// Unit returns the execution unit the caller currently resolves to.
func (s *Store) Unit() Unit {
	return s.resolver.resolve()
}

// current returns the caller's slot without allocating; nil means empty.
func (s *Store) current() *Slot {
	return s.slots.load(s.resolver.resolve())
}

// ensure returns the caller's slot, creating it on first write.
func (s *Store) ensure() *Slot {
	slot, created := s.slots.loadOrCreate(s.resolver.resolve())
	if created {
		s.created.Add(1)
	}

	return slot
}

// Set stores value under key in the caller's slot.
func (s *Store) Set(key string, value any) {
	s.ensure().Set(key, value)
}

// Get returns the value stored under key, or nil when absent.
func (s *Store) Get(key string) any {
	v, _ := s.Lookup(key)
	return v
}

// GetOr returns the value stored under key, or def when absent.
// A key that holds nil is present and yields nil.
func (s *Store) GetOr(key string, def any) any {
	if v, ok := s.Lookup(key); ok {
		return v
	}

	return def
}

// Lookup returns the value stored under key and whether the key exists.
func (s *Store) Lookup(key string) (any, bool) {
	slot := s.current()
	if slot == nil {
		return nil, false
	}

	return slot.Lookup(key)
}

// Has reports whether key exists in the caller's slot.
func (s *Store) Has(key string) bool {
	slot := s.current()
	return slot != nil && slot.Has(key)
}

// Delete removes key from the caller's slot.
func (s *Store) Delete(key string) {
	if slot := s.current(); slot != nil {
		slot.Delete(key)
	}
}

// Clear empties the caller's slot. Other units are unaffected.
func (s *Store) Clear() {
	s.slots.swap(s.resolver.resolve(), nil)
}

// Keys returns the caller's keys in insertion order.
func (s *Store) Keys() []string {
	return s.current().Keys()
}

// Count returns the number of entries in the caller's slot.
func (s *Store) Count() int {
	return s.current().Len()
}

// Copy returns an independent snapshot of the caller's slot.
func (s *Store) Copy() map[string]any {
	return s.current().Map()
}

// All is an alias of Copy.
func (s *Store) All() map[string]any {
	return s.Copy()
}

// Snapshot returns an independent, insertion-ordered copy of the caller's slot.
func (s *Store) Snapshot() *Slot {
	return s.current().Clone()
}

// Merge combines data into the caller's slot as a flat union.
// With overwrite, keys in data win; otherwise existing keys are kept.
func (s *Store) Merge(data map[string]any, overwrite bool) {
	if len(data) == 0 {
		return
	}

	s.ensure().Merge(data, overwrite)
}

// Value returns the value under key asserted to T.
// It reports false when the key is absent or holds another type.
func Value[T any](s *Store, key string) (T, bool) {
	v, ok := s.Lookup(key)
	if !ok {
		var zero T
		return zero, false
	}

	t, ok := v.(T)

	return t, ok
}

// Stats returns current counters.
func (s *Store) Stats() Stats {
	return Stats{
		ActiveSlots:   s.slots.len(),
		SlotsCreated:  s.created.Load(),
		Runs:          s.runs.Load(),
		RunErrors:     s.runErrors.Load(),
		Fallbacks:     s.resolver.fallbacks.Load(),
		FibersSpawned: s.spawned.Load(),
	}
}

// Close drops every slot. The store stays usable; units start empty again.
func (s *Store) Close() {
	s.slots.reset()
}

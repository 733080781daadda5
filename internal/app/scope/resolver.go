package scope

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// resolver maps "whoever is asking now" to a Unit by trying each provider
// in priority order. A provider that panics is skipped.
type resolver struct {
	providers []IdentityProvider
	warned    []atomic.Bool
	fallbacks atomic.Int64
	logger    *slog.Logger
}

func newResolver(logger *slog.Logger, providers []IdentityProvider) *resolver {
	return &resolver{
		providers: providers,
		warned:    make([]atomic.Bool, len(providers)),
		logger:    logger,
	}
}

// resolve never fails; the process unit is the last resort.
func (r *resolver) resolve() Unit {
	for i, p := range r.providers {
		if u, ok := r.try(i, p); ok {
			return u
		}
	}

	return Unit{Tier: TierProcess}
}

func (r *resolver) try(i int, p IdentityProvider) (u Unit, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.fallbacks.Add(1)

			if r.warned[i].CompareAndSwap(false, true) {
				r.logger.Warn("identity provider failed, falling back to next tier",
					slog.Int("provider", i),
					slog.Any("error", rec),
				)
			}

			u, ok = Unit{}, false
		}
	}()

	return p.Identify()
}

// fiberTable is the fiber tier: it maps the goroutine backing each running
// fiber to the fiber's unit.
type fiberTable struct {
	active atomic.Int64
	mu     sync.RWMutex
	byGID  map[int64]Unit
}

func newFiberTable() *fiberTable {
	return &fiberTable{byGID: make(map[int64]Unit)}
}

// Identify implements IdentityProvider.
func (t *fiberTable) Identify() (Unit, bool) {
	if t.active.Load() == 0 {
		return Unit{}, false
	}

	gid := currentGoroutine()
	if gid == 0 {
		return Unit{}, false
	}

	t.mu.RLock()
	u, ok := t.byGID[gid]
	t.mu.RUnlock()

	return u, ok
}

func (t *fiberTable) enter(gid int64, u Unit) {
	t.mu.Lock()
	t.byGID[gid] = u
	t.mu.Unlock()
	t.active.Add(1)
}

func (t *fiberTable) leave(gid int64) {
	t.mu.Lock()
	delete(t.byGID, gid)
	t.mu.Unlock()
	t.active.Add(-1)
}

package scope

import (
	"fmt"

	"github.com/petermattis/goid"
)

// Tier identifies which concurrency model an execution unit belongs to.
type Tier uint8

const (
	// TierProcess is the process-wide fallback unit.
	TierProcess Tier = iota
	// TierGoroutine is a goroutine identified by its runtime id.
	TierGoroutine
	// TierFiber is a cooperative fiber running on a Scheduler.
	TierFiber
)

// String returns the tier name used in logs and metrics.
func (t Tier) String() string {
	switch t {
	case TierProcess:
		return "process"
	case TierGoroutine:
		return "goroutine"
	case TierFiber:
		return "fiber"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// Unit is an opaque, stable identity for the execution unit that owns a slot.
type Unit struct {
	Tier Tier
	ID   int64
}

// String formats the unit as "tier:id".
func (u Unit) String() string {
	return fmt.Sprintf("%s:%d", u.Tier, u.ID)
}

// IdentityProvider reports the identity of the currently running unit.
// It returns false when the caller is not running inside a unit the provider
// knows about, letting the resolver move on to the next tier.
type IdentityProvider interface {
	Identify() (Unit, bool)
}

// GoroutineProvider identifies the calling goroutine.
type GoroutineProvider struct{}

// Identify returns the runtime id of the calling goroutine.
func (GoroutineProvider) Identify() (Unit, bool) {
	id := goid.Get()
	if id <= 0 {
		return Unit{}, false
	}

	return Unit{Tier: TierGoroutine, ID: id}, true
}

// ProcessProvider always resolves to the single process-wide unit.
type ProcessProvider struct{}

// Identify returns the process unit.
func (ProcessProvider) Identify() (Unit, bool) {
	return Unit{Tier: TierProcess}, true
}

// goroutineSupported reports whether the runtime exposes goroutine ids.
func goroutineSupported() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	_, ok = GoroutineProvider{}.Identify()

	return ok
}

// currentGoroutine returns the calling goroutine id, or 0 when the runtime
// does not expose one.
func currentGoroutine() (id int64) {
	defer func() {
		if recover() != nil {
			id = 0
		}
	}()

	return goid.Get()
}

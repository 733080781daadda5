package directory

import (
	"log/slog"
	"sync"
	"time"
)

// BreakerState is the position of the directory circuit breaker.
type BreakerState int

const (
	// BreakerClosed lets every lookup through.
	BreakerClosed BreakerState = iota

	// BreakerOpen rejects lookups until the open timeout elapses.
	BreakerOpen

	// BreakerHalfOpen lets a bounded number of probe lookups through.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures the directory circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int

	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration

	// HalfOpenLimit is both the number of concurrent probes allowed and the
	// number of probe successes needed to close the circuit.
	HalfOpenLimit int
}

// Breaker guards the directory source.
//
//	closed    -> open       after MaxFailures consecutive failures
//	open      -> half-open  once OpenTimeout has passed
//	half-open -> closed     after HalfOpenLimit successes
//	half-open -> open       on any failure
type Breaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	state    BreakerState
	failures int
	passed   int
	inflight int
	openedAt time.Time

	logger *slog.Logger
	now    func() time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Breaker{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Allow reports whether a lookup may proceed. A true result must be
// followed by exactly one call to Record.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return false
		}

		b.moveTo(BreakerHalfOpen)
		b.inflight = 1

		return true
	case BreakerHalfOpen:
		if b.inflight >= b.cfg.HalfOpenLimit {
			return false
		}

		b.inflight++

		return true
	default:
		return false
	}
}

// Record reports the outcome of an allowed lookup.
func (b *Breaker) Record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.inflight--
	}

	if failed {
		b.fail()
		return
	}

	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.passed++
		if b.passed >= b.cfg.HalfOpenLimit {
			b.moveTo(BreakerClosed)
		}
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

func (b *Breaker) fail() {
	switch b.state {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.moveTo(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.moveTo(BreakerOpen)
	}
}

// moveTo must be called with mu held.
func (b *Breaker) moveTo(next BreakerState) {
	if b.state == next {
		return
	}

	prev := b.state
	b.state = next
	b.failures = 0
	b.passed = 0

	if next == BreakerOpen {
		b.openedAt = b.now()
		b.inflight = 0
	}

	b.logger.Warn("directory circuit changed state",
		slog.String("from", prev.String()),
		slog.String("to", next.String()),
	)
}

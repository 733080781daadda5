package scope

import (
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Scheduler runs fibers cooperatively: exactly one fiber executes at a time
// and control changes hands only when the running fiber calls Yield or
// returns. Each fiber owns its own context slot even though the fibers
// interleave, so a fiber suspended in the middle of Store.Run never exposes
// its temporary slot to the others.
type Scheduler struct {
	store *Store

	mu      sync.Mutex
	queue   []*Fiber
	looping bool
	closed  bool

	running atomic.Pointer[Fiber]
	handoff chan fiberEvent
}

// Fiber is a cooperatively scheduled unit of execution.
type Fiber struct {
	unit    Unit
	sched   *Scheduler
	fn      func()
	resume  chan struct{}
	started bool
	gid     atomic.Int64
}

type fiberEvent struct {
	fiber *Fiber
	done  bool
	err   error
}

// NewScheduler creates a scheduler whose fibers resolve to their own slots
// in this store.
func (s *Store) NewScheduler() *Scheduler {
	return &Scheduler{
		store:   s,
		handoff: make(chan fiberEvent),
	}
}

// ID returns the fiber's identifier, unique within its store.
func (f *Fiber) ID() int64 {
	return f.unit.ID
}

// Unit returns the execution unit that owns the fiber's slot.
func (f *Fiber) Unit() Unit {
	return f.unit
}

// Spawn queues fn as a new fiber. The fiber starts with an empty slot; wrap fn
// with Store.Bind to start from a copy of the spawner's slot instead.
func (sc *Scheduler) Spawn(fn func()) (*Fiber, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.closed {
		return nil, ErrSchedulerClosed
	}

	f := &Fiber{
		unit:   Unit{Tier: TierFiber, ID: sc.store.fiberSeq.Add(1)},
		sched:  sc,
		fn:     fn,
		resume: make(chan struct{}, 1),
	}
	sc.queue = append(sc.queue, f)
	sc.store.spawned.Add(1)

	return f, nil
}

// Run drives queued fibers until none are left, including fibers spawned
// while running. Panics inside fibers are collected and returned joined.
func (sc *Scheduler) Run() error {
	sc.mu.Lock()
	if sc.looping {
		sc.mu.Unlock()
		return ErrSchedulerRunning
	}
	sc.looping = true
	sc.mu.Unlock()

	defer func() {
		sc.mu.Lock()
		sc.looping = false
		sc.mu.Unlock()
	}()

	var errs []error

	for f := sc.next(); f != nil; f = sc.next() {
		sc.running.Store(f)

		if f.started {
			f.resume <- struct{}{}
		} else {
			f.started = true
			go f.main()
		}

		ev := <-sc.handoff
		sc.running.Store(nil)

		if ev.err != nil {
			errs = append(errs, ev.err)
		}
	}

	return errors.Join(errs...)
}

// Yield suspends the calling fiber and lets the next queued fiber run.
// The caller resumes once the scheduler picks it again.
func (sc *Scheduler) Yield() error {
	f := sc.running.Load()
	if f == nil || f.gid.Load() != currentGoroutine() {
		return ErrNotInFiber
	}

	sc.mu.Lock()
	sc.queue = append(sc.queue, f)
	sc.mu.Unlock()

	sc.handoff <- fiberEvent{fiber: f}
	<-f.resume

	return nil
}

// Current returns the fiber the caller is running in, if it belongs to this
// scheduler.
func (sc *Scheduler) Current() (*Fiber, bool) {
	f := sc.running.Load()
	if f == nil || f.gid.Load() != currentGoroutine() {
		return nil, false
	}

	return f, true
}

// Close rejects further spawns. Fibers already queued still run.
func (sc *Scheduler) Close() {
	sc.mu.Lock()
	sc.closed = true
	sc.mu.Unlock()
}

func (sc *Scheduler) next() *Fiber {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if len(sc.queue) == 0 {
		return nil
	}

	f := sc.queue[0]
	sc.queue[0] = nil
	sc.queue = sc.queue[1:]

	return f
}

func (f *Fiber) main() {
	gid := currentGoroutine()
	f.gid.Store(gid)

	store := f.sched.store
	store.fibers.enter(gid, f.unit)

	var err error

	defer func() {
		if rec := recover(); rec != nil {
			err = &FiberPanicError{Fiber: f.unit.ID, Value: rec, Stack: debug.Stack()}
		}

		store.slots.swap(f.unit, nil)
		store.fibers.leave(gid)
		f.sched.handoff <- fiberEvent{fiber: f, done: true, err: err}
	}()

	f.fn()
}

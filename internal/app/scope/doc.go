// Package scope provides a process-wide, scope-isolated key-value store for
// request metadata (trace IDs, user IDs, request objects) that flows through a
// call chain without being passed as a parameter.
//
// # Execution Units
//
// Every operation acts on the slot of the calling execution unit. The unit is
// resolved by trying identity tiers in priority order:
//
//  1. Fiber: the caller is a fiber running on a Scheduler.
//  2. Goroutine: the calling goroutine, when the runtime exposes its id.
//  3. Process: one shared slot, for single-threaded use only.
//
// A tier that fails is skipped; resolution itself never fails.
//
// # Basic Usage
//
//	store := scope.New(scope.Config{Logger: logger})
//
//	store.Set("trace_id", traceID)
//	id := store.GetOr("trace_id", "unknown")
//
// # Scoped Execution
//
// Run swaps in an empty slot, runs the logic and restores the previous slot
// on every exit path, including panics:
//
//	err := store.Run(func() error {
//	    store.Set("user_id", 42)
//	    return handle()
//	})
//	// user_id is gone here; the outer slot is exactly as before.
//
// # Crossing Goroutines
//
// A new goroutine starts with an empty slot. Use Go or Bind to hand it a copy
// of the current one:
//
//	store.Go(func() {
//	    log(store.Get("trace_id")) // inherited
//	})
//
// Slots are keyed by goroutine id, and the runtime does not say when a
// goroutine exits. A slot written inside Run, Bind or Go is dropped when that
// call returns. A slot written by a bare goroutine outside them stays in the
// registry until the goroutine calls Clear, so long-lived or fire-and-forget
// goroutines should write through Run or be started with Go.
//
// # Cooperative Fibers
//
// A Scheduler runs fibers one at a time; a fiber suspended with Yield inside
// Run keeps its temporary slot to itself:
//
//	sched := store.NewScheduler()
//	sched.Spawn(func() {
//	    _ = store.Run(func() error {
//	        store.Set("job", "a")
//	        return sched.Yield()
//	    })
//	})
//	err := sched.Run()
package scope

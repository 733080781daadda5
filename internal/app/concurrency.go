package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Binder hands the caller's request scope to work that runs on another
// goroutine. *scope.Store implements it.
type Binder interface {
	Bind(fn func()) func()
}

// bound captures b's scope now, on the calling goroutine, and returns a
// function that runs fn inside that scope wherever it is invoked.
// A nil Binder runs fn unscoped.
func bound(b Binder, fn func() error) func() error {
	if b == nil {
		return fn
	}

	var err error
	run := b.Bind(func() { err = fn() })

	return func() error {
		run()
		return err
	}
}

// Parallel2 runs two differently typed functions concurrently and returns on
// the first error. Each function sees a copy of the caller's request scope;
// writes made by one are invisible to the other and to the caller.
func Parallel2[T1, T2 any](
	ctx context.Context,
	b Binder,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (result1 T1, result2 T2, err error) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(bound(b, func() error {
		var fnErr error
		result1, fnErr = fn1(ctx)

		return fnErr
	}))

	g.Go(bound(b, func() error {
		var fnErr error
		result2, fnErr = fn2(ctx)

		return fnErr
	}))

	if err = g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
		)

		return zero1, zero2, fmt.Errorf("parallel execution failed: %w", err)
	}

	return result1, result2, nil
}

package scope

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInFiber is returned by Yield when the caller is not a fiber of
	// that scheduler.
	ErrNotInFiber = errors.New("scope: caller is not a running fiber")

	// ErrSchedulerRunning is returned when Run is called on a scheduler that
	// is already driving its fibers.
	ErrSchedulerRunning = errors.New("scope: scheduler already running")

	// ErrSchedulerClosed is returned when spawning on a closed scheduler.
	ErrSchedulerClosed = errors.New("scope: scheduler closed")
)

// FiberPanicError reports a panic raised inside a fiber.
type FiberPanicError struct {
	Fiber int64
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *FiberPanicError) Error() string {
	return fmt.Sprintf("scope: fiber %d panicked: %v", e.Fiber, e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *FiberPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

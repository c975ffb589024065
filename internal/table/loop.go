package table

import (
	"context"
	"errors"
)

// ErrLoopStopped is returned when work is submitted to a loop that has exited.
var ErrLoopStopped = errors.New("table: loop stopped")

// Loop runs submitted functions one at a time on a single goroutine. Engine
// calls and scheduler callbacks both go through it, which is what makes the
// engine's lack of locking safe.
type Loop struct {
	ops  chan func()
	done chan struct{}
}

// NewLoop creates a loop. Call Run to start processing.
func NewLoop() *Loop {
	return &Loop{
		ops:  make(chan func(), 64),
		done: make(chan struct{}),
	}
}

// Run processes submitted functions until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case op := <-l.ops:
			op()
		}
	}
}

// Post queues fn without waiting for it. It matches scheduler.Executor.
func (l *Loop) Post(fn func()) {
	select {
	case l.ops <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.ops <- op:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// Run may have exited right after finishing op
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

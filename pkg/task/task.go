// Package task runs delayed operations and hands their outcome back as a
// Future.
//
// A Runner models a simulated round-trip: every operation waits for the
// runner's delay before its body executes. Bodies run one at a time and in
// the order they were submitted, even though their delays overlap, so two
// operations issued back to back always observe each other's effects in
// issue order. There is no cancellation. Once submitted, an operation runs
// to completion whether or not anyone awaits it.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lborres/ticketflow/pkg/clock"
)

var ErrPanic = errors.New("task panicked")

// Future is the pending result of a submitted operation.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the operation finishes or ctx ends. A ctx error only
// stops the wait; the operation itself keeps running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Resolved returns an already completed Future.
func Resolved[T any](value T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: value, err: err}
	close(f.done)
	return f
}

type Runner struct {
	clock clock.Clock
	delay time.Duration

	mu   sync.Mutex
	tail chan struct{} // closed when the last submitted body has finished
}

func NewRunner(c clock.Clock, delay time.Duration) *Runner {
	if c == nil {
		c = clock.Real()
	}
	return &Runner{clock: c, delay: delay}
}

// Delay returns the simulated latency applied to each operation.
func (r *Runner) Delay() time.Duration { return r.delay }

// Run submits fn. The delay starts counting immediately; fn runs once the
// delay has passed and every earlier submission has finished.
func Run[T any](r *Runner, fn func() (T, error)) *Future[T] {
	r.mu.Lock()
	prev := r.tail
	turn := make(chan struct{})
	r.tail = turn
	wait := r.clock.After(r.delay)
	r.mu.Unlock()

	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer close(turn)
		defer func() {
			if rec := recover(); rec != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanic, rec)
			}
		}()

		<-wait
		if prev != nil {
			<-prev
		}
		f.value, f.err = fn()
	}()
	return f
}

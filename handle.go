package asyncgen

import (
	"context"
	"errors"
	"sync"
)

// ErrTimerCanceled is the outcome of a [Handle] cancelled before its work ran.
var ErrTimerCanceled = errors.New("asyncgen: timer canceled")

type handleState uint8

const (
	handlePending handleState = iota
	handleRunning
	handleResolved
)

// Handle holds the outcome of work scheduled on a [TimerService].
// Create one via [Schedule].
type Handle[T any] struct {
	work func() (T, error)

	mu    sync.Mutex
	state handleState
	timer Stopper

	val  T
	err  error
	done chan struct{}
}

func newHandle[T any](work func() (T, error)) *Handle[T] {
	return &Handle[T]{
		work: work,
		done: make(chan struct{}),
	}
}

// fire runs the work on the executor goroutine unless the handle has been
// cancelled in the meantime.
func (h *Handle[T]) fire() {
	h.mu.Lock()
	if h.state != handlePending {
		h.mu.Unlock()
		return
	}
	h.state = handleRunning
	h.timer = nil
	work := h.work
	h.mu.Unlock()

	var v T
	err := try(func() error {
		var err error
		v, err = work()
		return err
	})
	h.resolve(v, err)
}

// fail resolves a pending handle with err without running the work.
func (h *Handle[T]) fail(err error) {
	h.mu.Lock()
	if h.state != handlePending {
		h.mu.Unlock()
		return
	}
	h.state = handleRunning
	h.timer = nil
	h.mu.Unlock()

	var zero T
	h.resolve(zero, err)
}

func (h *Handle[T]) resolve(v T, err error) {
	h.mu.Lock()
	h.val, h.err = v, err
	h.state = handleResolved
	h.work = nil
	h.mu.Unlock()
	close(h.done)
}

// Cancel prevents the work from running and stops the pending timer.
// It reports whether the work is guaranteed not to run: true if this or an
// earlier call cancelled it, false if the work had already started.
// Cancel is idempotent.
func (h *Handle[T]) Cancel() bool {
	h.mu.Lock()
	switch h.state {
	case handleRunning:
		h.mu.Unlock()
		return false
	case handleResolved:
		canceled := errors.Is(h.err, ErrTimerCanceled)
		h.mu.Unlock()
		return canceled
	}
	h.state = handleResolved
	h.err = ErrTimerCanceled
	h.work = nil
	timer := h.timer
	h.timer = nil
	h.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	close(h.done)
	return true
}

// Await blocks until the handle resolves or ctx is done.
// It returns the work's value and error, [ErrTimerCanceled] if the handle
// was cancelled first, or ctx.Err(). Await does not cancel the handle.
func (h *Handle[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.val, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed once the handle has resolved.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

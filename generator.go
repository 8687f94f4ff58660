package asyncgen

import (
	"context"
	"io"
	"iter"
	"runtime"
)

// Generator is a pull-based asynchronous sequence.
//
// A producer body and a single consumer alternate control: the consumer
// calls [Generator.Advance], the producer runs until it publishes a value
// with [Yielder.Yield] or returns, and control comes back to the consumer.
// The body starts lazily on the first Advance, on its own goroutine.
//
// A Generator is single-consumer. Calling Advance concurrently panics.
type Generator[T any] struct {
	s    *state[T]
	body func(context.Context, *Yielder[T]) error

	cur    T
	hasCur bool
	ended  bool
	err    error
}

// Yielder is handed to a producer body to publish values and register
// cancellation hooks. It must only be used from the body's goroutine.
type Yielder[T any] struct {
	s *state[T]
}

// Yield publishes v and suspends the producer until the consumer asks for
// the next value. It returns false once the generator has been cancelled or
// otherwise terminated; the body must then return promptly.
func (y *Yielder[T]) Yield(v T) bool {
	return y.s.producerWait(v)
}

// OnCancel registers f to run once if cancellation reaches the generator,
// replacing any previous hook. Passing nil clears the hook. If the
// generator is already terminal, f runs immediately.
//
// Use it to release resources the body is blocked on, such as a pending
// timer.
func (y *Yielder[T]) OnCancel(f func()) {
	y.s.setOnCancel(f)
}

// New returns a generator driven by body.
//
// body receives a context that is cancelled when the generator is cancelled
// or terminated, and a [Yielder] to publish values. Returning nil ends the
// sequence; returning an error ends it with that error. A panic in body is
// reported as a [*PanicError].
func New[T any](body func(ctx context.Context, y *Yielder[T]) error, opts ...Option) *Generator[T] {
	if body == nil {
		panic("asyncgen: New requires a non-nil body")
	}
	return newGenerator(body, newConfig("generator", opts))
}

func newGenerator[T any](body func(context.Context, *Yielder[T]) error, cfg config) *Generator[T] {
	g := &Generator[T]{
		s:    newState[T](cfg),
		body: body,
	}
	// An abandoned generator still holds a parked producer goroutine and an
	// arena slot. Cancelling the state lets the producer unwind once.
	runtime.AddCleanup(g, func(s *state[T]) { s.cancel(false) }, g.s)
	return g
}

// wrap builds an operator generator that adapts src.
func wrap[T, U any](src *Generator[T], name string, body func(context.Context, *Yielder[U]) error, opts []Option) *Generator[U] {
	g := newGenerator(body, src.s.cfg.derive(name, opts))
	cancellation.link(g.s.id, src.s.id)
	return g
}

// adopt links src as a source of the generator y publishes to, so that
// cancellation reaching one reaches the other.
func adopt[T, U any](y *Yielder[T], src *Generator[U]) {
	cancellation.link(y.s.id, src.s.id)
}

// Advance suspends until the producer publishes a value, fails, or
// completes. It reports whether a value is available via
// [Generator.Current]. After Advance returns false, [Generator.Err] reports
// why, and Advance must not be called again.
//
// If ctx is done before the producer answers, the generator is released
// (cancelled towards its sources) and Advance returns false with Err
// reporting ctx.Err().
func (g *Generator[T]) Advance(ctx context.Context) bool {
	if g.ended {
		panic("asyncgen: Advance called after the generator reported completion")
	}
	var zero T
	g.cur, g.hasCur = zero, false

	if err := ctx.Err(); err != nil {
		g.release()
		return g.end(err)
	}

	s := g.s
	k, start := s.consumerWait()
	if k == nil {
		_, _, err := s.take()
		return g.end(err)
	}
	if start {
		go s.run(ctx, g.body)
	}

	select {
	case <-k.c:
	case <-ctx.Done():
		g.release()
		<-k.c
		return g.end(ctx.Err())
	}

	v, ok, err := s.take()
	if !ok {
		return g.end(err)
	}
	g.cur, g.hasCur = v, true
	return true
}

func (g *Generator[T]) end(err error) bool {
	g.ended = true
	g.err = err
	return false
}

// Current returns the value made available by the last successful
// [Generator.Advance]. It panics if there is none.
func (g *Generator[T]) Current() T {
	if !g.hasCur {
		if g.ended {
			panic("asyncgen: Current called after the generator finished")
		}
		panic("asyncgen: Current called without a successful Advance")
	}
	return g.cur
}

// Err returns the error that ended iteration: the producer's error, or the
// context error that interrupted Advance. It is nil while iterating and
// after a clean end, including cancellation.
func (g *Generator[T]) Err() error {
	return g.err
}

// Next advances the generator and returns the next value.
// It returns io.EOF when the sequence ends cleanly.
func (g *Generator[T]) Next(ctx context.Context) (T, error) {
	if g.Advance(ctx) {
		return g.cur, nil
	}
	var zero T
	if g.err != nil {
		return zero, g.err
	}
	return zero, io.EOF
}

// All returns an iterator over the remaining values. Check [Generator.Err]
// after the loop. Breaking out of the loop cancels the generator.
func (g *Generator[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for g.Advance(ctx) {
			if !yield(g.cur) {
				g.Cancel()
				return
			}
		}
	}
}

// Cancel cancels the generator. Cancellation propagates to every linked
// generator, both towards the sources and towards the consumers adapting
// it, and wakes whatever is parked so it can unwind at its next suspension
// point. Calling Cancel more than once has no further effect.
func (g *Generator[T]) Cancel() {
	g.s.cancel(true)
}

// release cancels g towards its sources only. Operators use it when they
// stop consuming a source.
func (g *Generator[T]) release() {
	g.s.cancel(false)
}

// Done reports whether the generator has reached a terminal state.
func (g *Generator[T]) Done() bool {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return g.s.done
}

// Canceled reports whether the generator was terminated by cancellation.
func (g *Generator[T]) Canceled() bool {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return g.s.canceled
}

// Released returns a channel that is closed once the producer has unwound,
// or once the generator is cancelled before it ever started.
func (g *Generator[T]) Released() <-chan struct{} {
	return g.s.released
}

// Name returns the name reported in events.
func (g *Generator[T]) Name() string {
	return g.s.cfg.name
}

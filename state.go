package asyncgen

import (
	"context"
	"sync"
)

// continuation is a parked computation. It is resumed at most once.
type continuation struct {
	c chan struct{}
}

func newContinuation() *continuation {
	return &continuation{c: make(chan struct{})}
}

func (k *continuation) resume() {
	close(k.c)
}

// state is the record shared by one generator instance, its producer
// goroutine and whoever is parked on it.
//
// Control alternates strictly: at most one of producer and consumer is
// armed at a time. Once done is set nothing is published again and no
// continuation is re-armed; done doubles as the guard that makes every
// terminal transition run at most once.
type state[T any] struct {
	id  nodeID
	cfg config

	mu       sync.Mutex
	value    T
	hasValue bool
	err      error
	done     bool
	canceled bool
	started  bool
	producer *continuation
	consumer *continuation
	onCancel func()
	stop     context.CancelFunc

	released chan struct{}
}

func newState[T any](cfg config) *state[T] {
	s := &state[T]{
		cfg:      cfg,
		released: make(chan struct{}),
	}
	s.id = cancellation.add(s)
	return s
}

func (s *state[T]) emit(kind EventKind, err error) {
	if s.cfg.observer != nil {
		s.cfg.observer(Event{Kind: kind, Generator: s.cfg.name, ID: uint64(s.id), Err: err})
	}
}

// consumerWait arms the consumer continuation and hands control to the
// producer: either by resuming its parked continuation or, on the first
// pull, by asking the caller to start it. It returns nil if the state is
// already terminal.
func (s *state[T]) consumerWait() (k *continuation, start bool) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil, false
	}
	if s.consumer != nil {
		s.mu.Unlock()
		panic("asyncgen: concurrent Advance on a single-consumer generator")
	}
	k = newContinuation()
	s.consumer = k
	p := s.producer
	s.producer = nil
	if !s.started {
		s.started = true
		start = true
	}
	s.mu.Unlock()

	if p != nil {
		s.emit(EventHandoff, nil)
		p.resume()
	}
	return k, start
}

// producerWait publishes v, resumes the parked consumer and parks the
// producer until the consumer asks for more. It reports false when the
// state turned terminal, in which case the producer must unwind.
func (s *state[T]) producerWait(v T) bool {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return false
	}
	if s.producer != nil {
		s.mu.Unlock()
		panic("asyncgen: concurrent Yield on one generator")
	}
	s.value, s.hasValue = v, true
	k := newContinuation()
	s.producer = k
	c := s.consumer
	s.consumer = nil
	s.mu.Unlock()

	s.emit(EventPublish, nil)
	if c != nil {
		c.resume()
	}
	<-k.c

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	return !done
}

// take moves the published value out of the state.
func (s *state[T]) take() (v T, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasValue {
		v = s.value
		var zero T
		s.value, s.hasValue = zero, false
		return v, true, nil
	}
	return v, false, s.err
}

func (s *state[T]) run(parent context.Context, body func(context.Context, *Yielder[T]) error) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))

	s.mu.Lock()
	s.stop = cancel
	done := s.done
	s.mu.Unlock()

	var err error
	if !done {
		s.emit(EventStart, nil)
		err = try(func() error {
			return body(ctx, &Yielder[T]{s: s})
		})
	}
	cancel()
	s.finish(err)
}

// finish is called on the producer goroutine once the body has returned.
func (s *state[T]) finish(err error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		close(s.released)
		return
	}
	s.done = true
	s.err = err
	s.onCancel = nil
	c := s.consumer
	s.consumer = nil
	s.mu.Unlock()

	up, _ := cancellation.detach(s.id)
	for _, u := range up {
		u.cancel(false)
	}

	if err != nil {
		s.emit(EventFail, err)
	} else {
		s.emit(EventComplete, nil)
	}
	if c != nil {
		c.resume()
	}
	close(s.released)
}

func (s *state[T]) cancel(downstream bool) {
	s.halt(nil, true, downstream)
}

// complete ends the generator from outside its producer. The consumer sees
// err, or a clean end if err is nil. Only the sources are released.
func (s *state[T]) complete(err error) {
	s.halt(err, false, false)
}

// halt is the single terminal transition for cancellation and external
// completion. The order is: run onCancel, stop the body context, cascade,
// then wake whatever is parked so it observes the terminal state at its
// suspension point.
func (s *state[T]) halt(err error, canceled, downstream bool) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.canceled = canceled
	s.err = err
	var zero T
	s.value, s.hasValue = zero, false
	onCancel := s.onCancel
	s.onCancel = nil
	stop := s.stop
	p, c := s.producer, s.consumer
	s.producer, s.consumer = nil, nil
	neverStarted := !s.started
	s.started = true
	s.mu.Unlock()

	switch {
	case canceled:
		s.emit(EventCancel, nil)
	case err != nil:
		s.emit(EventFail, err)
	default:
		s.emit(EventComplete, nil)
	}

	if onCancel != nil {
		onCancel()
	}
	if stop != nil {
		stop()
	}

	up, down := cancellation.detach(s.id)
	for _, u := range up {
		u.cancel(false)
	}
	if downstream && down != nil {
		down.cancel(true)
	}

	if p != nil {
		p.resume()
	}
	if c != nil {
		c.resume()
	}
	if neverStarted {
		close(s.released)
	}
}

func (s *state[T]) setOnCancel(f func()) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		if f != nil {
			f()
		}
		return
	}
	s.onCancel = f
	s.mu.Unlock()
}

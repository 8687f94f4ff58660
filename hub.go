package asyncgen

import (
	"context"
	"sync"
)

type hubEvent[T any] struct {
	value T
	err   error
	done  bool
}

type subscriber[T any] struct {
	// wake is set while the subscriber is parked waiting for the next pump.
	wake chan hubEvent[T]
}

// Hub bridges push-style events into pull-based generators. Every call to
// Next, Error or Complete wakes each subscriber that is currently waiting.
//
// A Hub holds only the latest event: a subscriber whose consumer is busy
// when a value is pushed does not see that value. Error and Complete are
// terminal; every call after the first terminal one is a no-op.
//
// A Hub is safe for concurrent use.
type Hub[T any] struct {
	cfg config

	mu    sync.Mutex
	last  hubEvent[T]
	ended bool
	subs  map[*subscriber[T]]struct{}
}

// NewHub creates a Hub.
func NewHub[T any](opts ...Option) *Hub[T] {
	return &Hub[T]{
		cfg:  newConfig("hub", opts),
		subs: make(map[*subscriber[T]]struct{}),
	}
}

// Next publishes v to every waiting subscriber.
func (h *Hub[T]) Next(v T) {
	h.pump(hubEvent[T]{value: v}, false)
}

// Error ends every subscription with err.
func (h *Hub[T]) Error(err error) {
	if err == nil {
		panic("asyncgen: Hub.Error requires a non-nil error")
	}
	h.pump(hubEvent[T]{err: err}, true)
}

// Complete ends every subscription cleanly.
func (h *Hub[T]) Complete() {
	h.pump(hubEvent[T]{done: true}, true)
}

func (h *Hub[T]) pump(ev hubEvent[T], terminal bool) {
	h.mu.Lock()
	if h.ended {
		h.mu.Unlock()
		return
	}
	h.last = ev
	h.ended = terminal
	var wake []chan hubEvent[T]
	for sub := range h.subs {
		if sub.wake != nil {
			wake = append(wake, sub.wake)
			sub.wake = nil
		}
	}
	h.mu.Unlock()

	for _, w := range wake {
		w <- ev
	}
}

// Subscribe returns a generator that yields the values pushed to the hub
// while its consumer is waiting. The subscription is registered on the
// first Advance and removed when the generator ends or is cancelled.
func (h *Hub[T]) Subscribe(opts ...Option) *Generator[T] {
	sub := &subscriber[T]{}
	return newGenerator(func(ctx context.Context, y *Yielder[T]) error {
		if !h.attach(sub) {
			return h.terminalErr()
		}
		y.OnCancel(func() { h.detach(sub) })
		defer h.detach(sub)

		for {
			ev, ok := h.park(ctx, sub)
			if !ok {
				return nil
			}
			if ev.err != nil {
				return ev.err
			}
			if ev.done {
				return nil
			}
			if !y.Yield(ev.value) {
				return nil
			}
		}
	}, h.cfg.derive(h.cfg.name+"-subscription", opts))
}

func (h *Hub[T]) attach(sub *subscriber[T]) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ended {
		return false
	}
	h.subs[sub] = struct{}{}
	return true
}

// detach removes sub. Removing an absent subscriber is a no-op.
func (h *Hub[T]) detach(sub *subscriber[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
	sub.wake = nil
}

func (h *Hub[T]) park(ctx context.Context, sub *subscriber[T]) (hubEvent[T], bool) {
	h.mu.Lock()
	if h.ended {
		ev := h.last
		h.mu.Unlock()
		return ev, true
	}
	if _, ok := h.subs[sub]; !ok {
		h.mu.Unlock()
		return hubEvent[T]{}, false
	}
	w := make(chan hubEvent[T], 1)
	sub.wake = w
	h.mu.Unlock()

	select {
	case ev := <-w:
		return ev, true
	case <-ctx.Done():
		return hubEvent[T]{}, false
	}
}

func (h *Hub[T]) terminalErr() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last.err
}

// Subscribers returns the number of active subscriptions.
func (h *Hub[T]) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Waiting returns the number of subscriptions currently parked waiting for
// the next event.
func (h *Hub[T]) Waiting() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var n int
	for sub := range h.subs {
		if sub.wake != nil {
			n++
		}
	}
	return n
}

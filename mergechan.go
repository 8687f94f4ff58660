package asyncgen

import (
	"context"
	"sync"

	"github.com/eapache/queue"
)

// releaser is a source registered with a merge channel.
type releaser interface {
	release()
}

// mergeChannel is the fan-in point of a merge: any number of pump tasks
// push concurrently, a single consumer pops.
//
// The channel is finished once no source is outstanding and the queue is
// empty. Continuations are never resumed while mu is held.
type mergeChannel[T any] struct {
	mu      sync.Mutex
	queue   *queue.Queue
	pending int
	waiter  *continuation
	err     error
	closed  bool
	sources map[releaser]struct{}
}

func newMergeChannel[T any]() *mergeChannel[T] {
	return &mergeChannel[T]{
		queue:   queue.New(),
		sources: make(map[releaser]struct{}),
	}
}

// add registers src as an outstanding source. It reports false if the
// channel is already closed; the caller must then release src itself.
func (ch *mergeChannel[T]) add(src releaser) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return false
	}
	ch.pending++
	ch.sources[src] = struct{}{}
	return true
}

// push enqueues v and wakes the parked consumer, if any.
func (ch *mergeChannel[T]) push(v T) {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.queue.Add(v)
	w := ch.waiter
	ch.waiter = nil
	ch.mu.Unlock()

	if w != nil {
		w.resume()
	}
}

// done marks src as finished. The first non-nil err is kept and reported
// to the consumer ahead of queued values.
func (ch *mergeChannel[T]) done(src releaser, err error) {
	ch.mu.Lock()
	if _, ok := ch.sources[src]; ok {
		delete(ch.sources, src)
		ch.pending--
	}
	if err != nil && ch.err == nil {
		ch.err = err
	}
	var w *continuation
	if ch.pending == 0 || ch.err != nil {
		w = ch.waiter
		ch.waiter = nil
	}
	ch.mu.Unlock()

	if w != nil {
		w.resume()
	}
}

// pop returns the next value. It returns ok == false once the channel is
// finished, and a non-nil error once a source failed or ctx is done.
func (ch *mergeChannel[T]) pop(ctx context.Context) (v T, ok bool, err error) {
	for {
		ch.mu.Lock()
		if ch.err != nil {
			err = ch.err
			ch.mu.Unlock()
			return v, false, err
		}
		if ch.closed {
			ch.mu.Unlock()
			return v, false, nil
		}
		if ch.queue.Length() > 0 {
			v = ch.queue.Remove().(T)
			ch.mu.Unlock()
			return v, true, nil
		}
		if ch.pending == 0 {
			ch.mu.Unlock()
			return v, false, nil
		}
		if ch.waiter != nil {
			ch.mu.Unlock()
			panic("asyncgen: concurrent pop on a merge channel")
		}
		w := newContinuation()
		ch.waiter = w
		ch.mu.Unlock()

		select {
		case <-w.c:
		case <-ctx.Done():
			ch.mu.Lock()
			if ch.waiter == w {
				ch.waiter = nil
			}
			ch.mu.Unlock()
			return v, false, ctx.Err()
		}
	}
}

// finished reports whether every source is done and the queue is drained.
func (ch *mergeChannel[T]) finished() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.pending == 0 && ch.queue.Length() == 0
}

// close refuses new sources and values, and releases every source that is
// still registered.
func (ch *mergeChannel[T]) close() {
	ch.mu.Lock()
	ch.closed = true
	srcs := make([]releaser, 0, len(ch.sources))
	for src := range ch.sources {
		srcs = append(srcs, src)
	}
	clear(ch.sources)
	w := ch.waiter
	ch.waiter = nil
	ch.mu.Unlock()

	for _, src := range srcs {
		src.release()
	}
	if w != nil {
		w.resume()
	}
}

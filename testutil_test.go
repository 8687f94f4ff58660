package asyncgen

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

func waitReleased[T any](t *testing.T, g *Generator[T]) {
	t.Helper()
	select {
	case <-g.Released():
	case <-time.After(waitTimeout):
		t.Fatalf("generator %q was not released", g.Name())
	}
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func mustPanicContains(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		assert.Contains(t, fmt.Sprint(r), substr)
	}()
	fn()
}

// recorder collects observer events from any goroutine.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) kinds(name string) []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventKind
	for _, e := range r.events {
		if e.Generator == name {
			out = append(out, e.Kind)
		}
	}
	return out
}

func (r *recorder) count(name string, kind EventKind) int {
	var n int
	for _, k := range r.kinds(name) {
		if k == kind {
			n++
		}
	}
	return n
}

// blocker is a producer body that yields the given values and then parks
// until its context is cancelled. It counts OnCancel invocations.
type blocker struct {
	mu        sync.Mutex
	cancels   int
	started   chan struct{}
	startOnce sync.Once
}

func newBlocker() *blocker {
	return &blocker{started: make(chan struct{})}
}

func (b *blocker) onCancel() {
	b.mu.Lock()
	b.cancels++
	b.mu.Unlock()
}

func (b *blocker) cancelCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancels
}

// gen returns a generator that yields values and then parks until it is
// cancelled.
func (b *blocker) gen(values ...int) *Generator[int] {
	return New(func(ctx context.Context, y *Yielder[int]) error {
		y.OnCancel(b.onCancel)
		b.startOnce.Do(func() { close(b.started) })
		for _, v := range values {
			if !y.Yield(v) {
				return nil
			}
		}
		<-ctx.Done()
		return nil
	}, WithName("blocker"))
}

package asyncgen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorYieldsInOrder(t *testing.T) {
	got, err := FromSlice([]int{1, 2, 3}).ToSlice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestGeneratorStartsLazily(t *testing.T) {
	var started atomic.Bool
	g := New(func(ctx context.Context, y *Yielder[int]) error {
		started.Store(true)
		y.Yield(1)
		return nil
	})

	time.Sleep(10 * time.Millisecond)
	assert.False(t, started.Load(), "body must not run before the first Advance")

	require.True(t, g.Advance(context.Background()))
	assert.True(t, started.Load())
	assert.Equal(t, 1, g.Current())
	g.Cancel()
}

func TestGeneratorProducerError(t *testing.T) {
	boom := errors.New("boom")
	g := New(func(ctx context.Context, y *Yielder[int]) error {
		y.Yield(1)
		return boom
	})

	got, err := g.ToSlice(context.Background())
	assert.Equal(t, []int{1}, got)
	assert.ErrorIs(t, err, boom)
	assert.True(t, g.Done())
	assert.False(t, g.Canceled())
}

func TestGeneratorPanicBecomesError(t *testing.T) {
	g := New(func(ctx context.Context, y *Yielder[int]) error {
		panic("kaboom")
	})

	assert.False(t, g.Advance(context.Background()))
	var pe *PanicError
	require.ErrorAs(t, g.Err(), &pe)
	assert.Equal(t, "kaboom", pe.Value)
	assert.Contains(t, pe.Stack, "goroutine")
}

func TestGeneratorNextReturnsEOF(t *testing.T) {
	ctx := context.Background()
	g := FromSlice([]string{"a"})

	v, err := g.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	_, err = g.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGeneratorAdvanceAfterCompletionPanics(t *testing.T) {
	g := Empty[int]()
	assert.False(t, g.Advance(context.Background()))
	mustPanicContains(t, "after the generator reported completion", func() {
		g.Advance(context.Background())
	})
}

func TestGeneratorCurrentMisuse(t *testing.T) {
	g := FromSlice([]int{1})
	mustPanicContains(t, "without a successful Advance", func() {
		g.Current()
	})

	require.True(t, g.Advance(context.Background()))
	require.False(t, g.Advance(context.Background()))
	mustPanicContains(t, "after the generator finished", func() {
		g.Current()
	})
}

func TestGeneratorConcurrentAdvancePanics(t *testing.T) {
	b := newBlocker()
	g := b.gen()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := make(chan bool, 1)
	go func() { first <- g.Advance(ctx) }()
	waitClosed(t, b.started, "producer start")

	mustPanicContains(t, "concurrent Advance", func() {
		g.Advance(context.Background())
	})

	cancel()
	select {
	case ok := <-first:
		assert.False(t, ok)
	case <-time.After(waitTimeout):
		t.Fatal("first Advance did not return after cancel")
	}
	waitReleased(t, g)
}

func TestGeneratorCancelBeforeStart(t *testing.T) {
	var ran atomic.Bool
	g := New(func(ctx context.Context, y *Yielder[int]) error {
		ran.Store(true)
		return nil
	})

	g.Cancel()
	waitReleased(t, g)

	assert.False(t, g.Advance(context.Background()))
	assert.NoError(t, g.Err(), "cancellation is not an error")
	assert.True(t, g.Canceled())
	assert.False(t, ran.Load(), "cancelled generator must never start")
}

func TestGeneratorCancelWhileParked(t *testing.T) {
	b := newBlocker()
	g := b.gen(1, 2)

	require.True(t, g.Advance(context.Background()))
	assert.Equal(t, 1, g.Current())

	g.Cancel()
	g.Cancel()
	waitReleased(t, g)

	assert.Equal(t, 1, b.cancelCount(), "OnCancel must run exactly once")
	assert.False(t, g.Advance(context.Background()), "the unread value is dropped")
	assert.NoError(t, g.Err())
	assert.True(t, g.Done())
	assert.True(t, g.Canceled())
}

func TestGeneratorOnCancelAfterTerminalRunsImmediately(t *testing.T) {
	var calls atomic.Int32
	hooked := make(chan struct{})
	g := New(func(ctx context.Context, y *Yielder[int]) error {
		<-ctx.Done()
		y.OnCancel(func() { calls.Add(1) })
		close(hooked)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	assert.False(t, g.Advance(ctx))
	waitClosed(t, hooked, "hook registration")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeneratorAdvanceContextCancel(t *testing.T) {
	g := New(func(ctx context.Context, y *Yielder[int]) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.False(t, g.Advance(ctx))
	assert.ErrorIs(t, g.Err(), context.DeadlineExceeded)
	waitReleased(t, g)
	assert.True(t, g.Canceled())
}

func TestGeneratorAdvanceDoneContext(t *testing.T) {
	var ran atomic.Bool
	g := New(func(ctx context.Context, y *Yielder[int]) error {
		ran.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, g.Advance(ctx))
	assert.ErrorIs(t, g.Err(), context.Canceled)
	waitReleased(t, g)
	assert.False(t, ran.Load())
}

func TestGeneratorAllBreakCancels(t *testing.T) {
	g := Naturals()

	var got []int
	for v := range g.All(context.Background()) {
		got = append(got, v)
		if len(got) == 3 {
			break
		}
	}

	assert.Equal(t, []int{0, 1, 2}, got)
	waitReleased(t, g)
	assert.True(t, g.Canceled())
}

func TestGeneratorObserverEvents(t *testing.T) {
	var rec recorder
	g := FromSlice([]int{1}, WithName("src"), WithObserver(rec.observe))

	_, err := g.ToSlice(context.Background())
	require.NoError(t, err)
	waitReleased(t, g)

	assert.Equal(t,
		[]EventKind{EventStart, EventPublish, EventHandoff, EventComplete},
		rec.kinds("src"),
	)
}

func TestGeneratorObserverInheritedByOperators(t *testing.T) {
	var rec recorder
	src := Range(0, 4, WithObserver(rec.observe))
	out := Map(src, func(_ context.Context, v int) (int, error) { return v * 2, nil })

	got, err := out.ToSlice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, 6}, got)
	waitReleased(t, out)

	assert.Equal(t, 1, rec.count("map", EventComplete))
	assert.Equal(t, 4, rec.count("map", EventPublish))
	assert.Equal(t, 4, rec.count("range", EventPublish))
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	g := Fail[int](errors.New("boom"), WithObserver(LogObserver(logger)))
	assert.False(t, g.Advance(context.Background()))
	waitReleased(t, g)

	out := buf.String()
	assert.Contains(t, out, "generator=fail")
	assert.Contains(t, out, "event=start")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "error=boom")
}

func TestOptionsValidation(t *testing.T) {
	mustPanicContains(t, "non-empty name", func() { WithName("") })
	mustPanicContains(t, "non-nil observer", func() { WithObserver(nil) })
	mustPanicContains(t, "non-nil logger", func() { LogObserver(nil) })
	mustPanicContains(t, "non-nil body", func() { New[int](nil) })
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "handoff", EventHandoff.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}

// abandon starts a generator and drops it, returning what survives it.
func abandon() (nodeID, <-chan struct{}) {
	g := Naturals()
	g.Advance(context.Background())
	return g.s.id, g.Released()
}

func TestGeneratorAbandonedIsCancelled(t *testing.T) {
	id, released := abandon()

	require.Eventually(t, func() bool {
		runtime.GC()
		select {
		case <-released:
			return true
		default:
			return false
		}
	}, waitTimeout, 10*time.Millisecond)
	assert.False(t, cancellation.contains(id))
}

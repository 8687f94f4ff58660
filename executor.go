package asyncgen

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// ErrExecutorClosed is returned by [Executor.Submit] once the executor has
// been closed.
var ErrExecutorClosed = errors.New("asyncgen: executor is closed")

// Executor is a single-consumer task queue. Submitted tasks run one at a
// time, in submission order, on a goroutine the executor starts whenever
// the queue goes from empty to non-empty.
//
// Timer callbacks post their work here instead of touching generator state
// from the timer goroutine.
type Executor struct {
	mu      sync.Mutex
	tasks   *queue.Queue
	running bool
	closed  bool
	wg      sync.WaitGroup

	errMu sync.Mutex
	errs  []error

	cancel context.CancelFunc

	// Observability counters.
	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

// ExecutorStats provides a point-in-time snapshot of executor activity.
type ExecutorStats struct {
	Submitted  int64 // total tasks accepted
	Completed  int64 // tasks finished, panicked ones included
	Panicked   int64 // tasks that panicked
	QueueDepth int   // tasks waiting to run
}

// ExecutorOption configures an [Executor].
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	onMetrics       func(ExecutorStats)
	metricsInterval time.Duration
}

// WithExecutorMetrics registers a periodic metrics callback that fires
// every interval until the executor is closed.
//
// Panics if interval <= 0 or fn is nil.
func WithExecutorMetrics(interval time.Duration, fn func(ExecutorStats)) ExecutorOption {
	if interval <= 0 {
		panic("asyncgen: WithExecutorMetrics requires interval > 0")
	}
	if fn == nil {
		panic("asyncgen: WithExecutorMetrics requires non-nil callback")
	}
	return func(c *executorConfig) {
		c.onMetrics = fn
		c.metricsInterval = interval
	}
}

// NewExecutor creates an idle executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	var cfg executorConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{
		tasks:  queue.New(),
		cancel: cancel,
	}

	if cfg.onMetrics != nil {
		go func() {
			ticker := time.NewTicker(cfg.metricsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					cfg.onMetrics(e.Stats())
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	return e
}

// Submit queues fn. It never blocks.
// Returns [ErrExecutorClosed] if the executor has been closed.
func (e *Executor) Submit(fn func()) error {
	if fn == nil {
		panic("asyncgen: Submit requires a non-nil task")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrExecutorClosed
	}
	e.tasks.Add(fn)
	e.submitted.Add(1)
	if !e.running {
		e.running = true
		e.wg.Add(1)
		go e.drain()
	}
	return nil
}

func (e *Executor) drain() {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		if e.tasks.Length() == 0 {
			e.running = false
			e.mu.Unlock()
			return
		}
		fn := e.tasks.Remove().(func())
		e.mu.Unlock()

		e.runTask(fn)
	}
}

func (e *Executor) runTask(fn func()) {
	defer e.completed.Add(1)

	err := try(func() error {
		fn()
		return nil
	})
	if err != nil {
		e.panicked.Add(1)
		e.errMu.Lock()
		e.errs = append(e.errs, err)
		e.errMu.Unlock()
	}
}

// Stats returns a point-in-time snapshot of executor activity.
// Safe to call concurrently.
func (e *Executor) Stats() ExecutorStats {
	e.mu.Lock()
	depth := e.tasks.Length()
	e.mu.Unlock()
	return ExecutorStats{
		Submitted:  e.submitted.Load(),
		Completed:  e.completed.Load(),
		Panicked:   e.panicked.Load(),
		QueueDepth: depth,
	}
}

// Close stops accepting tasks and waits for the queued ones to run.
// Returns the joined [*PanicError]s of every task that panicked.
// Safe to call multiple times; subsequent calls return the same result.
func (e *Executor) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.wg.Wait()
	e.cancel()

	e.errMu.Lock()
	defer e.errMu.Unlock()
	return errors.Join(e.errs...)
}

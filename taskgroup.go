package asyncgen

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// taskGroup runs the helper goroutines an operator uses to drive several
// sources at once (merge pumps, the take-until trigger).
//
// It applies a fail-fast policy: the first task error or panic cancels the
// group context, which makes every other task abandon the source it is
// pulling. Panics are recovered and reported as *PanicError.
type taskGroup struct {
	ctx    context.Context
	cancel context.CancelFunc
	eg     *errgroup.Group
}

func newTaskGroup(parent context.Context) *taskGroup {
	ctx, cancel := context.WithCancel(parent)
	eg, ctx := errgroup.WithContext(ctx)
	return &taskGroup{
		ctx:    ctx,
		cancel: cancel,
		eg:     eg,
	}
}

// Go starts fn on a new goroutine with the group context.
// It may be called from inside a running task.
func (tg *taskGroup) Go(fn func(ctx context.Context) error) {
	tg.eg.Go(func() error {
		return try(func() error {
			return fn(tg.ctx)
		})
	})
}

// Stop cancels the group context without waiting.
func (tg *taskGroup) Stop() {
	tg.cancel()
}

// Wait stops the group, waits for every task, and returns the first error.
func (tg *taskGroup) Wait() error {
	tg.cancel()
	return tg.eg.Wait()
}

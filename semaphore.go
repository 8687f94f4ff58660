package asyncgen

import (
	"context"
	"sync/atomic"
)

// semaphore bounds the number of inner generators a merge drains at once.
// Acquire unblocks if the context is cancelled.
type semaphore struct {
	ch       chan struct{}
	acquired atomic.Int64
}

// newSemaphore returns nil for n <= 0; a nil semaphore never blocks.
func newSemaphore(n int) *semaphore {
	if n <= 0 {
		return nil
	}
	return &semaphore{ch: make(chan struct{}, n)}
}

func (s *semaphore) acquire(ctx context.Context) error {
	if s == nil {
		return ctx.Err()
	}
	select {
	case s.ch <- struct{}{}:
		s.acquired.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release panics if more slots are released than acquired.
func (s *semaphore) release() {
	if s == nil {
		return
	}
	if s.acquired.Add(-1) < 0 {
		s.acquired.Add(1)
		panic("asyncgen: semaphore released without matching acquire")
	}
	<-s.ch
}

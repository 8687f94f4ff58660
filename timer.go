package asyncgen

import (
	"context"
	"errors"
	"time"
)

// Stopper stops a pending timer. Stop reports whether the call prevented
// the timer from firing. *time.Timer implements it.
type Stopper interface {
	Stop() bool
}

// Clock is the time source of a [TimerService].
type Clock interface {
	Now() time.Time
	// AfterFunc calls f on its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Stopper
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// SystemClock returns the [Clock] backed by the time package.
func SystemClock() Clock { return systemClock{} }

// TimerService schedules work at deadlines.
//
// Timer callbacks never run work or touch generator state themselves: they
// post to the service's [Executor], which runs the work and resolves the
// [Handle].
type TimerService struct {
	clock    Clock
	exec     *Executor
	ownsExec bool
}

// TimerOption configures a [TimerService].
type TimerOption func(*TimerService)

// WithClock sets the clock. Default is [SystemClock].
// Panics if c is nil.
func WithClock(c Clock) TimerOption {
	if c == nil {
		panic("asyncgen: WithClock requires a non-nil clock")
	}
	return func(s *TimerService) {
		s.clock = c
	}
}

// WithExecutor runs scheduled work on e. The caller keeps ownership of e:
// [TimerService.Close] does not close it.
// Panics if e is nil.
func WithExecutor(e *Executor) TimerOption {
	if e == nil {
		panic("asyncgen: WithExecutor requires a non-nil executor")
	}
	return func(s *TimerService) {
		s.exec = e
	}
}

// NewTimerService creates a timer service. Without [WithExecutor] it owns a
// private executor that [TimerService.Close] shuts down.
func NewTimerService(opts ...TimerOption) *TimerService {
	s := &TimerService{clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.exec == nil {
		s.exec = NewExecutor()
		s.ownsExec = true
	}
	return s
}

// Now returns the current time of the service's clock.
func (s *TimerService) Now() time.Time {
	return s.clock.Now()
}

// Close shuts down the owned executor after the queued work has run.
// Timers that fire afterwards resolve their handles with
// [ErrExecutorClosed]. Returns the joined panics of the owned executor.
func (s *TimerService) Close() error {
	if !s.ownsExec {
		return nil
	}
	return s.exec.Close()
}

// Schedule runs work once deadline has passed and returns a [Handle] to its
// outcome. A deadline in the past runs the work as soon as the executor
// gets to it.
//
// Panics if s or work is nil.
func Schedule[T any](s *TimerService, deadline time.Time, work func() (T, error)) *Handle[T] {
	if s == nil {
		panic("asyncgen: Schedule requires a non-nil timer service")
	}
	if work == nil {
		panic("asyncgen: Schedule requires non-nil work")
	}
	h := newHandle(work)
	expire := func() {
		if err := s.exec.Submit(h.fire); err != nil {
			h.fail(err)
		}
	}

	d := deadline.Sub(s.clock.Now())
	if d <= 0 {
		expire()
		return h
	}

	t := s.clock.AfterFunc(d, expire)
	h.mu.Lock()
	if h.state == handlePending {
		h.timer = t
		h.mu.Unlock()
		return h
	}
	h.mu.Unlock()
	// Cancelled while the timer was being armed.
	t.Stop()
	return h
}

// ScheduleAfter is Schedule with a deadline d from now.
func ScheduleAfter[T any](s *TimerService, d time.Duration, work func() (T, error)) *Handle[T] {
	if s == nil {
		panic("asyncgen: ScheduleAfter requires a non-nil timer service")
	}
	return Schedule(s, s.clock.Now().Add(d), work)
}

// SchedulePeriodically returns a generator that runs work at initial,
// initial+period, initial+2*period, ... and yields each result. work
// receives the zero-based tick number.
//
// Each tick is scheduled only after the consumer has taken the previous
// result. Cancelling the generator while it waits cancels the pending
// timer. An error from work ends the generator with that error.
//
// Panics if s or work is nil or period <= 0.
func SchedulePeriodically[T any](
	s *TimerService,
	initial time.Time,
	period time.Duration,
	work func(tick int64) (T, error),
	opts ...Option,
) *Generator[T] {
	if s == nil {
		panic("asyncgen: SchedulePeriodically requires a non-nil timer service")
	}
	if work == nil {
		panic("asyncgen: SchedulePeriodically requires non-nil work")
	}
	if period <= 0 {
		panic("asyncgen: SchedulePeriodically requires period > 0")
	}
	return newGenerator(func(ctx context.Context, y *Yielder[T]) error {
		deadline := initial
		for tick := int64(0); ; tick++ {
			h := Schedule(s, deadline, func() (T, error) {
				return work(tick)
			})
			y.OnCancel(func() { h.Cancel() })
			v, err := h.Await(ctx)
			y.OnCancel(nil)
			if err != nil {
				h.Cancel()
				if errors.Is(err, ErrTimerCanceled) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			if !y.Yield(v) {
				return nil
			}
			deadline = deadline.Add(period)
		}
	}, newConfig("periodic", opts))
}

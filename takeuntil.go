package asyncgen

import "context"

// TakeUntil returns a generator that yields the values of src until
// trigger yields its first value or completes, whichever comes first.
//
// src and trigger are pumped independently. When trigger fires the result
// ends cleanly and src is cancelled; when src ends, trigger is cancelled.
// An error from trigger ends the result with that error. Cancelling the
// result cancels both.
//
// Panics if src or trigger is nil.
func TakeUntil[T, U any](src *Generator[T], trigger *Generator[U], opts ...Option) *Generator[T] {
	if src == nil {
		panic("asyncgen: TakeUntil requires a non-nil source")
	}
	if trigger == nil {
		panic("asyncgen: TakeUntil requires a non-nil trigger")
	}
	g := wrap(src, "take-until", func(ctx context.Context, y *Yielder[T]) error {
		tasks := newTaskGroup(ctx)
		defer func() {
			tasks.Stop()
			trigger.release()
			_ = tasks.Wait()
		}()

		tasks.Go(func(ctx context.Context) error {
			fired := trigger.Advance(ctx)
			if ctx.Err() != nil {
				return nil
			}
			if !fired {
				if err := trigger.Err(); err != nil {
					y.s.complete(err)
					return err
				}
			}
			y.s.complete(nil)
			return nil
		})

		for src.Advance(ctx) {
			if !y.Yield(src.Current()) {
				return nil
			}
		}
		return src.Err()
	}, opts)
	cancellation.link(g.s.id, trigger.s.id)
	return g
}

package asyncgen

import (
	"context"
	"fmt"
)

// MergeAll flattens a generator of generators by draining every inner
// generator concurrently. Values are yielded as they arrive; no order
// between inner generators is guaranteed.
//
// The result completes once outer and every inner generator have completed
// and all their values have been consumed. The first error from any of
// them cancels all the others and is reported to the consumer.
//
// Panics if outer is nil.
func MergeAll[T any](outer *Generator[*Generator[T]], opts ...Option) *Generator[T] {
	if outer == nil {
		panic("asyncgen: MergeAll requires a non-nil source")
	}
	return merge(outer, 0, opts)
}

// MergeLimit is [MergeAll] draining at most limit inner generators at a
// time. The next inner generator is not pulled from outer until a slot
// frees up.
//
// Panics if outer is nil or limit <= 0.
func MergeLimit[T any](outer *Generator[*Generator[T]], limit int, opts ...Option) *Generator[T] {
	if outer == nil {
		panic("asyncgen: MergeLimit requires a non-nil source")
	}
	if limit <= 0 {
		panic("asyncgen: MergeLimit requires limit > 0")
	}
	return merge(outer, limit, opts)
}

func merge[T any](outer *Generator[*Generator[T]], limit int, opts []Option) *Generator[T] {
	return wrap(outer, "merge", func(ctx context.Context, y *Yielder[T]) error {
		ch := newMergeChannel[T]()
		tasks := newTaskGroup(ctx)
		slots := newSemaphore(limit)
		defer func() {
			ch.close()
			_ = tasks.Wait()
		}()

		ch.add(outer)
		tasks.Go(func(ctx context.Context) error {
			for {
				if slots.acquire(ctx) != nil {
					outer.release()
					break
				}
				if !outer.Advance(ctx) {
					slots.release()
					break
				}
				inner := outer.Current()
				if inner == nil {
					slots.release()
					continue
				}
				if !ch.add(inner) {
					slots.release()
					inner.release()
					continue
				}
				adopt(y, inner)
				tasks.Go(func(ctx context.Context) error {
					defer slots.release()
					return pump(ctx, ch, inner)
				})
			}
			err := outer.Err()
			if ctx.Err() != nil {
				err = nil
			}
			ch.done(outer, err)
			return err
		})

		for {
			v, ok, err := ch.pop(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if !y.Yield(v) {
				return nil
			}
		}
	}, opts)
}

// pump drains src into ch.
func pump[T any](ctx context.Context, ch *mergeChannel[T], src *Generator[T]) error {
	for src.Advance(ctx) {
		ch.push(src.Current())
	}
	err := src.Err()
	if ctx.Err() != nil {
		err = nil
	}
	ch.done(src, err)
	return err
}

// Merge drains every source concurrently into a single generator.
// See [MergeAll].
func Merge[T any](srcs ...*Generator[T]) *Generator[T] {
	for i, src := range srcs {
		if src == nil {
			panic(fmt.Sprintf("asyncgen: Merge source[%d] must not be nil", i))
		}
	}
	return MergeAll(FromSlice(srcs, WithName("merge-sources")))
}

// FlatMap maps every value of src to a generator and merges the results.
// It is MergeAll(Map(src, fn)).
//
// Panics if src or fn is nil.
func FlatMap[T, U any](src *Generator[T], fn func(context.Context, T) (*Generator[U], error), opts ...Option) *Generator[U] {
	return MergeAll(Map(src, fn, WithName("flat-map-project")), append([]Option{WithName("flat-map")}, opts...)...)
}

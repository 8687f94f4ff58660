package asyncgen

import "context"

// Map returns a generator that yields fn(v) for every value v of src.
// An error from fn or from src ends the result with that error.
//
// Panics if src or fn is nil.
func Map[T, U any](src *Generator[T], fn func(context.Context, T) (U, error), opts ...Option) *Generator[U] {
	if src == nil {
		panic("asyncgen: Map requires a non-nil source")
	}
	if fn == nil {
		panic("asyncgen: Map requires a non-nil function")
	}
	return wrap(src, "map", func(ctx context.Context, y *Yielder[U]) error {
		for src.Advance(ctx) {
			v, err := fn(ctx, src.Current())
			if err != nil {
				return err
			}
			if !y.Yield(v) {
				return nil
			}
		}
		return src.Err()
	}, opts)
}

// Filter returns a generator that yields the values of src for which keep
// reports true, preserving order.
//
// Panics if src or keep is nil.
func Filter[T any](src *Generator[T], keep func(T) bool, opts ...Option) *Generator[T] {
	if src == nil {
		panic("asyncgen: Filter requires a non-nil source")
	}
	if keep == nil {
		panic("asyncgen: Filter requires a non-nil predicate")
	}
	return wrap(src, "filter", func(ctx context.Context, y *Yielder[T]) error {
		for src.Advance(ctx) {
			v := src.Current()
			if !keep(v) {
				continue
			}
			if !y.Yield(v) {
				return nil
			}
		}
		return src.Err()
	}, opts)
}

// Take returns a generator that yields at most n values of src. The source
// is released as soon as the n-th value has been pulled, so an infinite
// source is torn down even though it is never exhausted. Take with n <= 0
// completes without pulling src at all.
//
// Panics if src is nil.
func Take[T any](src *Generator[T], n int, opts ...Option) *Generator[T] {
	if src == nil {
		panic("asyncgen: Take requires a non-nil source")
	}
	return wrap(src, "take", func(ctx context.Context, y *Yielder[T]) error {
		for i := 0; i < n; i++ {
			if !src.Advance(ctx) {
				return src.Err()
			}
			v := src.Current()
			if i == n-1 {
				src.release()
			}
			if !y.Yield(v) {
				return nil
			}
		}
		return nil
	}, opts)
}

package asyncgen

import "context"

// Pair holds two values paired by [Zip].
type Pair[A, B any] struct {
	First  A
	Second B
}

// Skip returns a generator that drops the first n values of src and yields
// the rest.
//
// Panics if src is nil.
func Skip[T any](src *Generator[T], n int, opts ...Option) *Generator[T] {
	if src == nil {
		panic("asyncgen: Skip requires a non-nil source")
	}
	return wrap(src, "skip", func(ctx context.Context, y *Yielder[T]) error {
		for i := 0; src.Advance(ctx); i++ {
			if i < n {
				continue
			}
			if !y.Yield(src.Current()) {
				return nil
			}
		}
		return src.Err()
	}, opts)
}

// Scan returns a generator that applies fn cumulatively to each value of
// src and yields every intermediate accumulation. The first value yielded
// is fn(initial, first).
//
// Panics if src or fn is nil.
func Scan[T, R any](src *Generator[T], initial R, fn func(R, T) R, opts ...Option) *Generator[R] {
	if src == nil {
		panic("asyncgen: Scan requires a non-nil source")
	}
	if fn == nil {
		panic("asyncgen: Scan requires a non-nil accumulator")
	}
	return wrap(src, "scan", func(ctx context.Context, y *Yielder[R]) error {
		acc := initial
		for src.Advance(ctx) {
			acc = fn(acc, src.Current())
			if !y.Yield(acc) {
				return nil
			}
		}
		return src.Err()
	}, opts)
}

// Batch groups the values of src into slices of size n. The last batch may
// be shorter. On error the partial batch is dropped.
//
// Panics if src is nil or n <= 0.
func Batch[T any](src *Generator[T], n int, opts ...Option) *Generator[[]T] {
	if src == nil {
		panic("asyncgen: Batch requires a non-nil source")
	}
	if n <= 0 {
		panic("asyncgen: Batch requires n > 0")
	}
	return wrap(src, "batch", func(ctx context.Context, y *Yielder[[]T]) error {
		batch := make([]T, 0, n)
		for src.Advance(ctx) {
			batch = append(batch, src.Current())
			if len(batch) < n {
				continue
			}
			if !y.Yield(batch) {
				return nil
			}
			batch = make([]T, 0, n)
		}
		if err := src.Err(); err != nil {
			return err
		}
		if len(batch) > 0 {
			y.Yield(batch)
		}
		return nil
	}, opts)
}

// Zip pairs the values of a and b element by element. It pulls a, then b,
// for every pair and ends as soon as either is exhausted; the other one is
// then released.
//
// Panics if a or b is nil.
func Zip[A, B any](a *Generator[A], b *Generator[B], opts ...Option) *Generator[Pair[A, B]] {
	if a == nil {
		panic("asyncgen: Zip requires a non-nil first source")
	}
	if b == nil {
		panic("asyncgen: Zip requires a non-nil second source")
	}
	g := wrap(a, "zip", func(ctx context.Context, y *Yielder[Pair[A, B]]) error {
		for {
			if !a.Advance(ctx) {
				return a.Err()
			}
			if !b.Advance(ctx) {
				return b.Err()
			}
			if !y.Yield(Pair[A, B]{First: a.Current(), Second: b.Current()}) {
				return nil
			}
		}
	}, opts)
	cancellation.link(g.s.id, b.s.id)
	return g
}

// Skipping is the [Stage] form of [Skip].
func Skipping[T any](n int, opts ...Option) Stage[T, T] {
	return func(g *Generator[T]) *Generator[T] {
		return Skip(g, n, opts...)
	}
}

// Scanning is the [Stage] form of [Scan].
func Scanning[T, R any](initial R, fn func(R, T) R, opts ...Option) Stage[T, R] {
	return func(g *Generator[T]) *Generator[R] {
		return Scan(g, initial, fn, opts...)
	}
}

// Batching is the [Stage] form of [Batch].
func Batching[T any](n int, opts ...Option) Stage[T, []T] {
	return func(g *Generator[T]) *Generator[[]T] {
		return Batch(g, n, opts...)
	}
}

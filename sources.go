package asyncgen

import (
	"context"
	"errors"
	"io"
)

// FromSlice creates a generator that yields the items in order.
func FromSlice[T any](items []T, opts ...Option) *Generator[T] {
	return newGenerator(func(ctx context.Context, y *Yielder[T]) error {
		for _, v := range items {
			if !y.Yield(v) {
				return nil
			}
		}
		return nil
	}, newConfig("slice", opts))
}

// Range creates a generator that yields count consecutive integers
// starting at start.
func Range(start, count int, opts ...Option) *Generator[int] {
	return newGenerator(func(ctx context.Context, y *Yielder[int]) error {
		for i := 0; i < count; i++ {
			if !y.Yield(start + i) {
				return nil
			}
		}
		return nil
	}, newConfig("range", opts))
}

// Naturals creates an infinite generator of 0, 1, 2, ...
// It only ends when cancelled, so bound it with [Take] or [TakeUntil].
func Naturals(opts ...Option) *Generator[int] {
	return newGenerator(func(ctx context.Context, y *Yielder[int]) error {
		for i := 0; ; i++ {
			if !y.Yield(i) {
				return nil
			}
		}
	}, newConfig("naturals", opts))
}

// FromChan creates a generator that yields values received from ch until
// ch is closed.
func FromChan[T any](ch <-chan T, opts ...Option) *Generator[T] {
	return newGenerator(func(ctx context.Context, y *Yielder[T]) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case v, ok := <-ch:
				if !ok {
					return nil
				}
				if !y.Yield(v) {
					return nil
				}
			}
		}
	}, newConfig("chan", opts))
}

// FromFunc creates a generator that calls fn for each value. Returning
// io.EOF ends the sequence cleanly; any other error ends it with that error.
func FromFunc[T any](fn func(context.Context) (T, error), opts ...Option) *Generator[T] {
	if fn == nil {
		panic("asyncgen: FromFunc requires a non-nil function")
	}
	return newGenerator(func(ctx context.Context, y *Yielder[T]) error {
		for {
			v, err := fn(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if !y.Yield(v) {
				return nil
			}
		}
	}, newConfig("func", opts))
}

// Empty creates a generator that completes without yielding.
func Empty[T any](opts ...Option) *Generator[T] {
	return newGenerator(func(context.Context, *Yielder[T]) error {
		return nil
	}, newConfig("empty", opts))
}

// Fail creates a generator that fails with err without yielding.
func Fail[T any](err error, opts ...Option) *Generator[T] {
	if err == nil {
		panic("asyncgen: Fail requires a non-nil error")
	}
	return newGenerator(func(context.Context, *Yielder[T]) error {
		return err
	}, newConfig("fail", opts))
}

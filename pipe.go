package asyncgen

import "context"

// Stage is a pipeline step that adapts one generator into another.
// Every operator has a Stage constructor so pipelines can be assembled
// left to right:
//
//	out := asyncgen.Apply(
//	    asyncgen.Pipe(src, asyncgen.Filtering(isEven), asyncgen.Taking[int](10)),
//	    asyncgen.Mapping(format),
//	)
type Stage[T, U any] func(*Generator[T]) *Generator[U]

// Then composes two stages.
func Then[T, U, V any](first Stage[T, U], second Stage[U, V]) Stage[T, V] {
	return func(g *Generator[T]) *Generator[V] {
		return second(first(g))
	}
}

// Apply runs g through stage.
func Apply[T, U any](g *Generator[T], stage Stage[T, U]) *Generator[U] {
	return stage(g)
}

// Pipe runs g through every stage in order.
func Pipe[T any](g *Generator[T], stages ...Stage[T, T]) *Generator[T] {
	for _, stage := range stages {
		g = stage(g)
	}
	return g
}

// Filtering is the [Stage] form of [Filter].
func Filtering[T any](keep func(T) bool, opts ...Option) Stage[T, T] {
	return func(g *Generator[T]) *Generator[T] {
		return Filter(g, keep, opts...)
	}
}

// Mapping is the [Stage] form of [Map] for functions that cannot fail.
func Mapping[T, U any](fn func(T) U, opts ...Option) Stage[T, U] {
	return func(g *Generator[T]) *Generator[U] {
		return Map(g, func(_ context.Context, v T) (U, error) {
			return fn(v), nil
		}, opts...)
	}
}

// Taking is the [Stage] form of [Take].
func Taking[T any](n int, opts ...Option) Stage[T, T] {
	return func(g *Generator[T]) *Generator[T] {
		return Take(g, n, opts...)
	}
}

// TakingUntil is the [Stage] form of [TakeUntil].
func TakingUntil[T, U any](trigger *Generator[U], opts ...Option) Stage[T, T] {
	return func(g *Generator[T]) *Generator[T] {
		return TakeUntil(g, trigger, opts...)
	}
}

// Merging is the [Stage] form of [MergeAll].
func Merging[T any](opts ...Option) Stage[*Generator[T], T] {
	return func(g *Generator[*Generator[T]]) *Generator[T] {
		return MergeAll(g, opts...)
	}
}

// Concatenating is the [Stage] form of [Concat].
func Concatenating[T any](opts ...Option) Stage[*Generator[T], T] {
	return func(g *Generator[*Generator[T]]) *Generator[T] {
		return Concat(g, opts...)
	}
}

// FlatMapping is the [Stage] form of [FlatMap] for functions that cannot
// fail.
func FlatMapping[T, U any](fn func(T) *Generator[U], opts ...Option) Stage[T, U] {
	return func(g *Generator[T]) *Generator[U] {
		return FlatMap(g, func(_ context.Context, v T) (*Generator[U], error) {
			return fn(v), nil
		}, opts...)
	}
}

package asyncgen

import "context"

// Concat returns a generator that exhausts each inner generator of outer
// in order before pulling the next one. Cancelling the result cancels the
// inner generator currently being drained as well as outer.
//
// Panics if outer is nil.
func Concat[T any](outer *Generator[*Generator[T]], opts ...Option) *Generator[T] {
	if outer == nil {
		panic("asyncgen: Concat requires a non-nil source")
	}
	return wrap(outer, "concat", func(ctx context.Context, y *Yielder[T]) error {
		for outer.Advance(ctx) {
			inner := outer.Current()
			if inner == nil {
				continue
			}
			adopt(y, inner)
			for inner.Advance(ctx) {
				if !y.Yield(inner.Current()) {
					return nil
				}
			}
			if err := inner.Err(); err != nil {
				return err
			}
		}
		return outer.Err()
	}, opts)
}

// ConcatMap maps every value of src to a generator and concatenates the
// results in order. It is Concat(Map(src, fn)).
//
// Panics if src or fn is nil.
func ConcatMap[T, U any](src *Generator[T], fn func(context.Context, T) (*Generator[U], error), opts ...Option) *Generator[U] {
	return Concat(Map(src, fn, WithName("concat-map-project")), append([]Option{WithName("concat-map")}, opts...)...)
}

package asyncgen

import "context"

// ToSlice collects all remaining values of g. On error it returns the
// values collected so far together with the error.
func (g *Generator[T]) ToSlice(ctx context.Context) ([]T, error) {
	var items []T
	for g.Advance(ctx) {
		items = append(items, g.cur)
	}
	return items, g.err
}

// ForEach calls fn for each remaining value of g. If fn returns an error,
// g is cancelled and the error is returned.
func (g *Generator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for g.Advance(ctx) {
		if err := fn(g.cur); err != nil {
			g.Cancel()
			return err
		}
	}
	return g.err
}

// Count consumes g and returns the number of values it yielded.
func (g *Generator[T]) Count(ctx context.Context) (int, error) {
	var n int
	for g.Advance(ctx) {
		n++
	}
	return n, g.err
}

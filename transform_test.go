package asyncgen

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkip(t *testing.T) {
	got, err := Skip(Range(0, 5), 2).ToSlice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, got)

	n, err := Skip(Range(0, 3), 10).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScanRunningSum(t *testing.T) {
	sum := func(acc, v int) int { return acc + v }
	got, err := Scan(Range(1, 4), 0, sum).ToSlice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 6, 10}, got)
}

func TestBatch(t *testing.T) {
	got, err := Batch(Range(0, 7), 3).ToSlice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6}}, got)
}

func TestBatchError(t *testing.T) {
	boom := errors.New("boom")
	src := New(func(ctx context.Context, y *Yielder[int]) error {
		for i := range 4 {
			if !y.Yield(i) {
				return nil
			}
		}
		return boom
	})

	got, err := Batch(src, 3).ToSlice(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, [][]int{{0, 1, 2}}, got)
}

func TestZipStopsAtShorter(t *testing.T) {
	long := Naturals()
	out := Zip(FromSlice([]string{"a", "b"}), long)

	got, err := out.ToSlice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Pair[string, int]{{"a", 0}, {"b", 1}}, got)
	waitReleased(t, long)
	assert.True(t, long.Canceled())
}

func TestZipCancelReachesBoth(t *testing.T) {
	a, b := newBlocker(), newBlocker()
	ga, gb := a.gen(1, 2), b.gen(3, 4)
	out := Zip(ga, gb)

	require.True(t, out.Advance(context.Background()))
	assert.Equal(t, Pair[int, int]{1, 3}, out.Current())

	out.Cancel()
	waitReleased(t, ga)
	waitReleased(t, gb)
	assert.Equal(t, 1, a.cancelCount())
	assert.Equal(t, 1, b.cancelCount())
}

func TestTransformStages(t *testing.T) {
	out := Apply(
		Pipe(Range(0, 10), Skipping[int](4)),
		Then(Scanning(0, func(acc, v int) int { return acc + v }), Batching[int](2)),
	)
	got, err := out.ToSlice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{4, 9}, {15, 22}, {30, 39}}, got)
}

func TestMergeLimitBoundsConcurrency(t *testing.T) {
	const limit = 2
	var active, peak atomic.Int32
	inner := func(base int) *Generator[int] {
		return New(func(ctx context.Context, y *Yielder[int]) error {
			cur := active.Add(1)
			defer active.Add(-1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			for i := range 3 {
				if !y.Yield(base + i) {
					return nil
				}
			}
			return nil
		})
	}

	outer := Map(Range(0, 6), func(_ context.Context, i int) (*Generator[int], error) {
		return inner(i * 10), nil
	})
	n, err := MergeLimit(outer, limit).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 18, n)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestTransformArgumentValidation(t *testing.T) {
	mustPanicContains(t, "Skip requires a non-nil source", func() { Skip[int](nil, 1) })
	mustPanicContains(t, "non-nil accumulator", func() { Scan[int, int](Empty[int](), 0, nil) })
	mustPanicContains(t, "Batch requires n > 0", func() { Batch(Empty[int](), 0) })
	mustPanicContains(t, "non-nil second source", func() { Zip[int, int](Empty[int](), nil) })
	mustPanicContains(t, "limit > 0", func() { MergeLimit(Empty[*Generator[int]](), 0) })
}

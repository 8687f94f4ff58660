// Package asyncgen provides pull-based asynchronous generators and the
// operators to compose them.
//
// A [Generator] pairs a producer body with a single consumer. The consumer
// pulls with [Generator.Advance]; the producer runs until it publishes a
// value with [Yielder.Yield] or returns, then control goes back to the
// consumer. Exactly one side runs at a time. The producer starts lazily on
// the first pull.
//
//	g := asyncgen.New(func(ctx context.Context, y *asyncgen.Yielder[int]) error {
//	    for i := 0; ; i++ {
//	        if !y.Yield(i) {
//	            return nil
//	        }
//	    }
//	})
//	for g.Advance(ctx) {
//	    fmt.Println(g.Current())
//	}
//	if err := g.Err(); err != nil {
//	    return err
//	}
//
// # Operators
//
// Operators adapt one generator into another:
//
//   - [Map], [Filter], [Take]: element-wise adaptors.
//   - [Concat], [ConcatMap]: sequential flattening.
//   - [Merge], [MergeAll], [MergeLimit], [FlatMap]: concurrent flattening.
//     Inner generators are pumped on their own goroutines into a shared
//     queue.
//   - [TakeUntil]: stops a sequence when a trigger fires.
//   - [Skip], [Scan], [Batch]: reshaping a sequence.
//   - [Zip]: pairs two sequences element by element.
//
// Every operator also has a [Stage] form so pipelines read left to right:
//
//	out := asyncgen.Pipe(asyncgen.Naturals(),
//	    asyncgen.Filtering(isEven),
//	    asyncgen.Taking[int](3),
//	)
//
// # Cancellation
//
// Generators are linked in a cancellation graph that mirrors the pipeline.
// [Generator.Cancel] reaches every linked generator, sources and consumers
// alike. When an operator stops consuming a source, for example [Take]
// after its last value, only that source side is torn down. Cancellation
// is cooperative: a parked producer wakes up, [Yielder.Yield] returns
// false, and the body unwinds. Hooks registered with [Yielder.OnCancel]
// run at most once. A cancelled generator ends cleanly, without an error.
//
// Abandoned generators are cancelled when they are garbage collected.
//
// # Errors
//
// A body that returns an error, or panics, ends its generator with that
// error (a panic becomes a [*PanicError]). Operators pass errors on
// unchanged, so [errors.Is] and [errors.As] work at the end of a pipeline.
// Merge reports the first error and cancels the other sources.
//
// Misuse of the protocol, such as calling Advance concurrently or after
// the generator reported completion, panics.
//
// # Push sources and timers
//
// A [Hub] bridges push-style events into generators: every waiting
// subscriber receives each value passed to [Hub.Next].
//
// A [TimerService] runs work at deadlines. Timer callbacks post to an
// [Executor] instead of running on the timer goroutine. [Schedule] returns
// a cancellable [Handle]; [SchedulePeriodically] returns a generator that
// yields one result per period and stops its pending timer on cancel.
//
// # Observability
//
// [WithObserver] installs a hook that receives an [Event] at every state
// transition. [LogObserver] adapts it to a [log/slog.Logger]. Operators
// inherit the observer of the generator they wrap.
package asyncgen

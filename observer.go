package asyncgen

import (
	"context"
	"log/slog"
)

// EventKind identifies a generator state transition.
type EventKind int

const (
	// EventStart is emitted when the producer body begins running.
	EventStart EventKind = iota
	// EventPublish is emitted when the producer publishes a value.
	EventPublish
	// EventHandoff is emitted when the consumer hands control back to a
	// parked producer to request the next value.
	EventHandoff
	// EventCancel is emitted once when cancellation reaches the generator.
	EventCancel
	// EventComplete is emitted when the generator ends without error.
	EventComplete
	// EventFail is emitted when the generator ends with an error.
	EventFail
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventPublish:
		return "publish"
	case EventHandoff:
		return "handoff"
	case EventCancel:
		return "cancel"
	case EventComplete:
		return "complete"
	case EventFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Event describes one transition of one generator.
type Event struct {
	Kind EventKind
	// Generator is the name given via [WithName] or the operator default.
	Generator string
	// ID is the generator's handle in the cancellation graph. It is unique
	// for the lifetime of the process.
	ID uint64
	// Err is set for EventFail.
	Err error
}

// Observer receives generator events. See [WithObserver].
type Observer func(Event)

// LogObserver returns an [Observer] that writes every event to logger.
// Failures are logged at warn level, everything else at debug level.
func LogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		panic("asyncgen: LogObserver requires a non-nil logger")
	}
	return func(e Event) {
		level := slog.LevelDebug
		attrs := []slog.Attr{
			slog.String("generator", e.Generator),
			slog.Uint64("id", e.ID),
			slog.String("event", e.Kind.String()),
		}
		if e.Err != nil {
			level = slog.LevelWarn
			attrs = append(attrs, slog.Any("error", e.Err))
		}
		logger.LogAttrs(context.Background(), level, "generator transition", attrs...)
	}
}

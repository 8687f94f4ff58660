package asyncgen

// config holds per-generator settings. Operators derive theirs from the
// source they wrap so an observer set at the root follows the pipeline.
type config struct {
	name     string
	observer Observer
}

// Option configures a [Generator] or a [Hub].
type Option func(*config)

func newConfig(name string, opts []Option) config {
	c := config{name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// derive builds the config of an operator wrapping a generator configured
// with parent.
func (c config) derive(name string, opts []Option) config {
	d := config{name: name, observer: c.observer}
	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}
	return d
}

// WithName sets the name reported in [Event] values. Operators default to
// their own name ("map", "filter", "merge", ...).
// It panics if name is empty.
func WithName(name string) Option {
	if name == "" {
		panic("asyncgen: WithName requires a non-empty name")
	}
	return func(c *config) {
		c.name = name
	}
}

// WithObserver registers a hook invoked at every state transition of the
// generator: start, publish, handoff, cancel, complete and fail.
//
// The hook runs synchronously on whichever goroutine performs the
// transition. It must not block and must not call back into the generator.
// It panics if o is nil.
func WithObserver(o Observer) Option {
	if o == nil {
		panic("asyncgen: WithObserver requires a non-nil observer")
	}
	return func(c *config) {
		c.observer = o
	}
}

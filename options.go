package hpxmp

import (
	"context"
	"runtime"

	"github.com/gitczfranks/hpxMP/substrate"
)

// Policy determines how a team handles errors returned by region and
// task bodies.
type Policy int

const (
	// FailFast cancels the team when the first error occurs.
	// Parallel returns that first error.
	FailFast Policy = iota

	// Collect gathers all errors without cancelling the team.
	// Parallel returns all errors joined via errors.Join.
	Collect
)

// DefaultThreadLimit is the hard maximum team size when none is configured.
const DefaultThreadLimit = 1024

type config struct {
	numThreads      int
	dynamic         bool
	nested          bool
	maxActiveLevels int
	threadLimit     int
	schedule        Schedule
	scheduleChunk   int64

	policy     Policy
	panicAsErr bool
	onEvent    func(Event)
	sub        Substrate
}

// Option configures a [Runtime].
type Option func(*config)

func defaultConfig() config {
	return config{
		numThreads:      runtime.GOMAXPROCS(0),
		nested:          true,
		maxActiveLevels: 8,
		threadLimit:     DefaultThreadLimit,
		schedule:        Schedule{Kind: SchedDynamic},
		scheduleChunk:   1,
		policy:          FailFast,
	}
}

// WithNumThreads sets the team size requested by regions that do not
// ask for one explicitly. It panics if n <= 0.
func WithNumThreads(n int) Option {
	if n <= 0 {
		panic("hpxmp: WithNumThreads requires n > 0")
	}
	return func(c *config) {
		c.numThreads = n
	}
}

// WithDynamic enables dynamic adjustment: team sizes are capped by the
// available parallelism instead of being honoured verbatim.
func WithDynamic(on bool) Option {
	return func(c *config) {
		c.dynamic = on
	}
}

// WithNested controls whether nested parallel regions get more than one
// thread.
func WithNested(on bool) Option {
	return func(c *config) {
		c.nested = on
	}
}

// WithMaxActiveLevels sets how many nested active regions may exist.
// Regions beyond that depth run with a single thread.
// It panics if n <= 0.
func WithMaxActiveLevels(n int) Option {
	if n <= 0 {
		panic("hpxmp: WithMaxActiveLevels requires n > 0")
	}
	return func(c *config) {
		c.maxActiveLevels = n
	}
}

// WithThreadLimit sets the hard maximum team size. It panics if n <= 0.
func WithThreadLimit(n int) Option {
	if n <= 0 {
		panic("hpxmp: WithThreadLimit requires n > 0")
	}
	return func(c *config) {
		c.threadLimit = n
	}
}

// WithSchedule sets the policy used by loops requesting [SchedRuntime].
// It is fixed for the lifetime of the runtime. It panics if kind is
// SchedRuntime itself or chunk is negative.
func WithSchedule(kind ScheduleKind, chunk int64) Option {
	if kind == SchedRuntime || !kind.valid() {
		panic("hpxmp: WithSchedule requires a concrete schedule kind")
	}
	if chunk < 0 {
		panic("hpxmp: WithSchedule requires a non-negative chunk")
	}
	return func(c *config) {
		c.schedule = Schedule{Kind: kind}
		c.scheduleChunk = chunk
	}
}

// WithPolicy sets the error handling policy for teams.
// It panics if p is not a known Policy value.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		switch p {
		case FailFast, Collect:
			c.policy = p
		default:
			panic("hpxmp: invalid policy")
		}
	}
}

// WithPanicAsError converts panics in region and task bodies to
// *PanicError values returned as regular errors, instead of re-raising
// them when the region joins.
func WithPanicAsError() Option {
	return func(c *config) {
		c.panicAsErr = true
	}
}

// WithOnEvent registers a hook receiving an [Event] for every fork,
// join, task state change and cancellation. The hook runs on the
// goroutine that caused the event and must be safe for concurrent use.
func WithOnEvent(fn func(Event)) Option {
	return func(c *config) {
		c.onEvent = fn
	}
}

// WithSubstrate replaces the goroutine substrate. It panics if s is nil.
func WithSubstrate(s Substrate) Option {
	if s == nil {
		panic("hpxmp: WithSubstrate requires a non-nil substrate")
	}
	return func(c *config) {
		c.sub = s
	}
}

// WithConfig applies a declarative [Config]. Zero fields keep their
// defaults. It panics if the config is invalid; validate documents with
// [LoadConfig] first.
func WithConfig(cfg Config) Option {
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return func(c *config) {
		cfg.apply(c)
	}
}

// Substrate is the fork/join layer the runtime executes on.
// [*substrate.Goroutines] is the default implementation.
type Substrate interface {
	// Spawn starts n members and returns one join handle each, or fails
	// without starting any.
	Spawn(ctx context.Context, n int, fn substrate.MemberFunc) ([]*substrate.Handle, error)

	// Go hands deferred work to the scheduler.
	Go(fn func())

	// Yield gives up the processor.
	Yield()
}

package hpxmp

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gitczfranks/hpxMP/substrate"
)

// Runtime owns the configuration, the substrate and the root context of
// one instance of the parallel runtime. Most programs use the process-wide
// instance returned by [Default]; tests and embedders build their own
// with [New].
type Runtime struct {
	cfg  config
	sub  Substrate
	root *Thread

	ctx    context.Context
	cancel context.CancelFunc

	nextGID atomic.Int64
	closed  atomic.Bool

	// atomicMu guards every Atomic section of the runtime.
	atomicMu *substrate.Mutex

	closeOnce sync.Once
	closeErr  error
	closePan  *PanicError

	regions        atomic.Int64
	threads        atomic.Int64
	tasksCreated   atomic.Int64
	tasksCompleted atomic.Int64
	tasksActive    atomic.Int64
}

// New builds a runtime. The root context it returns from [Runtime.Root]
// belongs to a one-thread team, so every construct is well defined
// outside of any parallel region.
func New(opts ...Option) *Runtime {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sub == nil {
		cfg.sub = &substrate.Goroutines{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt := &Runtime{
		cfg:      cfg,
		sub:      cfg.sub,
		ctx:      ctx,
		cancel:   cancel,
		atomicMu: substrate.NewMutex(),
	}

	icv := ICV{
		NThreads:        cfg.numThreads,
		Dynamic:         cfg.dynamic,
		Nested:          cfg.nested,
		MaxActiveLevels: cfg.maxActiveLevels,
	}
	team := newTeam(rt, nil, 1, 0)
	team.ctx, team.cancel = context.WithCancelCause(ctx)
	rt.root = team.newMember(0, icv, team.ctx)

	return rt
}

var (
	defaultMu sync.Mutex
	defaultRT *Runtime
)

// Default returns the process-wide runtime, creating it on first use.
// Concurrent first calls construct exactly one instance.
func Default() *Runtime {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRT == nil {
		defaultRT = New()
	}
	return defaultRT
}

// Shutdown closes the process-wide runtime, if one exists, and returns
// the result of [Runtime.Close]. A later [Default] call starts a fresh one.
func Shutdown() error {
	defaultMu.Lock()
	rt := defaultRT
	defaultRT = nil
	defaultMu.Unlock()

	if rt == nil {
		return nil
	}
	return rt.Close()
}

// Parallel runs fn as a parallel region of the process-wide runtime.
func Parallel(n int, fn RegionFunc) error {
	return Default().Parallel(n, fn)
}

// Root returns the root thread context. It lives as long as the runtime
// and must only be used from one goroutine at a time.
func (rt *Runtime) Root() *Thread {
	return rt.root
}

// Parallel runs fn as a parallel region forked from the root context.
// See [Thread.Parallel].
func (rt *Runtime) Parallel(n int, fn RegionFunc) error {
	return rt.root.Parallel(n, fn)
}

// Close waits for the explicit tasks created from the root context,
// then shuts the runtime down. It returns the errors those tasks
// reported. If one of them panicked and [WithPanicAsError] was not set,
// Close re-panics with the captured *PanicError.
//
// Close is idempotent; subsequent calls return the same result.
func (rt *Runtime) Close() error {
	rt.closeOnce.Do(func() {
		rt.closed.Store(true)
		team := rt.root.team
		team.tasks.wait()
		rt.closeErr, rt.closePan = team.finalize()
		team.cancel(ErrClosed)
		rt.cancel()
	})

	if rt.closePan != nil {
		panic(rt.closePan)
	}
	return rt.closeErr
}

// Closed reports whether Close has been called.
func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

// Stats returns a point-in-time snapshot of runtime activity.
// Safe to call concurrently.
func (rt *Runtime) Stats() Stats {
	return Stats{
		Regions:        rt.regions.Load(),
		Threads:        rt.threads.Load(),
		TasksCreated:   rt.tasksCreated.Load(),
		TasksCompleted: rt.tasksCompleted.Load(),
		TasksActive:    rt.tasksActive.Load(),
	}
}

// NumProcs returns the number of processors available to the process.
func NumProcs() int {
	return runtime.NumCPU()
}

var epoch = time.Now()

// Wtime returns elapsed wall clock time in seconds since an arbitrary,
// fixed point in the past.
func Wtime() float64 {
	return time.Since(epoch).Seconds()
}

// Wtick returns the precision of [Wtime] in seconds.
func Wtick() float64 {
	return 1e-9
}

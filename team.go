package hpxmp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gitczfranks/hpxMP/substrate"
)

// RegionFunc is the body of a parallel region. Every team member runs it
// with its own [Thread]. A non-nil error is recorded according to the
// runtime's [Policy].
type RegionFunc func(t *Thread) error

// Team is the set of threads executing one parallel region instance.
// It owns the shared state of the region's constructs: the barrier, the
// single counter, critical locks, the copyprivate and reduction slots,
// and the shared cursors of work-sharing loops.
type Team struct {
	rt     *Runtime
	parent *Thread
	size   int
	level  int

	ctx    context.Context
	cancel context.CancelCauseFunc

	threads []*Thread
	barrier *substrate.Barrier

	singleMu sync.Mutex
	single   uint64

	critMu sync.Mutex
	crit   map[string]*substrate.Mutex

	// Valid only between matched single-copy start/end or within one
	// reduction; barriers order every access.
	copyprivate any
	reduceSlots []any

	loopMu sync.Mutex
	loops  map[uint64]*sharedLoop

	deps  depTracker
	tasks waitCounter

	errOnce  sync.Once
	errMu    sync.Mutex
	firstErr *TaskError
	errs     []*TaskError

	panicMu sync.Mutex
	panics  []*PanicError
}

func newTeam(rt *Runtime, parent *Thread, size, level int) *Team {
	return &Team{
		rt:          rt,
		parent:      parent,
		size:        size,
		level:       level,
		threads:     make([]*Thread, size),
		barrier:     substrate.NewBarrier(size),
		crit:        make(map[string]*substrate.Mutex),
		reduceSlots: make([]any, size),
		loops:       make(map[uint64]*sharedLoop),
	}
}

// newMember builds the context of thread num. Each member writes only
// its own slot of threads.
func (tm *Team) newMember(num int, icv ICV, ctx context.Context) *Thread {
	th := &Thread{
		rt:   tm.rt,
		team: tm,
		num:  num,
		gid:  tm.rt.nextGID.Add(1) - 1,
		icv:  icv,
		ctx:  ctx,
	}
	if tm.parent != nil {
		th.parent = tm.parent
	}
	tm.threads[num] = th
	return th
}

// Size returns the number of threads in the team.
func (tm *Team) Size() int {
	return tm.size
}

// Level returns the nesting level of the region; the root team is 0.
func (tm *Team) Level() int {
	return tm.level
}

// Cancelled reports whether the team has been cancelled.
func (tm *Team) Cancelled() bool {
	return tm.ctx.Err() != nil
}

// Parallel forks a team that runs fn on every member and joins when all
// members returned and every explicit task created inside the region
// completed.
//
// n is the requested team size; n <= 0 takes a size pushed with
// [Thread.PushNumThreads] or, failing that, the thread's ICV. The actual
// size is further limited by the nesting ICVs, by the available
// parallelism when dynamic adjustment is enabled, and by the thread limit.
//
// Parallel returns the errors recorded by the team under the runtime's
// [Policy]. If a member or task panicked and [WithPanicAsError] was not
// set, Parallel re-panics with the captured *PanicError after the join.
// A substrate that fails to fork aborts the region and Parallel returns a
// *FatalError wrapping [ErrSpawn].
func (t *Thread) Parallel(n int, fn RegionFunc) error {
	if fn == nil {
		panic("hpxmp: Parallel requires a non-nil region")
	}
	rt := t.rt
	if rt.closed.Load() {
		return ErrClosed
	}

	size := t.forkSize(n)
	icv := t.icv
	icv.ActiveLevels++

	tm := newTeam(rt, t, size, t.team.level+1)
	tm.ctx, tm.cancel = context.WithCancelCause(t.ctx)
	defer tm.cancel(nil)

	start := time.Now()
	handles, err := rt.sub.Spawn(tm.ctx, size, func(ctx context.Context, i int) error {
		th := tm.newMember(i, icv, ctx)
		if err := fn(th); err != nil {
			tm.recordError(th.info(), err)
		}
		return nil
	})
	if err != nil {
		return &FatalError{Op: "parallel", Err: fmt.Errorf("%w: %w", ErrSpawn, err)}
	}

	rt.regions.Add(1)
	rt.threads.Add(int64(size))
	rt.emit(Event{Kind: EventFork, Level: tm.level, Thread: t.num, TeamSize: size})

	for i, h := range handles {
		<-h.Done()
		if pe := h.Panic(); pe != nil {
			tm.recordPanic(TaskInfo{Thread: i, Level: tm.level}, pe)
		}
	}
	tm.tasks.wait()

	err, pan := tm.finalize()
	rt.emit(Event{
		Kind:     EventJoin,
		Level:    tm.level,
		Thread:   t.num,
		TeamSize: size,
		Err:      err,
		Duration: time.Since(start),
	})
	if pan != nil {
		panic(pan)
	}
	return err
}

func (t *Thread) forkSize(n int) int {
	req := n
	if req <= 0 {
		req = t.pushed
	}
	t.pushed = 0
	if req <= 0 {
		req = t.icv.NThreads
	}

	if t.icv.ActiveLevels >= 1 && !t.icv.Nested {
		return 1
	}
	if t.icv.ActiveLevels >= t.icv.MaxActiveLevels {
		return 1
	}
	if t.icv.Dynamic {
		req = min(req, available())
	}
	req = min(req, t.rt.cfg.threadLimit)
	return max(req, 1)
}

// recordError records err according to the configured policy.
func (tm *Team) recordError(info TaskInfo, err error) {
	te := &TaskError{Task: info, Err: err}

	switch tm.rt.cfg.policy {
	case FailFast:
		tm.errOnce.Do(func() {
			tm.errMu.Lock()
			tm.firstErr = te
			tm.errMu.Unlock()
			tm.abort(err)
		})
	case Collect:
		tm.errMu.Lock()
		tm.errs = append(tm.errs, te)
		tm.errMu.Unlock()
	}
}

// recordPanic stores a captured panic for re-raising at the join, or
// records it as an ordinary error under WithPanicAsError. Either way the
// team is cancelled so that no member stays blocked on a sibling that
// will never arrive.
func (tm *Team) recordPanic(info TaskInfo, pe *PanicError) {
	if tm.rt.cfg.panicAsErr {
		tm.recordError(info, pe)
		tm.abort(pe)
		return
	}
	tm.panicMu.Lock()
	tm.panics = append(tm.panics, pe)
	tm.panicMu.Unlock()
	tm.abort(pe)
}

// abort cancels a forked team. The root team lives as long as the
// runtime, so its failures are only reported by Close.
func (tm *Team) abort(cause error) {
	if tm.parent != nil {
		tm.cancel(cause)
	}
}

// finalize returns the aggregated error and the first captured panic.
// It must run after every member and task of the team finished.
func (tm *Team) finalize() (error, *PanicError) {
	var pan *PanicError
	tm.panicMu.Lock()
	if len(tm.panics) > 0 {
		pan = tm.panics[0]
	}
	tm.panicMu.Unlock()

	tm.errMu.Lock()
	defer tm.errMu.Unlock()

	switch tm.rt.cfg.policy {
	case FailFast:
		if tm.firstErr != nil {
			return tm.firstErr, pan
		}
	case Collect:
		if len(tm.errs) > 0 {
			errs := make([]error, 0, len(tm.errs))
			for _, te := range tm.errs {
				errs = append(errs, te)
			}
			return errors.Join(errs...), pan
		}
	}
	return nil, pan
}

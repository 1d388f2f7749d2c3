package hpxmp

import (
	"context"
	"math"
	"sync"
)

// dispatchState is one thread's view of the loop it is executing.
// Iterations are numbered 0..trip-1; iteration i has value lb + i*st.
type dispatchState struct {
	kind  ScheduleKind
	order bool
	lb    int64
	st    int64
	chunk int64
	trip  uint64
	seq   uint64

	shared *sharedLoop

	// static: index of the next round-robin chunk this thread owns.
	next uint64
	done bool

	// ordered: the claimed chunk [curLo, curHi) and the first iteration of
	// it whose ordered region has not run yet.
	curLo, curHi uint64
	ordNext      uint64
	pending      bool
}

// sharedLoop is the team-wide state of one loop instance: the cursor of
// dynamic and guided schedules and the ordered token.
type sharedLoop struct {
	mu   sync.Mutex
	next uint64

	ordMu   sync.Mutex
	ordIter uint64
	ordWake chan struct{}

	retired int
}

// tripCount returns the number of iterations of lb..ub by st. ok is false
// when the count does not fit in a uint64, which only a unit stride over
// the whole int64 range reaches.
func tripCount(lb, ub, st int64) (trip uint64, ok bool) {
	var span, step uint64
	switch {
	case st > 0 && lb <= ub:
		span, step = uint64(ub)-uint64(lb), uint64(st)
	case st < 0 && lb >= ub:
		span, step = uint64(lb)-uint64(ub), uint64(-st)
	default:
		return 0, true
	}
	if span/step == math.MaxUint64 {
		return 0, false
	}
	return span/step + 1, true
}

// DispatchInit starts a work-shared loop over lb..ub inclusive with
// stride st. Every team member must call it for the same loop with the
// same arguments, then claim chunks with [Thread.DispatchNext] until it
// reports exhaustion.
//
// A chunk of 0 means: one contiguous block per thread for [SchedStatic],
// single iterations for [SchedDynamic] and a minimum of one iteration for
// [SchedGuided]. [SchedRuntime] takes the runtime's configured schedule;
// the Ordered flag of s is kept. A stride of 0 or a negative chunk is a
// usage violation.
func (t *Thread) DispatchInit(s Schedule, lb, ub, st, chunk int64) {
	t.requireImplicit("loop")
	if st == 0 {
		fatalf("loop", ErrUsage, "zero loop stride")
	}
	if chunk < 0 {
		fatalf("loop", ErrUsage, "negative chunk size %d", chunk)
	}
	if !s.Kind.valid() {
		fatalf("loop", ErrUsage, "unknown schedule kind %d", s.Kind)
	}

	trip, ok := tripCount(lb, ub, st)
	if !ok {
		fatalf("loop", ErrUsage, "iteration count of %d..%d by %d overflows", lb, ub, st)
	}

	kind := s.Kind
	if kind == SchedRuntime {
		kind, chunk = t.rt.cfg.schedule.Kind, t.rt.cfg.scheduleChunk
	}

	t.loopSeq++
	ds := &dispatchState{
		kind:  kind,
		order: s.Ordered,
		lb:    lb,
		st:    st,
		chunk: chunk,
		trip:  trip,
		seq:   t.loopSeq,
	}
	if ds.kind != SchedStatic || ds.order {
		ds.shared = t.team.sharedLoop(ds.seq)
	}
	if ds.kind == SchedStatic && ds.chunk > 0 {
		ds.next = uint64(t.num)
	}
	t.loop = ds
}

// DispatchNext claims the next chunk of the current loop and returns its
// first and last iteration values, inclusive, and the stride. ok is false
// once the thread's share of the loop is exhausted or the team has been
// cancelled. For ordered loops the previous chunk is finished first, see
// [Thread.DispatchFini].
func (t *Thread) DispatchNext() (lb, ub, st int64, ok bool) {
	ds := t.loop
	if ds == nil {
		fatalf("loop", ErrUsage, "no active loop")
	}
	if ds.done {
		return 0, 0, 0, false
	}
	if ds.pending {
		t.DispatchFini()
	}

	var lo, hi uint64
	if t.Cancelled() {
		ok = false
	} else {
		lo, hi, ok = t.claim(ds)
	}
	if !ok {
		t.retire(ds)
		return 0, 0, 0, false
	}

	if ds.order {
		ds.curLo, ds.curHi, ds.ordNext = lo, hi, lo
		ds.pending = true
	}
	first := ds.lb + int64(lo)*ds.st
	last := ds.lb + int64(hi-1)*ds.st
	return first, last, ds.st, true
}

// claim returns the next chunk [lo, hi) in iteration numbers.
func (t *Thread) claim(ds *dispatchState) (lo, hi uint64, ok bool) {
	n := uint64(t.team.size)

	switch ds.kind {
	case SchedStatic:
		if ds.chunk == 0 {
			if ds.next > 0 {
				return 0, 0, false
			}
			ds.next = 1
			lo, hi = staticBlock(ds.trip, n, uint64(t.num))
			return lo, hi, lo < hi
		}
		c := uint64(ds.chunk)
		chunks := ceilDiv(ds.trip, c)
		if ds.next >= chunks {
			return 0, 0, false
		}
		lo = ds.next * c
		if chunks-ds.next > n {
			ds.next += n
		} else {
			ds.next = chunks
		}
		return lo, lo + min(c, ds.trip-lo), true

	case SchedDynamic:
		c := max(uint64(ds.chunk), 1)
		sh := ds.shared
		sh.mu.Lock()
		defer sh.mu.Unlock()
		if sh.next >= ds.trip {
			return 0, 0, false
		}
		lo = sh.next
		hi = lo + min(c, ds.trip-lo)
		sh.next = hi
		return lo, hi, true

	case SchedGuided:
		c := max(uint64(ds.chunk), 1)
		sh := ds.shared
		sh.mu.Lock()
		defer sh.mu.Unlock()
		if sh.next >= ds.trip {
			return 0, 0, false
		}
		rem := ds.trip - sh.next
		size := min(max(c, ceilDiv(rem, n)), rem)
		lo = sh.next
		hi = lo + size
		sh.next = hi
		return lo, hi, true
	}
	return 0, 0, false
}

// ceilDiv returns ceil(a/b) without overflowing for a near the maximum.
func ceilDiv(a, b uint64) uint64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

// staticBlock returns thread k's contiguous block when trip iterations
// are split over n threads: the first trip%n threads get one extra.
func staticBlock(trip, n, k uint64) (lo, hi uint64) {
	q, r := trip/n, trip%n
	if k < r {
		lo = k * (q + 1)
		return lo, lo + q + 1
	}
	lo = r*(q+1) + (k-r)*q
	return lo, lo + q
}

// DispatchFini finishes the current chunk of an ordered loop. It waits
// for the thread's turn and passes the ordered token past every
// iteration of the chunk whose ordered region did not run. It is a no-op
// for loops without ordered regions.
func (t *Thread) DispatchFini() {
	ds := t.loop
	if ds == nil || !ds.order || !ds.pending {
		return
	}
	ds.pending = false
	if ds.ordNext >= ds.curHi {
		return
	}
	sh := ds.shared
	if sh.waitTurn(t.ctx, ds.ordNext) != nil {
		return
	}
	sh.pass(ds.curHi)
}

func (t *Thread) retire(ds *dispatchState) {
	ds.done = true
	if ds.shared == nil {
		return
	}
	tm := t.team
	tm.loopMu.Lock()
	defer tm.loopMu.Unlock()
	ds.shared.retired++
	if ds.shared.retired == tm.size {
		delete(tm.loops, ds.seq)
	}
}

// sharedLoop returns the team state of loop instance seq, creating it
// on the first member's arrival.
func (tm *Team) sharedLoop(seq uint64) *sharedLoop {
	tm.loopMu.Lock()
	defer tm.loopMu.Unlock()

	sh, ok := tm.loops[seq]
	if !ok {
		sh = &sharedLoop{ordWake: make(chan struct{})}
		tm.loops[seq] = sh
	}
	return sh
}

// waitTurn blocks until the ordered token reaches iteration i.
func (sh *sharedLoop) waitTurn(ctx context.Context, i uint64) error {
	for {
		sh.ordMu.Lock()
		if sh.ordIter >= i {
			sh.ordMu.Unlock()
			return nil
		}
		wake := sh.ordWake
		sh.ordMu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}

// pass moves the ordered token to iteration i and wakes the waiters.
func (sh *sharedLoop) pass(i uint64) {
	sh.ordMu.Lock()
	sh.ordIter = i
	wake := sh.ordWake
	sh.ordWake = make(chan struct{})
	sh.ordMu.Unlock()
	close(wake)
}

// OrderedStart blocks until every earlier iteration of the loop has
// passed its ordered region.
func (t *Thread) OrderedStart() {
	ds := t.orderedLoop()
	if ds.ordNext >= ds.curHi {
		fatalf("ordered", ErrUsage, "more ordered regions than iterations in the chunk")
	}
	_ = ds.shared.waitTurn(t.ctx, ds.ordNext)
}

// OrderedEnd hands the ordered token to the next iteration.
func (t *Thread) OrderedEnd() {
	ds := t.orderedLoop()
	ds.ordNext++
	if t.Cancelled() {
		return
	}
	ds.shared.pass(ds.ordNext)
}

// Ordered runs fn as the ordered region of the current iteration.
func (t *Thread) Ordered(fn func()) {
	t.OrderedStart()
	defer t.OrderedEnd()
	fn()
}

func (t *Thread) orderedLoop() *dispatchState {
	ds := t.loop
	if ds == nil || !ds.order || !ds.pending {
		fatalf("ordered", ErrUsage, "ordered region outside of a claimed chunk of an ordered loop")
	}
	return ds
}

// finishLoop retires the thread from the current loop if it still
// holds a share of it.
func (t *Thread) finishLoop() {
	ds := t.loop
	if ds == nil {
		return
	}
	t.DispatchFini()
	if !ds.done {
		t.retire(ds)
	}
	t.loop = nil
}

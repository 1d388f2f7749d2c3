package hpxmp

// LoopStart starts a work-shared loop over [lb, ub) with stride st and
// claims the first chunk. ub is exclusive in the direction of st: the
// loop runs while i < ub for a positive stride and while i > ub for a
// negative one. The returned chunk [lo, hi) follows the same convention.
//
//	for lo, hi, ok := t.LoopStart(hpxmp.Dynamic, 0, n, 1, 4); ok; lo, hi, ok = t.LoopNext() {
//	    for i := lo; i < hi; i++ {
//	        work(i)
//	    }
//	}
//	t.LoopEnd()
func (t *Thread) LoopStart(s Schedule, lb, ub, st, chunk int64) (lo, hi int64, ok bool) {
	if st == 0 {
		fatalf("loop", ErrUsage, "zero loop stride")
	}
	t.DispatchInit(s, lb, inclusive(ub, st), st, chunk)
	return t.LoopNext()
}

// LoopNext claims the next chunk of the loop started with LoopStart.
func (t *Thread) LoopNext() (lo, hi int64, ok bool) {
	first, last, st, ok := t.DispatchNext()
	if !ok {
		return 0, 0, false
	}
	return first, exclusive(last, st), true
}

// LoopEnd finishes the loop and waits at the team barrier.
func (t *Thread) LoopEnd() {
	t.finishLoop()
	t.Barrier()
}

// LoopEndNowait finishes the loop without a barrier.
func (t *Thread) LoopEndNowait() {
	t.finishLoop()
}

// LoopEndCancel finishes the loop at a cancellation barrier and reports
// whether the team was cancelled.
func (t *Thread) LoopEndCancel() bool {
	t.finishLoop()
	return t.CancelBarrier()
}

func inclusive(ub, st int64) int64 {
	if st > 0 {
		return ub - 1
	}
	return ub + 1
}

func exclusive(ub, st int64) int64 {
	if st > 0 {
		return ub + 1
	}
	return ub - 1
}

// For runs body for every iteration of [lb, ub) with stride st, sharing
// the iterations among the team under schedule s, and ends at a barrier.
// body runs on the calling member; for ordered schedules it may call
// [Thread.Ordered].
func (t *Thread) For(s Schedule, lb, ub, st, chunk int64, body func(i int64)) {
	for lo, hi, ok := t.LoopStart(s, lb, ub, st, chunk); ok; lo, hi, ok = t.LoopNext() {
		if st > 0 {
			for i := lo; i < hi; i += st {
				body(i)
			}
		} else {
			for i := lo; i > hi; i += st {
				body(i)
			}
		}
	}
	t.LoopEnd()
}

// ParallelFor forks a team and shares the iterations of [lb, ub) among
// it. See [Thread.For].
func (rt *Runtime) ParallelFor(s Schedule, lb, ub, st, chunk int64, body func(t *Thread, i int64)) error {
	return rt.Parallel(0, func(t *Thread) error {
		t.For(s, lb, ub, st, chunk, func(i int64) { body(t, i) })
		return nil
	})
}

// SectionsStart starts a sections construct of count sections and
// returns the 1-based id of the first section the caller runs, or 0 if
// there is none left.
func (t *Thread) SectionsStart(count int) int {
	t.DispatchInit(Dynamic, 1, int64(count), 1, 1)
	return t.SectionsNext()
}

// SectionsNext returns the id of the next section to run, 0 when done.
func (t *Thread) SectionsNext() int {
	lo, _, _, ok := t.DispatchNext()
	if !ok {
		return 0
	}
	return int(lo)
}

// SectionsEnd finishes the construct and waits at the team barrier.
func (t *Thread) SectionsEnd() {
	t.LoopEnd()
}

// SectionsEndNowait finishes the construct without a barrier.
func (t *Thread) SectionsEndNowait() {
	t.LoopEndNowait()
}

// Sections runs each of fns exactly once, spread over the team, and
// waits at the team barrier.
func (t *Thread) Sections(fns ...func()) {
	for id := t.SectionsStart(len(fns)); id != 0; id = t.SectionsNext() {
		fns[id-1]()
	}
	t.SectionsEnd()
}

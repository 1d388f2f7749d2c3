package hpxmp

import "runtime"

// ICV holds the internal control variables of one thread context. A
// forked team starts from a copy of the forking thread's ICVs with
// ActiveLevels incremented; setters only affect the calling context and
// the teams it forks afterwards.
type ICV struct {
	NThreads        int
	Dynamic         bool
	Nested          bool
	ActiveLevels    int
	MaxActiveLevels int
}

// ICV returns a copy of the thread's control variables.
func (t *Thread) ICV() ICV {
	return t.icv
}

// MaxThreads returns the team size a region forked from t without an
// explicit request would ask for.
func (t *Thread) MaxThreads() int {
	return t.icv.NThreads
}

// SetNumThreads sets the default team size of regions forked from t.
// It panics if n <= 0.
func (t *Thread) SetNumThreads(n int) {
	if n <= 0 {
		panic("hpxmp: SetNumThreads requires n > 0")
	}
	t.icv.NThreads = n
}

// PushNumThreads requests n threads for the next region forked from t
// only. A later explicit size passed to Parallel still wins; the request
// is consumed by that fork either way. It panics if n <= 0.
func (t *Thread) PushNumThreads(n int) {
	if n <= 0 {
		panic("hpxmp: PushNumThreads requires n > 0")
	}
	t.pushed = n
}

// SetDynamic toggles dynamic adjustment of team sizes.
func (t *Thread) SetDynamic(on bool) {
	t.icv.Dynamic = on
}

// Dynamic reports whether dynamic adjustment is enabled.
func (t *Thread) Dynamic() bool {
	return t.icv.Dynamic
}

// SetNested toggles nested parallelism.
func (t *Thread) SetNested(on bool) {
	t.icv.Nested = on
}

// Nested reports whether nested regions may get more than one thread.
func (t *Thread) Nested() bool {
	return t.icv.Nested
}

// SetMaxActiveLevels bounds the depth of nested active regions.
// It panics if n <= 0.
func (t *Thread) SetMaxActiveLevels(n int) {
	if n <= 0 {
		panic("hpxmp: SetMaxActiveLevels requires n > 0")
	}
	t.icv.MaxActiveLevels = n
}

// MaxActiveLevels returns the nesting bound for active regions.
func (t *Thread) MaxActiveLevels() int {
	return t.icv.MaxActiveLevels
}

// ThreadLimit returns the hard maximum team size.
func (t *Thread) ThreadLimit() int {
	return t.rt.cfg.threadLimit
}

// Schedule returns the schedule and chunk that [SchedRuntime] loops use.
func (t *Thread) Schedule() (Schedule, int64) {
	return t.rt.cfg.schedule, t.rt.cfg.scheduleChunk
}

// available is the parallelism a dynamically adjusted fork may use.
func available() int {
	return runtime.GOMAXPROCS(0)
}

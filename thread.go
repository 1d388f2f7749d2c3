package hpxmp

import "context"

// Thread is the execution context of one team member or of one explicit
// task. Every construct is a method on it.
//
// A Thread is bound to the goroutine it was handed to and must not be
// shared: pass it down the call chain, never across goroutines.
type Thread struct {
	rt     *Runtime
	team   *Team
	num    int
	gid    int64
	parent *Thread
	icv    ICV
	pushed int
	ctx    context.Context

	// task is set for the context of an explicit task.
	task *Task

	singleCount uint64
	loopSeq     uint64
	loop        *dispatchState

	taskgroup *Taskgroup
	children  []*Task
	deps      *depTracker
}

// Num returns the thread number within the current team, in [0, team size).
// Inside an explicit task it is the number of the thread that created it.
func (t *Thread) Num() int {
	return t.num
}

// NumThreads returns the size of the current team.
func (t *Thread) NumThreads() int {
	return t.team.size
}

// GlobalID returns the runtime-wide identifier of the thread.
func (t *Thread) GlobalID() int64 {
	return t.gid
}

// Team returns the team the thread belongs to.
func (t *Thread) Team() *Team {
	return t.team
}

// Parent returns the thread that forked the current team, or nil at the
// root.
func (t *Thread) Parent() *Thread {
	return t.parent
}

// Runtime returns the runtime the thread belongs to.
func (t *Thread) Runtime() *Runtime {
	return t.rt
}

// Context returns the context of the current team member. It is done
// when the team is cancelled, the runtime is closed, or the region failed
// under [FailFast].
func (t *Thread) Context() context.Context {
	return t.ctx
}

// Level returns the nesting depth of enclosing parallel regions, active
// or not.
func (t *Thread) Level() int {
	return t.team.level
}

// ActiveLevel returns the number of enclosing regions forked on this path.
func (t *Thread) ActiveLevel() int {
	return t.icv.ActiveLevels
}

// InParallel reports whether the thread is inside an active region with
// more than one thread.
func (t *Thread) InParallel() bool {
	for tm := t.team; tm != nil; {
		if tm.size > 1 {
			return true
		}
		if tm.parent == nil {
			break
		}
		tm = tm.parent.team
	}
	return false
}

// IsExplicitTask reports whether t is the context of an explicit task.
func (t *Thread) IsExplicitTask() bool {
	return t.task != nil
}

// Cancel cancels the current team. Members blocked in a barrier or an
// ordered region return, loops stop handing out chunks, and deferred
// tasks that have not started are skipped. A nil cause defaults to
// [ErrCancelled].
func (t *Thread) Cancel(cause error) {
	if cause == nil {
		cause = ErrCancelled
	}
	if t.team.ctx.Err() == nil {
		t.rt.emit(Event{Kind: EventCancel, Level: t.team.level, Thread: t.num, Err: cause})
	}
	t.team.cancel(cause)
}

// Cancelled reports whether the current team has been cancelled.
func (t *Thread) Cancelled() bool {
	return t.ctx.Err() != nil
}

// CancelCause returns the cause recorded by [Thread.Cancel], nil if the
// team is still running.
func (t *Thread) CancelCause() error {
	return context.Cause(t.ctx)
}

func (t *Thread) info() TaskInfo {
	return TaskInfo{Thread: t.num, Level: t.team.level, Explicit: t.task != nil}
}

// requireImplicit rejects constructs that bind to the team from inside
// an explicit task.
func (t *Thread) requireImplicit(op string) {
	if t.task != nil {
		fatalf(op, ErrUsage, "%s is not allowed inside an explicit task", op)
	}
}

package hpxmp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gitczfranks/hpxMP/substrate"
)

// TaskFunc is the body of an explicit task. It receives the task's own
// context, from which it may create further tasks, taskgroups or nested
// regions, but not team constructs such as barriers.
type TaskFunc func(t *Thread) error

// Task is an explicit task. It is created with [Thread.NewTask] or
// [Thread.Task] and runs exactly once, unless its team is cancelled
// before it starts.
type Task struct {
	fn     TaskFunc
	self   *Thread
	team   *Team
	group  *Taskgroup
	domain *depTracker
	deps   []Dep
	inline bool

	submitted atomic.Bool
	npred     atomic.Int32
	ready     chan struct{}

	mu         sync.Mutex
	finished   bool
	successors []*Task

	done chan struct{}
	err  error
}

// TaskOption configures the submission of a task.
type TaskOption func(*Task)

// If makes the task undeferred when cond is false: it runs on the
// creating context, once its dependencies are satisfied, before the
// submission returns.
func If(cond bool) TaskOption {
	return func(tk *Task) {
		tk.inline = !cond
	}
}

// Depend declares the addresses the task reads and writes. The task does
// not start before every earlier task of the same dependency domain that
// conflicts with one of them has completed. Addresses repeated in deps
// are merged, a write taking precedence.
func Depend(deps ...Dep) TaskOption {
	return func(tk *Task) {
		tk.deps = append(tk.deps, deps...)
	}
}

// NewTask allocates a task running fn without submitting it.
func (t *Thread) NewTask(fn TaskFunc) *Task {
	if fn == nil {
		panic("hpxmp: NewTask requires a non-nil function")
	}
	return &Task{
		fn:    fn,
		team:  t.team,
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Task creates and submits a task running fn.
func (t *Thread) Task(fn TaskFunc, opts ...TaskOption) *Task {
	tk := t.NewTask(fn)
	t.Submit(tk, opts...)
	return tk
}

// Submit hands tk to the scheduler. The task counts toward the innermost
// taskgroup of t and toward the team's outstanding tasks, and it is a
// child of t for [Thread.TaskWait]. Submitting a task twice, or from a
// context of another team, is a usage violation.
func (t *Thread) Submit(tk *Task, opts ...TaskOption) {
	if tk.team != t.team {
		fatalf("task", ErrUsage, "task submitted from another team")
	}
	if !tk.submitted.CompareAndSwap(false, true) {
		fatalf("task", ErrUsage, "task submitted twice")
	}
	for _, opt := range opts {
		opt(tk)
	}

	tk.group = t.taskgroup
	tk.self = &Thread{
		rt:        t.rt,
		team:      t.team,
		num:       t.num,
		gid:       t.gid,
		parent:    t.parent,
		icv:       t.icv,
		ctx:       t.team.ctx,
		task:      tk,
		taskgroup: t.taskgroup,
	}

	if tk.group != nil {
		tk.group.pending.add(1)
	}
	t.team.tasks.add(1)
	t.rt.tasksCreated.Add(1)
	t.addChild(tk)

	// The guard keeps predecessors completing during registration from
	// launching the task early.
	tk.npred.Store(1)
	if len(tk.deps) > 0 {
		tk.deps = mergeDeps(tk.deps)
		tk.domain = t.depDomain()
		tk.domain.register(tk)
	}
	if tk.npred.Add(-1) == 0 {
		tk.launch()
	}

	if tk.inline {
		<-tk.ready
		tk.execute()
	}
}

// launch starts a task whose predecessors all completed.
func (tk *Task) launch() {
	if tk.inline {
		close(tk.ready)
		return
	}
	tk.team.rt.sub.Go(tk.execute)
}

func (tk *Task) execute() {
	tm := tk.team
	rt := tm.rt
	info := tk.self.info()

	if tm.ctx.Err() != nil {
		tk.err = context.Cause(tm.ctx)
		rt.emit(Event{Kind: EventTaskSkipped, Level: tm.level, Thread: info.Thread, Err: tk.err})
		tk.complete()
		return
	}

	rt.tasksActive.Add(1)
	rt.emit(Event{Kind: EventTaskStart, Level: tm.level, Thread: info.Thread})
	start := time.Now()

	var err error
	if pe := substrate.Capture(func() { err = tk.fn(tk.self) }); pe != nil {
		tm.recordPanic(info, pe)
		err = pe
	} else if err != nil {
		tm.recordError(info, err)
	}
	tk.err = err

	rt.tasksActive.Add(-1)
	rt.emit(Event{
		Kind:     EventTaskDone,
		Level:    tm.level,
		Thread:   info.Thread,
		Err:      err,
		Duration: time.Since(start),
	})
	tk.complete()
}

// complete runs the completion bookkeeping: it releases the task's
// dependency entries, wakes successors and drops the pending counts.
func (tk *Task) complete() {
	if tk.domain != nil {
		tk.domain.release(tk)
	}

	tk.mu.Lock()
	tk.finished = true
	succ := tk.successors
	tk.successors = nil
	tk.mu.Unlock()

	close(tk.done)
	for _, s := range succ {
		if s.npred.Add(-1) == 0 {
			s.launch()
		}
	}

	tk.team.rt.tasksCompleted.Add(1)
	if tk.group != nil {
		tk.group.pending.done()
	}
	tk.team.tasks.done()
}

// Done returns a channel that is closed when the task completed or was
// skipped.
func (tk *Task) Done() <-chan struct{} {
	return tk.done
}

// Err returns the task's error: a *PanicError if it panicked, the
// cancellation cause if it was skipped. It must only be called after
// Done is closed.
func (tk *Task) Err() error {
	return tk.err
}

// TaskWait blocks until every task created directly by t has completed.
// Tasks those tasks created in turn are not waited for.
func (t *Thread) TaskWait() {
	for _, c := range t.children {
		<-c.done
	}
	t.children = nil
}

// TaskYield lets other work run before the caller continues.
func (t *Thread) TaskYield() {
	t.rt.sub.Yield()
}

// Children are pruned once this many accumulated between waits.
const childPruneLen = 64

func (t *Thread) addChild(tk *Task) {
	if len(t.children) >= childPruneLen {
		live := t.children[:0]
		for _, c := range t.children {
			select {
			case <-c.done:
			default:
				live = append(live, c)
			}
		}
		clear(t.children[len(live):])
		t.children = live
	}
	t.children = append(t.children, tk)
}

// depDomain returns the dependency domain of tasks created by t: the team
// for implicit tasks, the creating task otherwise.
func (t *Thread) depDomain() *depTracker {
	if t.task == nil {
		return &t.team.deps
	}
	if t.deps == nil {
		t.deps = &depTracker{}
	}
	return t.deps
}

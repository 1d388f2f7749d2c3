package hpxmp

// Taskgroup scopes the completion of every task created inside it,
// including tasks those tasks create, and carries the task reductions
// registered for it.
type Taskgroup struct {
	parent     *Taskgroup
	owner      *Thread
	pending    waitCounter
	reductions []reductionEntry
}

// Pending returns the number of tasks of the group not yet completed.
func (tg *Taskgroup) Pending() int64 {
	return tg.pending.load()
}

// TaskgroupStart opens a taskgroup on t. Groups nest; tasks count toward
// the innermost group of the context that creates them.
func (t *Thread) TaskgroupStart() *Taskgroup {
	tg := &Taskgroup{parent: t.taskgroup, owner: t}
	t.taskgroup = tg
	return tg
}

// TaskgroupEnd blocks until every task of the innermost group has
// completed, finishes its task reductions and closes it. Ending a group
// the context did not start is a usage violation.
func (t *Thread) TaskgroupEnd() {
	tg := t.taskgroup
	if tg == nil || tg.owner != t {
		fatalf("taskgroup", ErrUsage, "no taskgroup started by the calling context")
	}
	tg.pending.wait()
	for _, r := range tg.reductions {
		r.fini()
	}
	tg.reductions = nil
	t.taskgroup = tg.parent
}

// Taskgroup runs fn inside a new taskgroup and waits for its tasks.
func (t *Thread) Taskgroup(fn func()) {
	t.TaskgroupStart()
	fn()
	t.TaskgroupEnd()
}

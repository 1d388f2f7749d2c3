package hpxmp

import "github.com/gitczfranks/hpxMP/substrate"

// Barrier blocks until every member of the team has arrived, then until
// every explicit task the team created so far has completed. It returns
// early once the team is cancelled.
func (t *Thread) Barrier() {
	t.requireImplicit("barrier")
	t.barrier()
}

// CancelBarrier is a barrier that reports whether the team was cancelled
// by the time it returned.
func (t *Thread) CancelBarrier() bool {
	t.requireImplicit("barrier")
	t.barrier()
	return t.Cancelled()
}

// barrier implements the team barrier. Tasks are drained between two
// rendezvous so that no member proceeds, and creates new tasks, while a
// sibling still counts the outstanding ones.
func (t *Thread) barrier() {
	tm := t.team
	if err := tm.barrier.Wait(t.ctx); err != nil {
		return
	}
	tm.tasks.wait()
	_ = tm.barrier.Wait(t.ctx)
}

// rendezvous is a plain team barrier without task draining, used by
// constructs whose phases must line up exactly.
func (t *Thread) rendezvous() error {
	return t.team.barrier.Wait(t.ctx)
}

// Single returns true to exactly one member of the team for each single
// instance, false to the rest. Instances are matched by the order in
// which each member reaches them. Single implies no barrier.
func (t *Thread) Single() bool {
	t.requireImplicit("single")
	tm := t.team

	tm.singleMu.Lock()
	won := tm.single == t.singleCount
	if won {
		tm.single++
	}
	tm.singleMu.Unlock()

	t.singleCount++
	return won
}

// Master reports whether t is thread 0 of its team.
func (t *Thread) Master() bool {
	return t.num == 0
}

// CriticalStart acquires the team lock for the named critical section.
// Sections with the same name share one lock; the empty name is the
// unnamed section. It reports false, without holding the lock, if the
// team is cancelled while t waits; CriticalEnd must then be skipped.
func (t *Thread) CriticalStart(name string) bool {
	return t.critical(name).LockContext(t.ctx) == nil
}

// CriticalEnd releases the lock acquired by CriticalStart(name).
func (t *Thread) CriticalEnd(name string) {
	t.critical(name).Unlock()
}

// Critical runs fn while holding the named critical lock and reports
// whether it ran. The lock is released even if fn panics. A cancelled
// team stops waiting for the lock and fn is skipped.
func (t *Thread) Critical(name string, fn func()) bool {
	mu := t.critical(name)
	if mu.LockContext(t.ctx) != nil {
		return false
	}
	defer mu.Unlock()
	fn()
	return true
}

func (t *Thread) critical(name string) *substrate.Mutex {
	tm := t.team
	tm.critMu.Lock()
	defer tm.critMu.Unlock()

	mu, ok := tm.crit[name]
	if !ok {
		mu = substrate.NewMutex()
		tm.crit[name] = mu
	}
	return mu
}

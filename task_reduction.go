package hpxmp

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// ReductionItem is a reduction variable registered with
// [TaskReductionInit]. It is implemented by [TaskReduction].
type ReductionItem interface {
	newEntry(nth int) reductionEntry
}

type reductionEntry interface {
	fini()
}

// TaskReduction describes one reduction over tasks of a taskgroup.
// Each team thread gets a private copy of the variable; when the group
// ends, every private copy is combined into Shared.
type TaskReduction[T any] struct {
	// Shared is the reduction target. It also identifies the reduction
	// in lookups.
	Shared *T

	// Init sets a fresh private copy to the identity. Nil leaves the
	// zero value.
	Init func(priv *T)

	// Combine folds priv into shared.
	Combine func(shared, priv *T)

	// Fini releases a private copy after it was combined. Optional.
	Fini func(priv *T)

	// Lazy defers allocating a thread's copy to its first access.
	Lazy bool
}

func (r TaskReduction[T]) newEntry(nth int) reductionEntry {
	if r.Shared == nil || r.Combine == nil {
		fatalf("task reduction", ErrUsage, "reduction needs a shared variable and a combiner")
	}
	e := &reductionCell[T]{red: r, slots: make([]Private[T], nth)}
	for i := range e.slots {
		e.slots[i].init = r.Init
		if !r.Lazy {
			e.slots[i].alloc()
		}
	}
	return e
}

// Private is one thread's copy of a task reduction variable. Tasks of
// the same thread may run concurrently, so all access goes through
// Update. Slots are padded to keep threads off each other's cache lines.
type Private[T any] struct {
	mu   sync.Mutex
	val  atomic.Pointer[T]
	init func(*T)
	_    cpu.CacheLinePad
}

func (p *Private[T]) alloc() *T {
	v := p.val.Load()
	if v == nil {
		v = new(T)
		if p.init != nil {
			p.init(v)
		}
		p.val.Store(v)
	}
	return v
}

// Update runs fn on the private copy while holding the slot lock,
// allocating the copy first if needed.
func (p *Private[T]) Update(fn func(v *T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.alloc())
}

// Load returns the private copy, allocating it if needed. The caller
// must not access it concurrently with Update.
func (p *Private[T]) Load() *T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alloc()
}

type reductionCell[T any] struct {
	red   TaskReduction[T]
	slots []Private[T]
}

// owns reports whether addr is the shared variable or one of the
// private copies of the reduction.
func (c *reductionCell[T]) owns(addr *T) bool {
	if c.red.Shared == addr {
		return true
	}
	for i := range c.slots {
		if c.slots[i].val.Load() == addr {
			return true
		}
	}
	return false
}

// fini combines every allocated private copy into the shared variable in
// ascending thread order and drops the copies.
func (c *reductionCell[T]) fini() {
	for i := range c.slots {
		p := &c.slots[i]
		v := p.val.Load()
		if v == nil {
			continue
		}
		c.red.Combine(c.red.Shared, v)
		if c.red.Fini != nil {
			c.red.Fini(v)
		}
		p.val.Store(nil)
	}
}

// TaskReductionInit registers items as task reductions of t's innermost
// taskgroup, with one private copy per team thread, and returns the
// group. Calling it outside a taskgroup is a usage violation.
func TaskReductionInit(t *Thread, items ...ReductionItem) *Taskgroup {
	tg := t.taskgroup
	if tg == nil {
		fatalf("task reduction", ErrUsage, "task reduction outside of a taskgroup")
	}
	for _, it := range items {
		tg.reductions = append(tg.reductions, it.newEntry(t.team.size))
	}
	return tg
}

// TaskReductionData returns the calling thread's private copy of the
// reduction identified by shared, which may also be a private copy
// previously returned. The search starts at tg, or at t's innermost
// taskgroup when tg is nil, and walks outward through enclosing groups,
// so an inner group registering the same variable shadows outer ones.
// No match is a usage violation.
func TaskReductionData[T any](t *Thread, tg *Taskgroup, shared *T) *Private[T] {
	if tg == nil {
		tg = t.taskgroup
	}
	for g := tg; g != nil; g = g.parent {
		for _, r := range g.reductions {
			c, ok := r.(*reductionCell[T])
			if ok && c.owns(shared) {
				return &c.slots[t.num]
			}
		}
	}
	fatalf("task reduction", ErrUsage, "no task reduction registered for %p", shared)
	return nil
}

package hpxmp

import (
	"strconv"
	"sync"
)

// ThreadPrivate is a variable with one copy per thread. A thread's copy
// is created on its first Get as a copy of the original variable and
// outlives the region: the thread at the same position of a later team
// finds the value left there.
//
// Thread 0 of a team is the thread that forked it, so it shares the
// encountering thread's copy, and the initial thread uses the original
// variable itself. Explicit tasks use the copy of the thread that created
// them.
type ThreadPrivate[T any] struct {
	orig *T

	mu     sync.Mutex
	copies map[string]*T
}

// NewThreadPrivate returns threadprivate storage initialized from orig.
func NewThreadPrivate[T any](orig *T) *ThreadPrivate[T] {
	if orig == nil {
		panic("hpxmp: NewThreadPrivate requires a non-nil variable")
	}
	return &ThreadPrivate[T]{orig: orig, copies: make(map[string]*T)}
}

// Get returns t's copy, creating it on first use.
func (p *ThreadPrivate[T]) Get(t *Thread) *T {
	return p.lookup(position(t))
}

// Copyin sets every member's copy to the value of the master's copy.
// Every member of the team must call it; it returns once all copies are
// made.
func (p *ThreadPrivate[T]) Copyin(t *Thread) {
	t.requireImplicit("copyin")
	if t.num != 0 {
		src := p.lookup(position(t.parent))
		*p.Get(t) = *src
	}
	_ = t.rendezvous()
}

func (p *ThreadPrivate[T]) lookup(key string) *T {
	if key == "" {
		return p.orig
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.copies[key]
	if !ok {
		v = new(T)
		*v = *p.orig
		p.copies[key] = v
	}
	return v
}

// position names the thread t runs on by the level and number of every
// non-master step on its path from the initial thread.
func position(t *Thread) string {
	if t == nil || t.parent == nil {
		return ""
	}
	key := position(t.parent)
	if t.num == 0 {
		return key
	}
	return key + "/" + strconv.Itoa(t.team.level) + ":" + strconv.Itoa(t.num)
}

package hpxmp

import (
	"sync/atomic"

	"github.com/gitczfranks/hpxMP/substrate"
)

// Lock is a simple lock owned by the thread context that set it.
// Unsetting a lock held by another context is a usage violation.
//
// The zero value is not usable; create one with [NewLock].
type Lock struct {
	lockState
}

type lockState struct {
	mu        *substrate.Mutex
	owner     atomic.Pointer[Thread]
	destroyed atomic.Bool
}

// NewLock returns an unlocked lock.
func NewLock() *Lock {
	return &Lock{lockState{mu: substrate.NewMutex()}}
}

// Set blocks until the lock is acquired by t and reports true. If t's
// team is cancelled while it waits, Set gives up and reports false; the
// lock is then not held and must not be unset.
func (l *Lock) Set(t *Thread) bool {
	l.check("lock set")
	if l.owner.Load() == t {
		fatalf("lock set", ErrUsage, "simple lock already held by the calling context")
	}
	if l.mu.LockContext(t.ctx) != nil {
		return false
	}
	l.owner.Store(t)
	return true
}

// Unset releases a lock held by t.
func (l *Lock) Unset(t *Thread) {
	l.check("lock unset")
	if l.owner.Load() != t {
		fatalf("lock unset", ErrUsage, "lock not held by the calling context")
	}
	l.owner.Store(nil)
	l.mu.Unlock()
}

// Test acquires the lock for t if it is free and reports whether it did.
func (l *Lock) Test(t *Thread) bool {
	l.check("lock test")
	if !l.mu.TryLock() {
		return false
	}
	l.owner.Store(t)
	return true
}

// Destroy retires the lock. Destroying a held lock is a usage violation;
// so is any use after Destroy.
func (l *Lock) Destroy(t *Thread) {
	l.destroy("lock destroy")
}

func (l *lockState) destroy(op string) {
	l.check(op)
	if l.mu.Locked() {
		fatalf(op, ErrUsage, "lock is still held")
	}
	l.destroyed.Store(true)
}

func (l *lockState) check(op string) {
	if l.destroyed.Load() {
		fatalf(op, ErrUsage, "lock used after destroy")
	}
}

// NestLock is a lock its owner can set repeatedly; it is released when
// every Set has been matched by an Unset.
//
// The zero value is not usable; create one with [NewNestLock].
type NestLock struct {
	lockState

	// depth is only touched by the owner.
	depth int
}

// NewNestLock returns an unlocked nestable lock.
func NewNestLock() *NestLock {
	return &NestLock{lockState: lockState{mu: substrate.NewMutex()}}
}

// Set acquires the lock for t, or deepens t's hold on it. Like
// [Lock.Set] it reports false when t's team is cancelled before the lock
// could be acquired.
func (l *NestLock) Set(t *Thread) bool {
	l.check("nest lock set")
	if l.owner.Load() == t {
		l.depth++
		return true
	}
	if l.mu.LockContext(t.ctx) != nil {
		return false
	}
	l.owner.Store(t)
	l.depth = 1
	return true
}

// Unset drops one level of t's hold and releases the lock at zero.
func (l *NestLock) Unset(t *Thread) {
	l.check("nest lock unset")
	if l.owner.Load() != t {
		fatalf("nest lock unset", ErrUsage, "nest lock not held by the calling context")
	}
	l.depth--
	if l.depth == 0 {
		l.owner.Store(nil)
		l.mu.Unlock()
	}
}

// Test acquires or deepens the lock for t without blocking. It returns
// the new nesting depth, or 0 if another context holds the lock.
func (l *NestLock) Test(t *Thread) int {
	l.check("nest lock test")
	if l.owner.Load() == t {
		l.depth++
		return l.depth
	}
	if !l.mu.TryLock() {
		return 0
	}
	l.owner.Store(t)
	l.depth = 1
	return 1
}

// Destroy retires the lock. See [Lock.Destroy].
func (l *NestLock) Destroy(t *Thread) {
	l.destroy("nest lock destroy")
}

package substrate

import "context"

// Mutex is a mutual-exclusion lock built on a one-slot channel so that
// acquisition can also give up on context cancellation.
//
// The zero value is not usable; create one with [NewMutex].
type Mutex struct {
	ch chan struct{}
}

// NewMutex returns an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{ch: make(chan struct{}, 1)}
}

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() {
	m.ch <- struct{}{}
}

// LockContext blocks until the mutex is acquired or ctx is cancelled.
// A free mutex is acquired even if ctx is already done. Returns
// context.Cause(ctx) on cancellation, nil on success.
func (m *Mutex) LockContext(ctx context.Context) error {
	if m.TryLock() {
		return nil
	}
	select {
	case m.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// TryLock attempts to acquire the mutex without blocking.
func (m *Mutex) TryLock() bool {
	select {
	case m.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock releases the mutex. It panics if the mutex is not locked.
func (m *Mutex) Unlock() {
	select {
	case <-m.ch:
	default:
		panic("substrate: Unlock of unlocked Mutex")
	}
}

// Locked reports whether the mutex is currently held.
// The value may be stale in concurrent contexts.
func (m *Mutex) Locked() bool {
	return len(m.ch) == 1
}

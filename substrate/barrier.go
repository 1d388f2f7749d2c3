package substrate

import (
	"context"
	"sync"
)

// Barrier synchronizes a fixed set of parties. Every party calls Wait
// once per phase; the last arrival releases the phase and the barrier is
// immediately reusable for the next one.
//
// Each phase has its own release channel, so a waiter can also leave on
// context cancellation. Once a waiter left early the arrival counts of
// that phase no longer match; a cancelled barrier is not meant to be
// reused.
type Barrier struct {
	mu      sync.Mutex
	parties int
	arrived int
	release chan struct{}
}

// NewBarrier returns a barrier for n parties. It panics if n <= 0.
func NewBarrier(n int) *Barrier {
	if n <= 0 {
		panic("substrate: NewBarrier requires n > 0")
	}
	return &Barrier{
		parties: n,
		release: make(chan struct{}),
	}
}

// Wait blocks until all parties arrived in the current phase or ctx is
// done. It returns nil on release and the context's cause otherwise.
// A call on an already cancelled context returns at once without
// arriving.
func (b *Barrier) Wait(ctx context.Context) error {
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}

	b.mu.Lock()
	ch := b.release
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.release = make(chan struct{})
		b.mu.Unlock()
		close(ch)
		return nil
	}
	b.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

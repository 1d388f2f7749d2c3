package hpxmp

import "sync/atomic"

// AtomicStart acquires the runtime-wide lock for an atomic update that
// cannot be written with sync/atomic. The lock is shared by every team
// of the runtime, so sections must be short. Pair it with AtomicEnd.
func (t *Thread) AtomicStart() {
	t.rt.atomicMu.Lock()
}

// AtomicEnd releases the lock taken by AtomicStart. Releasing a lock
// nobody holds is a usage violation.
func (t *Thread) AtomicEnd() {
	if !t.rt.atomicMu.Locked() {
		fatalf("atomic", ErrUsage, "atomic end without a matching start")
	}
	t.rt.atomicMu.Unlock()
}

// Atomic runs fn between AtomicStart and AtomicEnd. The lock is released
// even if fn panics.
func (t *Thread) Atomic(fn func()) {
	t.AtomicStart()
	defer t.AtomicEnd()
	fn()
}

var fence atomic.Uint64

// Flush is a full memory fence. Every Flush is one sequentially
// consistent atomic operation on a single process-wide word, so writes a
// goroutine made before its Flush happen before the reads another
// goroutine makes after any later Flush.
func Flush() {
	fence.Add(1)
}

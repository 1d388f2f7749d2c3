// Package substrate is the lightweight fork/join layer the hpxmp runtime
// runs on. It offers exactly what the runtime consumes:
//
//   - [Goroutines.Spawn] forks n members and returns one [Handle] each.
//     The members share a context that is cancelled as soon as one of
//     them fails, so a broken region never leaves siblings blocked.
//   - [Goroutines.Go] hands a deferred unit of work to the scheduler.
//   - [Goroutines.Yield] gives up the processor.
//   - [Barrier] is a generation-counted rendezvous usable for any number
//     of phases.
//   - [Mutex] is a lock with Lock, TryLock, LockContext and Unlock.
//
// Blocking in a Barrier or a Mutex parks the goroutine; it never spins
// and never holds an OS thread hostage, so other runnable work keeps
// making progress.
package substrate

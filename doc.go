// Package hpxmp is a fork-join parallel runtime: parallel regions, loop
// work-sharing, explicit tasks with dependencies and the synchronization
// constructs that go with them, executed on a lightweight goroutine
// substrate.
//
// # Regions and Thread Contexts
//
// [Runtime.Parallel] forks a team and runs a [RegionFunc] on every member.
// Each member receives its own [*Thread], the context every construct is
// called on. Go has no goroutine-local storage, so the context is passed
// explicitly; never share a Thread between goroutines.
//
//	rt := hpxmp.New(hpxmp.WithNumThreads(4))
//	defer rt.Close()
//
//	err := rt.Parallel(0, func(t *hpxmp.Thread) error {
//	    fmt.Println("hello from", t.Num(), "of", t.NumThreads())
//	    return nil
//	})
//
// [Default] returns a process-wide runtime built exactly once, and
// [Shutdown] tears it down. Outside of any region, [Runtime.Root] is a
// one-thread context, so every construct also works sequentially.
//
// Team sizes come from the Parallel argument, [Thread.PushNumThreads] or
// the thread's ICVs ([Thread.SetNumThreads], [Thread.SetNested],
// [Thread.SetDynamic], [Thread.SetMaxActiveLevels]), capped by the
// runtime's thread limit.
//
// # Synchronization
//
//   - [Thread.Barrier] waits for the whole team and its outstanding tasks.
//   - [Thread.Single] elects one member per instance, [Thread.Master]
//     selects thread 0.
//   - [Thread.Critical] serializes named sections within the team, and
//     [Thread.Atomic] guards updates with one lock shared by the runtime.
//   - [Lock] and [NestLock] are owner-checked locks. Waiting for a lock
//     or a critical section gives up when the team is cancelled.
//   - [Flush] is a full memory fence.
//   - [ThreadPrivate] keeps one copy of a variable per thread, carried
//     from region to region.
//   - [Thread.SingleCopyStart], [Thread.SingleCopyEnd], [SingleCopy] and
//     [Thread.Copyprivate] broadcast a value from one member to the rest.
//   - [Thread.Reduce] implements the reduction protocol, either as a
//     pure rendezvous for atomic combination or with one elected member
//     combining every contribution.
//
// # Loops
//
// [Thread.LoopStart] and [Thread.LoopNext] share the iterations of
// [lb, ub) among the team and return half-open chunks; [Thread.DispatchInit]
// and [Thread.DispatchNext] are the inclusive-bound form. A [Schedule]
// selects static, dynamic, guided or runtime partitioning, with ordered
// regions ([Thread.Ordered]) as an option. [Thread.For],
// [Runtime.ParallelFor], [ForEach] and [Map] wrap the protocol, and
// [Thread.Sections] spreads independent functions over the team.
//
// # Tasks
//
// [Thread.Task] submits an explicit task. [Depend] orders it after
// earlier conflicting tasks on the same addresses, [If](false) runs it
// undeferred on the creating context. [Thread.TaskWait] waits for the
// direct children of a context, [Thread.Taskgroup] for every task created
// inside it. [TaskReductionInit] and [TaskReductionData] give each thread
// a private, cache-line padded copy of a reduction variable that is
// combined into the shared one when the taskgroup ends.
//
// # Errors and Panics
//
// Errors returned by region and task bodies are wrapped in [*TaskError]
// and handled by the runtime's [Policy]: [FailFast] (default) cancels the
// team on the first error, [Collect] gathers all of them. A panic is
// captured with its stack and re-raised when the region joins, or
// returned as [*PanicError] under [WithPanicAsError].
//
// Contract violations, such as unsetting a lock held by another context
// or calling a barrier from inside a task, panic with a [*FatalError]
// wrapping [ErrUsage]. A substrate that cannot fork a team makes Parallel
// return a *FatalError wrapping [ErrSpawn].
//
// # Cancellation
//
// [Thread.Cancel] cancels the team cooperatively: barriers and ordered
// waits return, loops stop handing out chunks and deferred tasks that
// did not start are skipped. Running code observes it through
// [Thread.Cancelled] or [Thread.Context].
//
// # Observability
//
// [WithOnEvent] receives an [Event] for every fork, join, task state
// change and cancellation; [Runtime.Stats] returns activity counters.
//
// # Configuration
//
// Besides functional options, a runtime can be configured from a YAML
// document with [LoadConfig] and [WithConfig].
//
// The [github.com/gitczfranks/hpxMP/substrate] subpackage provides the
// goroutine substrate; [WithSubstrate] replaces it.
package hpxmp

package hpxmp

import "time"

// EventKind identifies a lifecycle event.
type EventKind int

const (
	// EventFork is emitted when a team has been spawned.
	EventFork EventKind = iota
	// EventJoin is emitted when a region joined; Err holds its result.
	EventJoin
	// EventTaskStart is emitted when an explicit task begins executing.
	EventTaskStart
	// EventTaskDone is emitted when an explicit task finished.
	EventTaskDone
	// EventTaskSkipped is emitted for a task discarded by cancellation.
	EventTaskSkipped
	// EventCancel is emitted when a team is cancelled explicitly.
	EventCancel
)

func (k EventKind) String() string {
	switch k {
	case EventFork:
		return "fork"
	case EventJoin:
		return "join"
	case EventTaskStart:
		return "task-start"
	case EventTaskDone:
		return "task-done"
	case EventTaskSkipped:
		return "task-skipped"
	case EventCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Event describes one state change, delivered to the [WithOnEvent] hook.
type Event struct {
	Kind     EventKind
	Level    int
	Thread   int
	TeamSize int
	Err      error
	Duration time.Duration
}

// Stats is a point-in-time snapshot of runtime activity.
type Stats struct {
	Regions        int64 // parallel regions forked
	Threads        int64 // team members spawned
	TasksCreated   int64 // explicit tasks submitted
	TasksCompleted int64 // explicit tasks finished, skipped ones included
	TasksActive    int64 // explicit tasks executing right now
}

func (rt *Runtime) emit(e Event) {
	if rt.cfg.onEvent != nil {
		rt.cfg.onEvent(e)
	}
}

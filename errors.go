package hpxmp

import (
	"errors"
	"fmt"

	"github.com/gitczfranks/hpxMP/substrate"
)

var (
	// ErrUsage marks a construct used against its contract: mismatched
	// lock state, a taskgroup ended by a context that did not start it,
	// a barrier inside an explicit task. Continuing would produce silently
	// wrong parallel results, so these are raised as *FatalError panics.
	ErrUsage = errors.New("hpxmp: usage violation")

	// ErrSpawn marks a failure of the substrate to fork a team.
	ErrSpawn = errors.New("hpxmp: spawn failed")

	// ErrClosed is returned when a parallel region is requested from a
	// runtime that has been closed.
	ErrClosed = errors.New("hpxmp: runtime is closed")

	// ErrCancelled is the default cause of an explicit team cancellation.
	ErrCancelled = errors.New("hpxmp: cancelled")
)

// PanicError is a recovered panic with the stack it was raised on.
type PanicError = substrate.PanicError

// FatalError reports an unrecoverable runtime condition. Op names the
// construct that detected it.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("hpxmp: fatal error in %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// fatalf panics with a *FatalError wrapping kind.
func fatalf(op string, kind error, format string, args ...any) {
	panic(&FatalError{
		Op:  op,
		Err: fmt.Errorf("%w: "+format, append([]any{kind}, args...)...),
	})
}

// TaskInfo identifies the unit of work that produced an error. Every
// team thread runs an implicit task; explicit tasks are those created
// with [Thread.Task].
type TaskInfo struct {
	Thread   int
	Level    int
	Explicit bool
}

func (i TaskInfo) String() string {
	kind := "implicit"
	if i.Explicit {
		kind = "explicit"
	}
	return fmt.Sprintf("%s task of thread %d at level %d", kind, i.Thread, i.Level)
}

// TaskError attributes an error returned by a region or task body.
type TaskError struct {
	Task TaskInfo
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// TaskErrors collects every *TaskError in err's chain, descending into
// errors joined with [errors.Join]. Returns nil if none are found.
func TaskErrors(err error) []*TaskError {
	if err == nil {
		return nil
	}
	var out []*TaskError
	collectTaskErrors(err, &out)
	return out
}

func collectTaskErrors(err error, out *[]*TaskError) {
	switch e := err.(type) {
	case *TaskError:
		*out = append(*out, e)
	case interface{ Unwrap() []error }:
		for _, sub := range e.Unwrap() {
			collectTaskErrors(sub, out)
		}
	case interface{ Unwrap() error }:
		collectTaskErrors(e.Unwrap(), out)
	}
}

package substrate

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrLimit is returned by [Goroutines.Spawn] when a fork asks for more
// members than the substrate is configured to run at once.
var ErrLimit = errors.New("substrate: member limit exceeded")

// MemberFunc is the body of one spawned member. It receives the shared
// member context and its index in [0, n).
type MemberFunc func(ctx context.Context, index int) error

// Goroutines runs members and deferred work on goroutines; the Go
// scheduler maps them onto GOMAXPROCS worker threads.
//
// The zero value is ready to use and imposes no member limit.
type Goroutines struct {
	// MaxMembers caps the members of a single Spawn call.
	// Zero means unlimited.
	MaxMembers int
}

// Spawn starts n members and returns their join handles in index order.
//
// The members share a context derived from ctx that is cancelled when
// any member returns an error or panics, or once every member returned.
// Spawn either starts all n members or none: on error no member runs.
func (g *Goroutines) Spawn(ctx context.Context, n int, fn MemberFunc) ([]*Handle, error) {
	if n <= 0 {
		return nil, fmt.Errorf("substrate: spawn of %d members", n)
	}
	if g.MaxMembers > 0 && n > g.MaxMembers {
		return nil, fmt.Errorf("%w: %d > %d", ErrLimit, n, g.MaxMembers)
	}

	eg, mctx := errgroup.WithContext(ctx)
	handles := make([]*Handle, n)
	for i := range n {
		handles[i] = newHandle()
	}

	for i, h := range handles {
		eg.Go(func() error {
			return h.run(func() error { return fn(mctx, i) })
		})
	}

	// Wait releases mctx once every member is done; joiners use the handles.
	go func() { _ = eg.Wait() }()

	return handles, nil
}

// Go runs fn on its own goroutine. A panic inside fn is not recovered
// here; callers that need recovery wrap fn with [Capture].
func (g *Goroutines) Go(fn func()) {
	go fn()
}

// Yield gives up the processor, allowing other goroutines to run.
func (g *Goroutines) Yield() {
	runtime.Gosched()
}

package substrate

// Handle joins one spawned member. It is the future of the member's
// completion: [Handle.Wait] blocks until the member returned or panicked.
type Handle struct {
	done  chan struct{}
	err   error
	panic *PanicError
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// run executes fn, records how it ended and releases waiters.
// A panic is reported both through Panic and as the returned error.
func (h *Handle) run(fn func() error) error {
	defer close(h.done)

	var err error
	if pe := Capture(func() { err = fn() }); pe != nil {
		h.panic = pe
		h.err = pe
		return pe
	}
	h.err = err
	return err
}

// Wait blocks until the member completes and returns its error.
// A member that panicked reports its *PanicError.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Done returns a channel that is closed when the member completes.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Panic returns the captured panic of a completed member, or nil.
// It must only be called after Done is closed.
func (h *Handle) Panic() *PanicError {
	return h.panic
}

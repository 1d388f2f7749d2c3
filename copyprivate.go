package hpxmp

// SingleCopyStart enters a single construct whose result is broadcast.
// The executing member gets (nil, true) and must produce the value and
// pass it to [Thread.SingleCopyEnd]. Every other member blocks until
// then and gets (value, false).
func (t *Thread) SingleCopyStart() (any, bool) {
	if t.Single() {
		return nil, true
	}
	tm := t.team
	if t.rendezvous() != nil {
		return nil, false
	}
	v := tm.copyprivate
	_ = t.rendezvous()
	return v, false
}

// SingleCopyEnd publishes v to the members blocked in SingleCopyStart.
// It returns once every member has read it, so the slot can be reused by
// the next construct.
func (t *Thread) SingleCopyEnd(v any) {
	t.team.copyprivate = v
	if t.rendezvous() != nil {
		return
	}
	_ = t.rendezvous()
}

// SingleCopy runs produce on one member and returns its result on every
// member of the team.
func SingleCopy[T any](t *Thread, produce func() T) T {
	if v, producer := t.SingleCopyStart(); !producer {
		if v == nil {
			var zero T
			return zero
		}
		return v.(T)
	}
	v := produce()
	t.SingleCopyEnd(v)
	return v
}

// Copyprivate broadcasts the producer's data to every member. The member
// that executed the single region passes didit; every member calls
// copyFn(data, source) to fill its private copy, and a second rendezvous
// keeps the slot from being reused before all copies are made.
//
// The producer copies onto itself before publishing; after the first
// rendezvous its data is only read.
func (t *Thread) Copyprivate(data any, didit bool, copyFn func(dst, src any)) {
	t.requireImplicit("copyprivate")
	tm := t.team
	if didit {
		copyFn(data, data)
		tm.copyprivate = data
	}
	if t.rendezvous() != nil {
		return
	}
	if !didit {
		copyFn(data, tm.copyprivate)
	}
	_ = t.rendezvous()
}

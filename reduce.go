package hpxmp

// ReduceStatus tells a member what to do after [Thread.Reduce].
type ReduceStatus int

const (
	// ReduceOther: the member's contribution has been taken; nothing to do.
	ReduceOther ReduceStatus = iota
	// ReduceElected: the member holds the combined value of the team in
	// its data and publishes it.
	ReduceElected
	// ReduceAtomic: every member combines its own value atomically.
	ReduceAtomic
)

func (s ReduceStatus) String() string {
	switch s {
	case ReduceOther:
		return "other"
	case ReduceElected:
		return "elected"
	case ReduceAtomic:
		return "atomic"
	default:
		return "unknown"
	}
}

// Reduce runs the team reduction protocol. Every member must call it with
// the same atomic flag and then call [Thread.EndReduce].
//
// With atomic set the runtime only synchronizes: Reduce returns
// ReduceAtomic after a rendezvous and the caller combines into the shared
// location atomically before EndReduce.
//
// Otherwise one member is elected with [Thread.Single]. Every member
// publishes data in its team slot; after a rendezvous the elected member
// calls combine(own, other) for every other member in ascending thread
// number and gets ReduceElected once a trailing rendezvous released the
// team. combine must be associative.
func (t *Thread) Reduce(data any, atomic bool, combine func(dst, src any)) ReduceStatus {
	t.requireImplicit("reduction")
	if atomic {
		_ = t.rendezvous()
		return ReduceAtomic
	}

	tm := t.team
	elected := t.Single()
	tm.reduceSlots[t.num] = data
	if t.rendezvous() != nil {
		return ReduceOther
	}
	if elected {
		for i, src := range tm.reduceSlots {
			if i != t.num {
				combine(data, src)
			}
		}
	}
	if t.rendezvous() != nil {
		return ReduceOther
	}
	if elected {
		tm.reduceSlots[t.num] = nil
		return ReduceElected
	}
	return ReduceOther
}

// EndReduce closes a reduction. For the atomic form it is the rendezvous
// after every member combined; the critical form already ended inside
// Reduce.
func (t *Thread) EndReduce(atomic bool) {
	if atomic {
		_ = t.rendezvous()
	}
}

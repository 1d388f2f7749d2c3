package hpxmp

import "sync"

// Dep declares a task's access to an address. Addr identifies the
// storage and must be comparable, normally a pointer. Two tasks conflict
// when they name the same Addr and at least one of them writes it.
type Dep struct {
	Addr any
	Out  bool
}

// In declares a read of addr.
func In(addr any) Dep {
	return Dep{Addr: addr}
}

// Out declares a write of addr.
func Out(addr any) Dep {
	return Dep{Addr: addr, Out: true}
}

// InOut declares a read and write of addr. It orders like Out.
func InOut(addr any) Dep {
	return Dep{Addr: addr, Out: true}
}

// depTracker is a dependency domain: it remembers, per address, the last
// unfinished writer and the unfinished readers submitted after it.
type depTracker struct {
	mu   sync.Mutex
	last map[any]*depEntry
}

type depEntry struct {
	out *Task
	ins []*Task
}

// mergeDeps folds repeated addresses into one access; a write wins.
func mergeDeps(deps []Dep) []Dep {
	out := make([]Dep, 0, len(deps))
	seen := make(map[any]int, len(deps))
	for _, d := range deps {
		if i, ok := seen[d.Addr]; ok {
			out[i].Out = out[i].Out || d.Out
			continue
		}
		seen[d.Addr] = len(out)
		out = append(out, d)
	}
	return out
}

// register records tk's accesses and links it after every unfinished
// task it must follow. tk.npred must already hold its guard count.
func (dt *depTracker) register(tk *Task) {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	if dt.last == nil {
		dt.last = make(map[any]*depEntry)
	}

	preds := make(map[*Task]struct{})
	for _, d := range tk.deps {
		e, ok := dt.last[d.Addr]
		if !ok {
			e = &depEntry{}
			dt.last[d.Addr] = e
		}
		if e.out != nil {
			preds[e.out] = struct{}{}
		}
		if d.Out {
			for _, in := range e.ins {
				preds[in] = struct{}{}
			}
			e.out = tk
			e.ins = nil
		} else {
			e.ins = append(e.ins, tk)
		}
	}

	for p := range preds {
		p.mu.Lock()
		if !p.finished {
			p.successors = append(p.successors, tk)
			tk.npred.Add(1)
		}
		p.mu.Unlock()
	}
}

// release forgets tk's accesses once it completed.
func (dt *depTracker) release(tk *Task) {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	for _, d := range tk.deps {
		e, ok := dt.last[d.Addr]
		if !ok {
			continue
		}
		if e.out == tk {
			e.out = nil
		}
		for i, in := range e.ins {
			if in == tk {
				e.ins = append(e.ins[:i], e.ins[i+1:]...)
				break
			}
		}
		if e.out == nil && len(e.ins) == 0 {
			delete(dt.last, d.Addr)
		}
	}
}

// pending returns the number of addresses with unfinished accesses.
func (dt *depTracker) pending() int {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	return len(dt.last)
}

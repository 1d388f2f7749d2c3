package hpxmp

// ScheduleKind selects how loop iterations are handed to team threads.
type ScheduleKind int

const (
	// SchedStatic partitions the range up front: contiguous blocks when
	// the chunk is 0, round-robin chunks otherwise.
	SchedStatic ScheduleKind = iota

	// SchedDynamic hands out chunk-sized pieces from a shared cursor.
	SchedDynamic

	// SchedGuided hands out pieces that shrink with the remaining work,
	// never below the chunk size.
	SchedGuided

	// SchedRuntime defers to the runtime's configured schedule.
	SchedRuntime
)

var kindNames = [...]string{
	SchedStatic:  "static",
	SchedDynamic: "dynamic",
	SchedGuided:  "guided",
	SchedRuntime: "runtime",
}

func (k ScheduleKind) valid() bool {
	return k >= SchedStatic && k <= SchedRuntime
}

func (k ScheduleKind) String() string {
	if !k.valid() {
		return "unknown"
	}
	return kindNames[k]
}

func parseKind(name string) (ScheduleKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return ScheduleKind(k), true
		}
	}
	return 0, false
}

// Schedule is a loop schedule: a kind and whether the loop contains
// ordered regions.
type Schedule struct {
	Kind    ScheduleKind
	Ordered bool
}

var (
	Static          = Schedule{Kind: SchedStatic}
	Dynamic         = Schedule{Kind: SchedDynamic}
	Guided          = Schedule{Kind: SchedGuided}
	RuntimeSchedule = Schedule{Kind: SchedRuntime}
)

// WithOrdered returns s with ordered regions enabled.
func (s Schedule) WithOrdered() Schedule {
	s.Ordered = true
	return s
}

func (s Schedule) String() string {
	if s.Ordered {
		return "ordered " + s.Kind.String()
	}
	return s.Kind.String()
}

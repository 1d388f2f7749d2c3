package hpxmp

// ForEach forks a team of rt's default size and calls fn for every item,
// sharing the items among the members under schedule s.
//
// Errors follow the runtime's [Policy]: under [FailFast] the first error
// cancels the team and members stop claiming items; under [Collect]
// every failing item is reported.
//
//	err := hpxmp.ForEach(rt, files, hpxmp.Dynamic, func(t *hpxmp.Thread, f string) error {
//	    return compress(f)
//	})
func ForEach[T any](rt *Runtime, items []T, s Schedule, fn func(t *Thread, item T) error) error {
	return rt.Parallel(0, func(t *Thread) error {
		t.For(s, 0, int64(len(items)), 1, 0, func(i int64) {
			if err := fn(t, items[i]); err != nil {
				t.team.recordError(t.info(), err)
			}
		})
		return nil
	})
}

// Map calls fn for every item like [ForEach] and collects the results
// in input order. On error, Map returns nil and the error.
//
//	sizes, err := hpxmp.Map(rt, files, hpxmp.Guided, func(t *hpxmp.Thread, f string) (int64, error) {
//	    return size(f)
//	})
func Map[T, R any](rt *Runtime, items []T, s Schedule, fn func(t *Thread, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	err := rt.Parallel(0, func(t *Thread) error {
		t.For(s, 0, int64(len(items)), 1, 0, func(i int64) {
			r, err := fn(t, items[i])
			if err != nil {
				t.team.recordError(t.info(), err)
				return
			}
			results[i] = r // each index is claimed by exactly one member
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

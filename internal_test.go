package hpxmp

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripCount(t *testing.T) {
	tests := []struct {
		lb, ub, st int64
		want       uint64
	}{
		{0, 9, 1, 10},
		{0, 0, 1, 1},
		{1, 0, 1, 0},
		{0, 9, 3, 4},
		{9, 0, -1, 10},
		{9, 0, -4, 3},
		{0, 9, -1, 0},
		{math.MinInt64, math.MaxInt64, math.MaxInt64, 3},
	}
	for _, tc := range tests {
		got, ok := tripCount(tc.lb, tc.ub, tc.st)
		assert.True(t, ok, "lb=%d ub=%d st=%d", tc.lb, tc.ub, tc.st)
		assert.Equal(t, tc.want, got, "lb=%d ub=%d st=%d", tc.lb, tc.ub, tc.st)
	}

	for _, st := range []int64{1, -1} {
		lb, ub := int64(math.MinInt64), int64(math.MaxInt64)
		if st < 0 {
			lb, ub = ub, lb
		}
		_, ok := tripCount(lb, ub, st)
		assert.False(t, ok, "the whole int64 range by %d has 2^64 iterations", st)
	}

	got, ok := tripCount(math.MinInt64+1, math.MaxInt64, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), got)
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, uint64(4), ceilDiv(10, 3))
	assert.Equal(t, uint64(5), ceilDiv(10, 2))
	assert.Equal(t, uint64(math.MaxUint64), ceilDiv(math.MaxUint64, 1))
	assert.Equal(t, uint64(2), ceilDiv(math.MaxUint64, 1<<63))
}

func TestStaticBlock(t *testing.T) {
	var got [][2]uint64
	for k := range uint64(4) {
		lo, hi := staticBlock(10, 4, k)
		got = append(got, [2]uint64{lo, hi})
	}
	assert.Equal(t, [][2]uint64{{0, 3}, {3, 6}, {6, 8}, {8, 10}}, got)

	lo, hi := staticBlock(2, 4, 3)
	assert.Equal(t, lo, hi, "threads past the trip count get an empty block")
}

func TestMergeDeps(t *testing.T) {
	a, b := new(int), new(int)
	got := mergeDeps([]Dep{In(a), In(b), Out(a), In(b)})
	assert.Equal(t, []Dep{Out(a), In(b)}, got)
}

func TestDepTrackerReleasesEntries(t *testing.T) {
	rt := New()
	defer rt.Close()
	root := rt.Root()

	var x, y int
	release := make(chan struct{})
	first := root.Task(func(*Thread) error {
		<-release
		return nil
	}, Depend(Out(&x), In(&y)))
	second := root.Task(func(*Thread) error { return nil }, Depend(In(&x)))

	assert.Equal(t, 2, root.team.deps.pending())
	close(release)
	<-first.Done()
	<-second.Done()
	root.TaskWait()
	assert.Equal(t, 0, root.team.deps.pending())
}

func TestWaitCounter(t *testing.T) {
	var c waitCounter
	c.wait()

	c.add(2)
	done := make(chan struct{})
	go func() {
		c.wait()
		close(done)
	}()
	c.done()
	select {
	case <-done:
		t.Fatal("wait returned with work outstanding")
	default:
	}
	c.done()
	<-done
	assert.Equal(t, int64(0), c.load())

	r := func() (r any) {
		defer func() { r = recover() }()
		c.done()
		return nil
	}()
	err, ok := r.(error)
	require.True(t, ok)
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestFatalError(t *testing.T) {
	r := func() (r any) {
		defer func() { r = recover() }()
		fatalf("lock unset", ErrUsage, "held by %s", "another")
		return nil
	}()
	fe, ok := r.(*FatalError)
	require.True(t, ok)
	assert.Equal(t, "lock unset", fe.Op)
	assert.ErrorIs(t, fe, ErrUsage)
	assert.Equal(t, "hpxmp: fatal error in lock unset: hpxmp: usage violation: held by another", fe.Error())
}

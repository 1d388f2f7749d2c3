package hpxmp_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitczfranks/hpxMP"
)

func addInts(dst, src any) {
	*dst.(*int) += *src.(*int)
}

func TestReduceCriticalFallback(t *testing.T) {
	rt := newRuntime(t)

	var electedCount atomic.Int32
	var result atomic.Int64
	require.NoError(t, rt.Parallel(4, func(th *hpxmp.Thread) error {
		v := 1
		st := th.Reduce(&v, false, addInts)
		switch st {
		case hpxmp.ReduceElected:
			electedCount.Add(1)
			result.Store(int64(v))
		case hpxmp.ReduceOther:
		default:
			t.Errorf("unexpected status %v", st)
		}
		th.EndReduce(false)
		return nil
	}))

	assert.Equal(t, int32(1), electedCount.Load())
	assert.Equal(t, int64(4), result.Load())
}

func TestReduceCombineOrder(t *testing.T) {
	rt := newRuntime(t)

	var order []int
	appendOrder := func(dst, src any) {
		*dst.(*[]int) = append(*dst.(*[]int), *src.(*[]int)...)
	}
	require.NoError(t, rt.Parallel(4, func(th *hpxmp.Thread) error {
		v := []int{th.Num()}
		if th.Reduce(&v, false, appendOrder) == hpxmp.ReduceElected {
			order = v
		}
		th.EndReduce(false)
		return nil
	}))

	require.Len(t, order, 4)
	elected := order[0]
	want := []int{elected}
	for i := range 4 {
		if i != elected {
			want = append(want, i)
		}
	}
	assert.Equal(t, want, order)
}

func TestReduceAtomic(t *testing.T) {
	rt := newRuntime(t)

	var sum atomic.Int64
	var after [6]int64
	require.NoError(t, rt.Parallel(6, func(th *hpxmp.Thread) error {
		v := int64(th.Num() + 1)
		st := th.Reduce(&v, true, nil)
		assert.Equal(t, hpxmp.ReduceAtomic, st)
		sum.Add(v)
		th.EndReduce(true)
		after[th.Num()] = sum.Load()
		return nil
	}))

	assert.Equal(t, int64(21), sum.Load())
	for _, s := range after {
		assert.Equal(t, int64(21), s)
	}
}

func TestReduceRepeated(t *testing.T) {
	rt := newRuntime(t)

	var totals [30]atomic.Int64
	require.NoError(t, rt.Parallel(3, func(th *hpxmp.Thread) error {
		for round := range 30 {
			v := round
			if th.Reduce(&v, false, addInts) == hpxmp.ReduceElected {
				totals[round].Store(int64(v))
			}
			th.EndReduce(false)
		}
		return nil
	}))
	for round := range 30 {
		assert.Equal(t, int64(3*round), totals[round].Load())
	}
}

func TestReduceStatusString(t *testing.T) {
	assert.Equal(t, "elected", hpxmp.ReduceElected.String())
	assert.Equal(t, "atomic", hpxmp.ReduceAtomic.String())
	assert.Equal(t, "other", hpxmp.ReduceOther.String())
}

package hpxmp_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitczfranks/hpxMP"
)

func TestBarrierPhases(t *testing.T) {
	const (
		threads = 4
		phases  = 50
	)
	rt := newRuntime(t)

	var arrived [phases]atomic.Int32
	require.NoError(t, rt.Parallel(threads, func(th *hpxmp.Thread) error {
		for p := range phases {
			arrived[p].Add(1)
			th.Barrier()
			if got := arrived[p].Load(); got != threads {
				t.Errorf("phase %d: thread %d passed the barrier with %d arrivals", p, th.Num(), got)
			}
		}
		return nil
	}))
}

func TestBarrierWaitsForTasks(t *testing.T) {
	rt := newRuntime(t)

	var done atomic.Int32
	require.NoError(t, rt.Parallel(4, func(th *hpxmp.Thread) error {
		th.Task(func(*hpxmp.Thread) error {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
			return nil
		})
		th.Barrier()
		assert.Equal(t, int32(4), done.Load())
		return nil
	}))
}

func TestCancelBarrier(t *testing.T) {
	rt := newRuntime(t)

	t.Run("without cancellation", func(t *testing.T) {
		require.NoError(t, rt.Parallel(3, func(th *hpxmp.Thread) error {
			assert.False(t, th.CancelBarrier())
			return nil
		}))
	})

	t.Run("after cancellation", func(t *testing.T) {
		stop := errors.New("stop")
		require.NoError(t, rt.Parallel(3, func(th *hpxmp.Thread) error {
			if th.Num() == 0 {
				th.Cancel(stop)
			}
			assert.True(t, th.CancelBarrier())
			assert.True(t, th.Cancelled())
			assert.ErrorIs(t, th.CancelCause(), stop)
			return nil
		}))
	})
}

func TestSingleElectsOnePerInstance(t *testing.T) {
	const (
		threads   = 4
		instances = 200
	)
	rt := newRuntime(t)

	var winners [instances]atomic.Int32
	require.NoError(t, rt.Parallel(threads, func(th *hpxmp.Thread) error {
		for i := range instances {
			if th.Single() {
				winners[i].Add(1)
			}
		}
		return nil
	}))

	for i := range instances {
		assert.Equal(t, int32(1), winners[i].Load(), "instance %d", i)
	}
}

func TestMaster(t *testing.T) {
	rt := newRuntime(t)

	var masters atomic.Int32
	require.NoError(t, rt.Parallel(5, func(th *hpxmp.Thread) error {
		if th.Master() {
			masters.Add(1)
			assert.Equal(t, 0, th.Num())
		}
		return nil
	}))
	assert.Equal(t, int32(1), masters.Load())
}

func TestCritical(t *testing.T) {
	rt := newRuntime(t)

	t.Run("unnamed sections exclude each other", func(t *testing.T) {
		var counter int
		require.NoError(t, rt.Parallel(8, func(th *hpxmp.Thread) error {
			for range 1000 {
				th.Critical("", func() { counter++ })
			}
			return nil
		}))
		assert.Equal(t, 8000, counter)
	})

	t.Run("start and end pair", func(t *testing.T) {
		var counter int
		require.NoError(t, rt.Parallel(4, func(th *hpxmp.Thread) error {
			for range 500 {
				th.CriticalStart("counter")
				counter++
				th.CriticalEnd("counter")
			}
			return nil
		}))
		assert.Equal(t, 2000, counter)
	})

	t.Run("different names do not block each other", func(t *testing.T) {
		require.NoError(t, rt.Parallel(2, func(th *hpxmp.Thread) error {
			th.CriticalStart("a")
			th.CriticalStart("b")
			th.CriticalEnd("b")
			th.CriticalEnd("a")
			return nil
		}))
	})

	t.Run("cancellation releases a waiter", func(t *testing.T) {
		var ran [2]bool
		tried := make(chan struct{})
		_ = rt.Parallel(2, func(th *hpxmp.Thread) error {
			if th.Num() == 0 {
				assert.True(t, th.CriticalStart("held"))
				th.Barrier()
				th.Cancel(nil)
				<-tried
				th.CriticalEnd("held")
				return nil
			}
			th.Barrier()
			ran[0] = th.Critical("held", func() {})
			ran[1] = th.CriticalStart("held")
			close(tried)
			return nil
		})
		assert.Equal(t, [2]bool{false, false}, ran)
	})

	t.Run("released on panic", func(t *testing.T) {
		root := rt.Root()
		func() {
			defer func() { _ = recover() }()
			root.Critical("p", func() { panic("inside critical") })
		}()
		done := make(chan struct{})
		go func() {
			root.Critical("p", func() {})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("critical lock was not released by the panic")
		}
	})
}

func TestTeamConstructsInsideTask(t *testing.T) {
	rt := newRuntime(t)
	requireUsage(t, func() {
		_ = rt.Parallel(2, func(th *hpxmp.Thread) error {
			if th.Single() {
				th.Task(func(tt *hpxmp.Thread) error {
					assert.True(t, tt.IsExplicitTask())
					tt.Barrier()
					return nil
				})
			}
			return nil
		})
	})
}

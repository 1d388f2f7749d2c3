package substrate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnRunsEveryMember(t *testing.T) {
	var g Goroutines
	var seen [8]atomic.Bool

	handles, err := g.Spawn(context.Background(), 8, func(ctx context.Context, i int) error {
		seen[i].Store(true)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, handles, 8)
	for _, h := range handles {
		require.NoError(t, h.Wait())
	}

	for i := range seen {
		assert.True(t, seen[i].Load(), "member %d did not run", i)
	}
}

func TestSpawnLimit(t *testing.T) {
	g := Goroutines{MaxMembers: 2}
	var started atomic.Int32
	handles, err := g.Spawn(context.Background(), 3, func(context.Context, int) error {
		started.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, ErrLimit)
	assert.Nil(t, handles)
	assert.Equal(t, int32(0), started.Load(), "no member may start on a failed spawn")
}

func TestSpawnRejectsEmptyFork(t *testing.T) {
	var g Goroutines
	_, err := g.Spawn(context.Background(), 0, func(context.Context, int) error { return nil })
	assert.Error(t, err)
}

func TestSpawnFailureCancelsSiblings(t *testing.T) {
	var g Goroutines
	boom := errors.New("boom")

	handles, err := g.Spawn(context.Background(), 3, func(ctx context.Context, i int) error {
		if i == 0 {
			return boom
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return errors.New("sibling was not cancelled")
		}
	})
	require.NoError(t, err)

	assert.ErrorIs(t, handles[0].Wait(), boom)
	assert.ErrorIs(t, handles[1].Wait(), context.Canceled)
	assert.ErrorIs(t, handles[2].Wait(), context.Canceled)
}

func TestSpawnCapturesPanic(t *testing.T) {
	var g Goroutines
	handles, err := g.Spawn(context.Background(), 2, func(ctx context.Context, i int) error {
		if i == 1 {
			panic("member down")
		}
		<-ctx.Done()
		return nil
	})
	require.NoError(t, err)

	err = handles[1].Wait()
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "member down", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Same(t, pe, handles[1].Panic())

	require.NoError(t, handles[0].Wait(), "sibling observes cancellation and returns")
	assert.Nil(t, handles[0].Panic())
}

func TestGoRunsDeferredWork(t *testing.T) {
	var g Goroutines
	done := make(chan struct{})
	g.Go(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deferred work never ran")
	}
	g.Yield()
}

func TestCaptureWrapsErrorPanics(t *testing.T) {
	sentinel := errors.New("sentinel")
	pe := Capture(func() { panic(sentinel) })
	require.NotNil(t, pe)
	assert.ErrorIs(t, pe, sentinel)
	assert.Contains(t, pe.Error(), "panic: sentinel")

	assert.Nil(t, Capture(func() {}))
}

func TestBarrierPhases(t *testing.T) {
	const parties, phases = 4, 50
	b := NewBarrier(parties)

	var (
		wg      sync.WaitGroup
		arrived [phases]atomic.Int32
		bad     atomic.Bool
	)
	wg.Add(parties)
	for range parties {
		go func() {
			defer wg.Done()
			for p := range phases {
				arrived[p].Add(1)
				if err := b.Wait(context.Background()); err != nil {
					bad.Store(true)
					return
				}
				// Everyone arrived at phase p before anyone is released.
				if arrived[p].Load() != parties {
					bad.Store(true)
				}
			}
		}()
	}
	wg.Wait()

	assert.False(t, bad.Load())
}

func TestBarrierCancellation(t *testing.T) {
	b := NewBarrier(2)
	ctx, cancel := context.WithCancelCause(context.Background())
	cause := errors.New("region cancelled")

	errc := make(chan error, 1)
	go func() { errc <- b.Wait(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel(cause)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, cause)
	case <-time.After(time.Second):
		t.Fatal("waiter not released by cancellation")
	}

	assert.ErrorIs(t, b.Wait(ctx), cause, "cancelled context returns without arriving")
}

func TestNewBarrierPanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { NewBarrier(0) })
}

func TestMutex(t *testing.T) {
	m := NewMutex()
	assert.False(t, m.Locked())

	require.True(t, m.TryLock())
	assert.True(t, m.Locked())
	assert.False(t, m.TryLock(), "second TryLock must fail")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.LockContext(ctx), context.DeadlineExceeded)

	m.Unlock()
	require.NoError(t, m.LockContext(context.Background()))
	m.Unlock()

	cancel()
	require.NoError(t, m.LockContext(ctx), "a free mutex is taken even on a done context")
	m.Unlock()

	assert.PanicsWithValue(t, "substrate: Unlock of unlocked Mutex", func() { m.Unlock() })
}

func TestMutexExclusion(t *testing.T) {
	m := NewMutex()
	var (
		wg      sync.WaitGroup
		counter int
	)
	wg.Add(16)
	for range 16 {
		go func() {
			defer wg.Done()
			for range 100 {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1600, counter)
}

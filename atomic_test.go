package hpxmp_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitczfranks/hpxMP"
)

func TestAtomic(t *testing.T) {
	t.Run("shared by every team", func(t *testing.T) {
		rt := newRuntime(t, hpxmp.WithNested(true))
		var total float64
		require.NoError(t, rt.Parallel(2, func(outer *hpxmp.Thread) error {
			return outer.Parallel(2, func(inner *hpxmp.Thread) error {
				for range 500 {
					inner.Atomic(func() { total += 0.5 })
				}
				return nil
			})
		}))
		assert.Equal(t, 1000.0, total)
	})

	t.Run("start and end pair", func(t *testing.T) {
		rt := newRuntime(t)
		var n int
		require.NoError(t, rt.Parallel(4, func(th *hpxmp.Thread) error {
			for range 250 {
				th.AtomicStart()
				n++
				th.AtomicEnd()
			}
			return nil
		}))
		assert.Equal(t, 1000, n)
	})

	t.Run("released on panic", func(t *testing.T) {
		rt := newRuntime(t)
		root := rt.Root()
		func() {
			defer func() { _ = recover() }()
			root.Atomic(func() { panic("inside atomic") })
		}()

		done := make(chan struct{})
		go func() {
			root.Atomic(func() {})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("atomic lock was not released by the panic")
		}
	})

	t.Run("end without start", func(t *testing.T) {
		rt := newRuntime(t)
		requireUsage(t, func() { rt.Root().AtomicEnd() })
	})
}

func TestFlush(t *testing.T) {
	var data [64]int
	var ready atomic.Bool

	go func() {
		for i := range data {
			data[i] = i * i
		}
		hpxmp.Flush()
		ready.Store(true)
	}()

	for !ready.Load() {
		time.Sleep(time.Millisecond)
	}
	hpxmp.Flush()
	for i, v := range data {
		assert.Equal(t, i*i, v)
	}
}

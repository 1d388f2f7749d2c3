package hpxmp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitczfranks/hpxMP"
)

func TestLoadConfig(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		cfg, err := hpxmp.LoadConfig(strings.NewReader(`
num_threads: 3
dynamic: false
nested: false
max_active_levels: 2
thread_limit: 16
schedule: "guided,4"
`))
		require.NoError(t, err)
		require.NotNil(t, cfg.Nested)
		assert.Equal(t, 3, cfg.NumThreads)
		assert.False(t, *cfg.Nested)
		assert.Equal(t, "guided,4", cfg.Schedule)

		rt := newRuntime(t, hpxmp.WithConfig(cfg))
		root := rt.Root()
		assert.Equal(t, 3, root.MaxThreads())
		assert.False(t, root.Dynamic())
		assert.False(t, root.Nested())
		assert.Equal(t, 2, root.MaxActiveLevels())
		assert.Equal(t, 16, root.ThreadLimit())

		s, chunk := root.Schedule()
		assert.Equal(t, hpxmp.SchedGuided, s.Kind)
		assert.Equal(t, int64(4), chunk)

		require.NoError(t, rt.Parallel(0, func(th *hpxmp.Thread) error {
			assert.Equal(t, 3, th.NumThreads())
			return nil
		}))
	})

	t.Run("empty document keeps defaults", func(t *testing.T) {
		cfg, err := hpxmp.LoadConfig(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, hpxmp.Config{}, cfg)

		rt := newRuntime(t, hpxmp.WithConfig(cfg))
		assert.True(t, rt.Root().Nested())
		assert.Equal(t, hpxmp.DefaultThreadLimit, rt.Root().ThreadLimit())
		s, chunk := rt.Root().Schedule()
		assert.Equal(t, hpxmp.SchedDynamic, s.Kind)
		assert.Equal(t, int64(1), chunk)
	})

	t.Run("rejects invalid documents", func(t *testing.T) {
		docs := map[string]string{
			"unknown key":       "threads: 4\n",
			"negative threads":  "num_threads: -1\n",
			"negative limit":    "thread_limit: -2\n",
			"unknown schedule":  "schedule: fastest\n",
			"bad chunk":         "schedule: static,x\n",
			"negative chunk":    "schedule: dynamic,-3\n",
			"self reference":    "schedule: runtime\n",
			"malformed yaml":    "num_threads: [\n",
			"wrong type":        "nested: maybe\n",
			"negative nest cap": "max_active_levels: -1\n",
		}
		for name, doc := range docs {
			t.Run(name, func(t *testing.T) {
				_, err := hpxmp.LoadConfig(strings.NewReader(doc))
				assert.Error(t, err)
			})
		}
	})
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		in    string
		kind  hpxmp.ScheduleKind
		chunk int64
	}{
		{"static", hpxmp.SchedStatic, 0},
		{"dynamic,4", hpxmp.SchedDynamic, 4},
		{" Guided , 2 ", hpxmp.SchedGuided, 2},
		{"runtime", hpxmp.SchedRuntime, 0},
	}
	for _, tc := range tests {
		kind, chunk, err := hpxmp.ParseSchedule(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.kind, kind, tc.in)
		assert.Equal(t, tc.chunk, chunk, tc.in)
	}

	_, _, err := hpxmp.ParseSchedule("auto")
	assert.Error(t, err)
}

func TestScheduleString(t *testing.T) {
	assert.Equal(t, "static", hpxmp.Static.String())
	assert.Equal(t, "ordered guided", hpxmp.Guided.WithOrdered().String())
	assert.Equal(t, "unknown", hpxmp.ScheduleKind(42).String())
}

func TestOptionValidation(t *testing.T) {
	assert.Panics(t, func() { hpxmp.WithNumThreads(0) })
	assert.Panics(t, func() { hpxmp.WithMaxActiveLevels(0) })
	assert.Panics(t, func() { hpxmp.WithThreadLimit(-1) })
	assert.Panics(t, func() { hpxmp.WithSchedule(hpxmp.SchedRuntime, 0) })
	assert.Panics(t, func() { hpxmp.WithSchedule(hpxmp.SchedDynamic, -1) })
	assert.Panics(t, func() { hpxmp.WithSubstrate(nil) })
	assert.Panics(t, func() { hpxmp.New(hpxmp.WithPolicy(hpxmp.Policy(9))) })
	assert.Panics(t, func() { hpxmp.WithConfig(hpxmp.Config{NumThreads: -1}) })

	rt := newRuntime(t)
	assert.Panics(t, func() { rt.Root().SetNumThreads(0) })
	assert.Panics(t, func() { rt.Root().PushNumThreads(-1) })
	assert.Panics(t, func() { rt.Root().SetMaxActiveLevels(0) })
}

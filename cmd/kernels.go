package main

import (
	"flag"
	"fmt"
	"math"

	"github.com/gitczfranks/hpxMP"
)

func piCommand(args []string) error {
	fs := flag.NewFlagSet("pi", flag.ExitOnError)
	var c common
	c.register(fs)
	steps := fs.Int64("steps", 10_000_000, "number of integration steps")
	sched := fs.String("schedule", "static", "loop schedule: kind[,chunk]")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, chunk, err := hpxmp.ParseSchedule(*sched)
	if err != nil {
		return err
	}
	rt, err := c.runtime()
	if err != nil {
		return err
	}
	defer rt.Close()

	step := 1.0 / float64(*steps)
	var pi float64
	start := hpxmp.Wtime()
	err = rt.Parallel(0, func(t *hpxmp.Thread) error {
		var local float64
		t.For(hpxmp.Schedule{Kind: kind}, 0, *steps, 1, chunk, func(i int64) {
			x := (float64(i) + 0.5) * step
			local += 4.0 / (1.0 + x*x)
		})
		if t.Reduce(&local, false, func(dst, src any) {
			*dst.(*float64) += *src.(*float64)
		}) == hpxmp.ReduceElected {
			pi = local * step
		}
		t.EndReduce(false)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("pi:       %.12f (error %.2e)\n", pi, math.Abs(pi-math.Pi))
	printStats(rt, start)
	return nil
}

func fibCommand(args []string) error {
	fs := flag.NewFlagSet("fib", flag.ExitOnError)
	var c common
	c.register(fs)
	n := fs.Int("n", 30, "Fibonacci index")
	cutoff := fs.Int("cutoff", 15, "below this index the recursion stays serial")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := c.runtime()
	if err != nil {
		return err
	}
	defer rt.Close()

	var result int
	start := hpxmp.Wtime()
	err = rt.Parallel(0, func(t *hpxmp.Thread) error {
		if t.Single() {
			result = fib(t, *n, *cutoff)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("fib(%d):  %d\n", *n, result)
	printStats(rt, start)
	return nil
}

func fib(t *hpxmp.Thread, n, cutoff int) int {
	if n < 2 {
		return n
	}
	if n < cutoff {
		return fib(t, n-1, cutoff) + fib(t, n-2, cutoff)
	}
	var x, y int
	t.Task(func(t *hpxmp.Thread) error {
		x = fib(t, n-1, cutoff)
		return nil
	})
	t.Task(func(t *hpxmp.Thread) error {
		y = fib(t, n-2, cutoff)
		return nil
	})
	t.TaskWait()
	return x + y
}

// waveCommand fills an n by n grid of blocks where every block depends on
// its upper and left neighbours.
func waveCommand(args []string) error {
	fs := flag.NewFlagSet("wave", flag.ExitOnError)
	var c common
	c.register(fs)
	size := fs.Int("size", 16, "blocks per grid side")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *size <= 0 {
		return fmt.Errorf("size must be positive, got %d", *size)
	}

	rt, err := c.runtime()
	if err != nil {
		return err
	}
	defer rt.Close()

	n := *size
	grid := make([][]int64, n)
	for i := range grid {
		grid[i] = make([]int64, n)
	}

	start := hpxmp.Wtime()
	err = rt.Parallel(0, func(t *hpxmp.Thread) error {
		if !t.Single() {
			return nil
		}
		for i := range n {
			for j := range n {
				deps := []hpxmp.Dep{hpxmp.Out(&grid[i][j])}
				if i > 0 {
					deps = append(deps, hpxmp.In(&grid[i-1][j]))
				}
				if j > 0 {
					deps = append(deps, hpxmp.In(&grid[i][j-1]))
				}
				t.Task(func(*hpxmp.Thread) error {
					switch {
					case i == 0 || j == 0:
						grid[i][j] = 1
					default:
						grid[i][j] = grid[i-1][j] + grid[i][j-1]
					}
					return nil
				}, hpxmp.Depend(deps...))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("corner:   %d\n", grid[n-1][n-1])
	printStats(rt, start)
	return nil
}

func icvCommand(args []string) error {
	fs := flag.NewFlagSet("icv", flag.ExitOnError)
	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := c.runtime()
	if err != nil {
		return err
	}
	defer rt.Close()

	root := rt.Root()
	s, chunk := root.Schedule()
	fmt.Printf("num_procs:         %d\n", hpxmp.NumProcs())
	fmt.Printf("max_threads:       %d\n", root.MaxThreads())
	fmt.Printf("dynamic:           %t\n", root.Dynamic())
	fmt.Printf("nested:            %t\n", root.Nested())
	fmt.Printf("max_active_levels: %d\n", root.MaxActiveLevels())
	fmt.Printf("thread_limit:      %d\n", root.ThreadLimit())
	fmt.Printf("schedule:          %s,%d\n", s, chunk)
	fmt.Printf("wtick:             %g\n", hpxmp.Wtick())
	return nil
}

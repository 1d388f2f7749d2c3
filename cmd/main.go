// Package main is a small driver for the hpxmp runtime. It runs a few
// classic fork-join kernels and prints timings and runtime statistics.
//
// Usage:
//
//	hpxmp pi   [-config file] [-threads n] [-steps n] [-schedule kind[,chunk]]
//	hpxmp fib  [-config file] [-threads n] [-n n] [-cutoff n]
//	hpxmp wave [-config file] [-threads n] [-size n]
//	hpxmp icv  [-config file]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gitczfranks/hpxMP"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "pi":
		err = piCommand(os.Args[2:])
	case "fib":
		err = fibCommand(os.Args[2:])
	case "wave":
		err = waveCommand(os.Args[2:])
	case "icv":
		err = icvCommand(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("hpxmp version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`hpxmp - fork-join runtime driver

USAGE:
    hpxmp <command> [flags]

COMMANDS:
    pi         Integrate 4/(1+x^2) with a worksharing loop and a reduction
    fib        Compute Fibonacci numbers with recursive tasks
    wave       Run a blocked wavefront driven by task dependencies
    icv        Print the effective control variables
    version    Show version information
    help       Show this help message

Every command accepts -config to load a YAML configuration document and
-threads to override the team size.
`)
}

// common holds the flags shared by every command.
type common struct {
	config  string
	threads int
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "YAML configuration document")
	fs.IntVar(&c.threads, "threads", 0, "team size (0 uses the configured default)")
}

func (c *common) runtime(extra ...hpxmp.Option) (*hpxmp.Runtime, error) {
	var opts []hpxmp.Option
	if c.config != "" {
		f, err := os.Open(c.config)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		cfg, err := hpxmp.LoadConfig(f)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hpxmp.WithConfig(cfg))
	}
	if c.threads > 0 {
		opts = append(opts, hpxmp.WithNumThreads(c.threads))
	}
	return hpxmp.New(append(opts, extra...)...), nil
}

func printStats(rt *hpxmp.Runtime, start float64) {
	st := rt.Stats()
	fmt.Printf("elapsed:  %.6fs\n", hpxmp.Wtime()-start)
	fmt.Printf("regions:  %d (threads %d)\n", st.Regions, st.Threads)
	fmt.Printf("tasks:    %d created, %d completed\n", st.TasksCreated, st.TasksCompleted)
}

package hpxmp

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the declarative form of the runtime's configuration inputs.
// It is read once when a runtime is built; afterwards only ICV setters
// and [Thread.PushNumThreads] change thread counts.
//
//	num_threads: 8
//	dynamic: false
//	nested: true
//	max_active_levels: 4
//	thread_limit: 64
//	schedule: "guided,4"
type Config struct {
	NumThreads      int    `yaml:"num_threads"`
	Dynamic         *bool  `yaml:"dynamic"`
	Nested          *bool  `yaml:"nested"`
	MaxActiveLevels int    `yaml:"max_active_levels"`
	ThreadLimit     int    `yaml:"thread_limit"`
	Schedule        string `yaml:"schedule"`
}

// LoadConfig decodes a YAML config document. Unknown keys are rejected.
// An empty document yields the zero Config, which keeps every default.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("hpxmp: decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch {
	case cfg.NumThreads < 0:
		return fmt.Errorf("hpxmp: num_threads must be non-negative, got %d", cfg.NumThreads)
	case cfg.MaxActiveLevels < 0:
		return fmt.Errorf("hpxmp: max_active_levels must be non-negative, got %d", cfg.MaxActiveLevels)
	case cfg.ThreadLimit < 0:
		return fmt.Errorf("hpxmp: thread_limit must be non-negative, got %d", cfg.ThreadLimit)
	}
	if cfg.Schedule != "" {
		kind, _, err := ParseSchedule(cfg.Schedule)
		if err != nil {
			return err
		}
		if kind == SchedRuntime {
			return fmt.Errorf("hpxmp: schedule %q cannot defer to itself", cfg.Schedule)
		}
	}
	return nil
}

func (cfg Config) apply(c *config) {
	if cfg.NumThreads > 0 {
		c.numThreads = cfg.NumThreads
	}
	if cfg.Dynamic != nil {
		c.dynamic = *cfg.Dynamic
	}
	if cfg.Nested != nil {
		c.nested = *cfg.Nested
	}
	if cfg.MaxActiveLevels > 0 {
		c.maxActiveLevels = cfg.MaxActiveLevels
	}
	if cfg.ThreadLimit > 0 {
		c.threadLimit = cfg.ThreadLimit
	}
	if cfg.Schedule != "" {
		kind, chunk, _ := ParseSchedule(cfg.Schedule)
		c.schedule = Schedule{Kind: kind}
		c.scheduleChunk = chunk
	}
}

// ParseSchedule parses a schedule in OMP_SCHEDULE syntax: a kind name
// optionally followed by a comma and a chunk size, e.g. "dynamic,4".
// A missing chunk yields 0.
func ParseSchedule(s string) (ScheduleKind, int64, error) {
	name, chunkText, hasChunk := strings.Cut(strings.TrimSpace(s), ",")

	kind, ok := parseKind(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return 0, 0, fmt.Errorf("hpxmp: unknown schedule kind %q", name)
	}
	if !hasChunk {
		return kind, 0, nil
	}

	chunk, err := strconv.ParseInt(strings.TrimSpace(chunkText), 10, 64)
	if err != nil || chunk < 0 {
		return 0, 0, fmt.Errorf("hpxmp: invalid chunk size %q", chunkText)
	}
	return kind, chunk, nil
}

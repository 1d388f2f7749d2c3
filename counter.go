package hpxmp

import "sync"

// waitCounter counts outstanding work and lets callers block until it
// drops to zero. It is reusable: the count may rise again after idling.
type waitCounter struct {
	mu   sync.Mutex
	n    int64
	idle chan struct{}
}

func (c *waitCounter) add(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.n == 0 && delta > 0 {
		c.idle = make(chan struct{})
	}
	c.n += delta
	if c.n < 0 {
		fatalf("task accounting", ErrUsage, "pending count dropped to %d", c.n)
	}
	if c.n == 0 && c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
}

func (c *waitCounter) done() {
	c.add(-1)
}

// wait blocks until the count is zero.
func (c *waitCounter) wait() {
	for {
		c.mu.Lock()
		if c.n == 0 {
			c.mu.Unlock()
			return
		}
		idle := c.idle
		c.mu.Unlock()
		<-idle
	}
}

func (c *waitCounter) load() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

package testutil

import (
	"sync"
	"time"
)

// DefaultTime is the instant NewFixedClock uses when given the zero time.
var DefaultTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// FixedClock is a settable clock for tests.
//
// Unlike engine.WallClock, FixedClock only moves when told to, so sampled
// timestamps and export metadata are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock stopped at t, or at DefaultTime if t is zero.
func NewFixedClock(t time.Time) *FixedClock {
	if t.IsZero() {
		t = DefaultTime
	}
	return &FixedClock{now: t}
}

// Now returns the current fixed instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

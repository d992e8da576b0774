package testutil

import (
	"sync"
	"time"
)

// FakeClock is a manually driven clock for backoff tests.
//
// Sleep records the requested duration and advances Now by Advance(d),
// which defaults to d. Returning less than d simulates an early wake.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// Advance decides how far a Sleep(d) moves the clock.
	Advance func(d time.Duration) time.Duration

	// OnSleep, if set, runs after each Sleep with the 1-based call count.
	OnSleep func(n int)
}

// NewFakeClock creates a clock at a fixed, arbitrary instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the clock instead of blocking.
func (c *FakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	step := d
	if c.Advance != nil {
		step = c.Advance(d)
	}
	c.now = c.now.Add(step)
	n := len(c.sleeps)
	hook := c.OnSleep
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
}

// Sleeps returns every duration passed to Sleep, in order.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// Reset clears the recorded sleeps. The current time is kept.
func (c *FakeClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = nil
}

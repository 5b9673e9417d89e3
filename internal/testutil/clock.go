package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant reported by a DeterministicClock.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultStep is how far a DeterministicClock advances per reading.
const DefaultStep = time.Millisecond

// DeterministicClock provides a thread-safe monotonic logical clock for tests.
//
// Every Now() reading advances the clock by one step from Epoch, so run
// timestamps and test durations are identical across runs and golden files
// stay stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	seq  int64
	step time.Duration
}

// NewDeterministicClock creates a new deterministic clock starting at 0.
//
// The first call to Next() returns 1; the first call to Now() returns
// Epoch plus one step.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{step: DefaultStep}
}

// NewSteppingClock creates a clock that advances by step per reading.
func NewSteppingClock(step time.Duration) *DeterministicClock {
	return &DeterministicClock{step: step}
}

// Next increments and returns the next sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Now advances the clock and returns Epoch + seq*step.
//
// Implements harness.Clock.
func (c *DeterministicClock) Now() time.Time {
	n := c.Next()
	return Epoch.Add(time.Duration(n) * c.step)
}

// Step returns the per-reading increment.
func (c *DeterministicClock) Step() time.Duration {
	return c.step
}

// Reset resets the clock to 0.
//
// Used for test reuse. After Reset(), the next call to Next() returns 1.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

package core

import (
	"time"
)

// Clock abstracts wall-clock reads so session timing can be driven in tests
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant until advanced
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant
func (c *FixedClock) Now() time.Time { return c.T }

// Advance moves the clock forward by d
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// MinutesBetween returns the fractional minutes from start to end
func MinutesBetween(start, end time.Time) float64 {
	return end.Sub(start).Minutes()
}

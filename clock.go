package hpolog

import "time"

// Clock provides the time stamped on emitted reports. It allows injecting a
// fixed time source in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the standard Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock that returns a fixed time.
type FixedClock struct {
	fixedTime time.Time
}

// NewFixedClock creates a FixedClock with the given time.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{fixedTime: t}
}

// SetTime updates the time returned by Now.
func (c *FixedClock) SetTime(t time.Time) {
	c.fixedTime = t
}

// Advance moves the fixed time forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.fixedTime = c.fixedTime.Add(d)
}

// Now returns the fixed time.
func (c *FixedClock) Now() time.Time {
	return c.fixedTime
}

// Compile-time checks.
var (
	_ Clock = SystemClock{}
	_ Clock = (*FixedClock)(nil)
)

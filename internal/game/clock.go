package game

import "time"

// DefaultMaxDelta caps a single step after a stall (debugger, window drag)
const DefaultMaxDelta = 250 * time.Millisecond

// FrameClock measures the time between frames
type FrameClock struct {
	MaxDelta time.Duration

	now  func() time.Time
	last time.Time
}

func NewFrameClock() *FrameClock {
	return &FrameClock{MaxDelta: DefaultMaxDelta, now: time.Now}
}

// NewManualClock returns a clock driven by now, for tests and replays
func NewManualClock(now func() time.Time) *FrameClock {
	return &FrameClock{MaxDelta: DefaultMaxDelta, now: now}
}

// Reset makes the next Tick measure from now
func (c *FrameClock) Reset() {
	c.last = c.now()
}

// Tick returns seconds since the previous Tick, never negative and never
// above MaxDelta. The first tick after construction returns zero.
func (c *FrameClock) Tick() float32 {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	d := now.Sub(c.last)
	c.last = now
	if d < 0 {
		d = 0
	}
	if c.MaxDelta > 0 && d > c.MaxDelta {
		d = c.MaxDelta
	}
	return float32(d.Seconds())
}

package autofocus

import (
	"time"
)

// FocusClock gates the coarse update: it accumulates the time between calls
// and lets one through every Rate.
type FocusClock struct {
	Enabled bool
	Rate    time.Duration

	lastTime time.Time
	elapsed  time.Duration
}

func NewFocusClock(enabled bool, rate time.Duration, now time.Time) *FocusClock {
	return &FocusClock{
		Enabled:  enabled,
		Rate:     rate,
		lastTime: now,
	}
}

// Tick reports whether the caller should run its update at now.
func (c *FocusClock) Tick(now time.Time) bool {
	if !c.Enabled || c.Rate <= 0 {
		c.lastTime = now
		return true
	}

	// A clock stepping backwards contributes nothing.
	if delta := now.Sub(c.lastTime); delta > 0 {
		c.elapsed += delta
	}
	c.lastTime = now

	if c.elapsed >= c.Rate {
		c.elapsed = 0
		return true
	}
	return false
}

func (c *FocusClock) Reset(now time.Time) {
	c.lastTime = now
	c.elapsed = 0
}

func (c *FocusClock) Elapsed() time.Duration {
	return c.elapsed
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

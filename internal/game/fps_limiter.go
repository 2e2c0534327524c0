package game

import (
	"time"

	"shadowview/internal/config"
)

// spinWindow is how much of each wait is busy-spun instead of slept
const spinWindow = 200 * time.Microsecond

// FPSLimiter caps the frame rate
type FPSLimiter struct {
	limit func() int
	next  time.Time
}

// NewFPSLimiter follows the runtime FPS setting
func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{limit: config.GetFPSLimit}
}

// NewFixedFPSLimiter caps at fps regardless of settings; fps <= 0 is uncapped
func NewFixedFPSLimiter(fps int) *FPSLimiter {
	return &FPSLimiter{limit: func() int { return fps }}
}

// Budget is the frame duration for the current cap, zero when uncapped
func (f *FPSLimiter) Budget() time.Duration {
	fps := f.limit()
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}

// Wait blocks until the next frame should start. It sleeps most of the gap
// and spins the rest, which is far more precise at high caps.
func (f *FPSLimiter) Wait() {
	target := f.Budget()
	if target == 0 {
		f.next = time.Time{}
		return
	}

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > spinWindow {
			time.Sleep(remaining - spinWindow)
		}
	}

	// After a hitch, resync instead of rushing frames to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}

package detector

import "time"

// Clock supplies sample timestamps. Values from time.Now carry a monotonic
// reading, so cooldowns are immune to wall-clock jumps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

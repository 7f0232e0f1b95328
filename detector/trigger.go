package detector

import "time"

// Default cooldown windows.
const (
	LockCooldown  = 1200 * time.Millisecond
	PulseCooldown = 600 * time.Millisecond
)

// Decision is the outcome of one Trigger step.
type Decision struct {
	Above bool // intensity >= threshold on this tick
	Fired bool // lock event
	Pulse bool // haptic feedback event
}

// cooldown rate-limits one kind of event. A zero value has never fired, so
// the first qualifying edge always passes.
type cooldown struct {
	window time.Duration
	last   time.Time
	fired  bool
}

func (c *cooldown) try(now time.Time) bool {
	if c.fired && now.Sub(c.last) <= c.window {
		return false
	}
	c.last = now
	c.fired = true
	return true
}

// Trigger converts a continuous intensity stream into discrete events. Both
// events fire only on a below-to-above edge and each keeps its own cooldown.
//
// There is no hysteresis: an intensity hovering exactly at the threshold can
// produce one event per cooldown window.
type Trigger struct {
	wasAbove bool
	lock     cooldown
	pulse    cooldown
}

// NewTrigger creates a Trigger. Zero durations select LockCooldown and
// PulseCooldown.
func NewTrigger(lockWindow, pulseWindow time.Duration) *Trigger {
	if lockWindow <= 0 {
		lockWindow = LockCooldown
	}
	if pulseWindow <= 0 {
		pulseWindow = PulseCooldown
	}
	return &Trigger{
		lock:  cooldown{window: lockWindow},
		pulse: cooldown{window: pulseWindow},
	}
}

// Process evaluates one intensity against the threshold at time now. now
// should carry a monotonic clock reading (as time.Now does) so wall-clock
// adjustments cannot shorten or extend a cooldown.
func (t *Trigger) Process(intensity, threshold float64, now time.Time) Decision {
	d := Decision{Above: intensity >= threshold}
	if d.Above && !t.wasAbove {
		d.Fired = t.lock.try(now)
		d.Pulse = t.pulse.try(now)
	}
	t.wasAbove = d.Above
	return d
}

// Above reports whether the last processed intensity was at or above threshold.
func (t *Trigger) Above() bool {
	return t.wasAbove
}

// LastFired returns the time of the last lock event and whether one happened.
func (t *Trigger) LastFired() (time.Time, bool) {
	return t.lock.last, t.lock.fired
}

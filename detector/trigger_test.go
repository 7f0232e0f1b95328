package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func TestTriggerStateTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		wasAbove  bool
		intensity float64
		cooledOff bool
		want      Decision
		nextAbove bool
	}{
		{"below stays below", false, 0.5, true, Decision{}, false},
		{"rising edge fires", false, 1.5, true, Decision{Above: true, Fired: true, Pulse: true}, true},
		{"rising edge in cooldown", false, 1.5, false, Decision{Above: true}, true},
		{"held above", true, 1.5, true, Decision{Above: true}, true},
		{"falling edge", true, 0.5, true, Decision{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr := NewTrigger(0, 0)
			now := at(10_000)
			if !tc.cooledOff {
				tr.lock.try(now.Add(-100 * time.Millisecond))
				tr.pulse.try(now.Add(-100 * time.Millisecond))
			}
			tr.wasAbove = tc.wasAbove

			got := tr.Process(tc.intensity, 1.2, now)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.nextAbove, tr.Above())
		})
	}
}

func TestTriggerFiresAtThreshold(t *testing.T) {
	t.Parallel()
	tr := NewTrigger(0, 0)

	assert.Equal(t, Decision{}, tr.Process(0, 1.20, at(0)))
	assert.Equal(t, Decision{}, tr.Process(0.4, 1.20, at(10)))

	d := tr.Process(1.20, 1.20, at(20))
	assert.True(t, d.Above)
	assert.True(t, d.Fired)

	d = tr.Process(1.20, 1.20, at(30))
	assert.True(t, d.Above)
	assert.False(t, d.Fired)

	last, ok := tr.LastFired()
	assert.True(t, ok)
	assert.Equal(t, at(20), last)
}

func TestTriggerCooldown(t *testing.T) {
	t.Parallel()
	tr := NewTrigger(0, 0)

	assert.True(t, tr.Process(2, 1.2, at(0)).Fired)

	// Oscillate across the threshold for the whole window.
	for ms := 50; ms <= 1200; ms += 50 {
		intensity := 0.0
		if (ms/50)%2 == 0 {
			intensity = 2
		}
		assert.False(t, tr.Process(intensity, 1.2, at(ms)).Fired, "t=%dms", ms)
	}

	// Still above from the 1200 ms tick: no edge, no fire.
	assert.False(t, tr.Process(2, 1.2, at(1250)).Fired)
	tr.Process(0, 1.2, at(1260))
	assert.True(t, tr.Process(2, 1.2, at(1270)).Fired)
}

func TestTriggerCooldownBoundary(t *testing.T) {
	t.Parallel()
	tr := NewTrigger(0, 0)

	tr.Process(2, 1.2, at(0))
	tr.Process(0, 1.2, at(600))
	assert.False(t, tr.Process(2, 1.2, at(1200)).Fired, "window is exclusive")
	tr.Process(0, 1.2, at(1201))
	assert.True(t, tr.Process(2, 1.2, at(1202)).Fired)
}

func TestTriggerPulseHasOwnCooldown(t *testing.T) {
	t.Parallel()
	tr := NewTrigger(0, 0)

	d := tr.Process(2, 1.2, at(0))
	assert.True(t, d.Fired)
	assert.True(t, d.Pulse)

	tr.Process(0, 1.2, at(300))
	d = tr.Process(2, 1.2, at(400))
	assert.Equal(t, Decision{Above: true}, d)

	tr.Process(0, 1.2, at(650))
	d = tr.Process(2, 1.2, at(700))
	assert.True(t, d.Pulse)
	assert.False(t, d.Fired)
}

func TestTriggerThresholdChangeMidExcursion(t *testing.T) {
	t.Parallel()
	tr := NewTrigger(0, 0)

	assert.False(t, tr.Process(1.0, 1.5, at(0)).Above)
	// Lowering the threshold turns the same intensity into an edge.
	assert.True(t, tr.Process(1.0, 0.8, at(10)).Fired)

	// Lowering again while already above does not fire a second time.
	tr.Process(0.3, 1.5, at(2000))
	assert.True(t, tr.Process(1.0, 0.9, at(2010)).Fired)
	assert.False(t, tr.Process(1.0, 0.5, at(4000)).Fired)
}

func TestTriggerCustomCooldowns(t *testing.T) {
	t.Parallel()
	tr := NewTrigger(100*time.Millisecond, 50*time.Millisecond)

	assert.True(t, tr.Process(2, 1.2, at(0)).Fired)
	tr.Process(0, 1.2, at(50))
	d := tr.Process(2, 1.2, at(101))
	assert.True(t, d.Fired)
	assert.True(t, d.Pulse)
}

// Package screen tracks whether the display is on so that lock events raised
// while it is off can be dropped.
package screen

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrUnknown is returned by a Probe that cannot determine the display state.
var ErrUnknown = errors.New("screen: state unknown")

// Probe reports whether the display is on.
type Probe func() (bool, error)

// Monitor caches the display state. It starts in the on state and treats
// the screen as off as soon as any probe says so; probes that fail are
// ignored.
type Monitor struct {
	probes []Probe
	on     atomic.Bool
}

// NewMonitor creates a Monitor using the given probes.
func NewMonitor(probes ...Probe) *Monitor {
	m := &Monitor{probes: probes}
	m.on.Store(true)
	return m
}

// ScreenOn returns the cached state.
func (m *Monitor) ScreenOn() bool {
	return m.on.Load()
}

// Set overrides the cached state until the next Refresh.
func (m *Monitor) Set(on bool) {
	m.on.Store(on)
}

// Refresh polls every probe and updates the cached state. It returns the
// joined probe errors; the state is left unchanged when every probe fails.
func (m *Monitor) Refresh() error {
	var (
		errs  []error
		known bool
		on    = true
	)
	for _, p := range m.probes {
		v, err := p()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		known = true
		on = on && v
	}
	if known {
		if prev := m.on.Swap(on); prev != on {
			log.WithField("on", on).Debug("display state changed")
		}
	}
	return errors.Join(errs...)
}

// Run refreshes the state every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if len(m.probes) == 0 {
		return
	}
	_ = m.Refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.Refresh()
		}
	}
}

// AngleReader yields the latest lid angle when it has changed. It is
// satisfied by shm.Snapshot.
type AngleReader interface {
	ReadFloat32(lastCount uint32) (float32, uint32, bool)
}

// LidProbe treats the display as off once the lid angle drops to closedDeg
// or below. It reports ErrUnknown until the first reading arrives.
func LidProbe(r AngleReader, closedDeg float64) Probe {
	var (
		count uint32
		angle float64
		seen  bool
	)
	return func() (bool, error) {
		v, c, changed := r.ReadFloat32(count)
		count = c
		if changed {
			angle = float64(v)
			seen = true
		}
		if !seen {
			return false, ErrUnknown
		}
		return angle > closedDeg, nil
	}
}

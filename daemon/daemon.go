// Package daemon drives the detector pipeline from a sample source and
// dispatches the resulting lock and pulse actions.
package daemon

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/taigrr/shakelock/detector"
	"github.com/taigrr/shakelock/pulse"
)

// Defaults for Daemon.
const (
	DefaultInterval = 10 * time.Millisecond
	DefaultMaxBatch = 200
	pulseTimeout    = time.Second
)

// Source yields the samples that arrived since the previous call, oldest
// first.
type Source interface {
	Next() []detector.Sample
}

// SourceFunc adapts a function to Source.
type SourceFunc func() []detector.Sample

// Next implements Source.
func (f SourceFunc) Next() []detector.Sample { return f() }

// Dispatcher runs lock requests off the sample loop. *lock.Dispatcher
// satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context) bool
}

// Daemon polls a Source and feeds a Pipeline.
type Daemon struct {
	Source   Source
	Pipeline *detector.Pipeline
	Locker   Dispatcher
	Pulser   pulse.Pulser // optional
	Clock    detector.Clock

	Interval time.Duration
	MaxBatch int
	// Rate is the writer's sample rate in Hz; 0 means detector.SampleRate.
	Rate int

	last        time.Time
	dropped     atomic.Uint64
	pulsing     atomic.Bool
	pulseWarned atomic.Bool
}

// Run polls until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.Step(ctx)
		}
	}
}

// Step drains the source once. Samples in a batch are back-dated from now
// at Rate, and never stamped earlier than the previous sample. Non-finite
// samples are dropped.
func (d *Daemon) Step(ctx context.Context) {
	samples := d.Source.Next()
	maxBatch := d.MaxBatch
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	if len(samples) > maxBatch {
		samples = samples[len(samples)-maxBatch:]
	}
	if len(samples) == 0 {
		return
	}

	rate := d.Rate
	if rate <= 0 {
		rate = detector.SampleRate
	}
	now := d.now()
	n := len(samples)
	for idx, s := range samples {
		if !s.Finite() {
			if c := d.dropped.Add(1); c == 1 || c%100 == 0 {
				log.WithField("dropped", c).Warn("dropping non-finite samples")
			}
			continue
		}
		t := now.Add(-time.Duration(n-idx-1) * time.Second / time.Duration(rate))
		if t.Before(d.last) {
			t = d.last
		}
		d.last = t
		d.handle(ctx, d.Pipeline.Process(s, t))
	}
}

func (d *Daemon) handle(ctx context.Context, r detector.Result) {
	fields := log.Fields{"intensity": r.Intensity, "threshold": r.Threshold}
	switch {
	case r.Lock:
		if d.Locker != nil && !d.Locker.Dispatch(ctx) {
			log.WithFields(fields).Debug("lock already in progress")
		} else {
			log.WithFields(fields).Info("shake detected")
		}
	case r.Fired:
		log.WithFields(fields).Info("shake ignored, screen is off")
	}
	if r.Pulse {
		d.pulse(ctx)
	}
}

// pulse fires the pulser in the background, skipping if one is running.
func (d *Daemon) pulse(ctx context.Context) {
	if d.Pulser == nil || !d.pulsing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer d.pulsing.Store(false)
		ctx, cancel := context.WithTimeout(ctx, pulseTimeout)
		defer cancel()
		if err := d.Pulser.Pulse(ctx); err != nil {
			entry := log.WithError(err)
			if d.pulseWarned.CompareAndSwap(false, true) {
				entry.Warn("feedback pulse failed")
			} else {
				entry.Debug("feedback pulse failed")
			}
		}
	}()
}

func (d *Daemon) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock.Now()
}

// Dropped returns the number of non-finite samples discarded.
func (d *Daemon) Dropped() uint64 {
	return d.dropped.Load()
}

// Pulsing reports whether a pulse is running.
func (d *Daemon) Pulsing() bool {
	return d.pulsing.Load()
}

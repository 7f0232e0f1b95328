// Package detector turns raw accelerometer samples into a shake intensity,
// a smoothed gauge reading, and edge-triggered, cooldown-gated lock events.
//
// Every type in this package owns its state and expects exclusive,
// non-reentrant access. Callers that deliver samples from more than one
// goroutine must serialize calls themselves.
package detector

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// StandardGravity is one g in m/s².
const StandardGravity = 9.80665

const (
	// GravityAlpha is the per-axis low-pass coefficient of the gravity estimate.
	GravityAlpha = 0.85
	// Deadzone is the intensity in g below which output is forced to zero.
	Deadzone = 0.03
)

// Sample is one accelerometer reading in m/s².
type Sample struct {
	X, Y, Z float64
}

// FromG builds a Sample from a reading expressed in g.
func FromG(x, y, z float64) Sample {
	return Sample{X: x * StandardGravity, Y: y * StandardGravity, Z: z * StandardGravity}
}

// Finite reports whether every axis holds a finite value. Samples that fail
// this check must be dropped before they reach a MotionFilter.
func (s Sample) Finite() bool {
	for _, v := range [3]float64{s.X, s.Y, s.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MotionFilter separates the slowly varying gravity vector from linear
// (shake) acceleration and reports the latter's magnitude in g.
//
// The gravity estimate starts at zero and is never reset; orientation
// changes are absorbed by the low-pass filter over a few dozen samples.
// A non-finite sample yields a NaN intensity and poisons the estimate for
// that one tick only.
type MotionFilter struct {
	gravity [3]float64
	linear  [3]float64
}

// NewMotionFilter returns a filter with a zero gravity estimate.
func NewMotionFilter() *MotionFilter {
	return &MotionFilter{}
}

// Gravity returns the current gravity estimate in m/s².
func (f *MotionFilter) Gravity() [3]float64 {
	return f.gravity
}

// Linear returns the linear acceleration computed by the last Update, in m/s².
func (f *MotionFilter) Linear() [3]float64 {
	return f.linear
}

// Update ingests one sample and returns the shake intensity in g.
func (f *MotionFilter) Update(s Sample) float64 {
	in := [3]float64{s.X, s.Y, s.Z}
	for i := range 3 {
		// A non-finite estimate restarts from zero on the next sample.
		if math.IsNaN(f.gravity[i]) || math.IsInf(f.gravity[i], 0) {
			f.gravity[i] = 0
		}
		f.gravity[i] = GravityAlpha*f.gravity[i] + (1-GravityAlpha)*in[i]
		f.linear[i] = in[i] - f.gravity[i]
	}

	g := floats.Norm(f.linear[:], 2) / StandardGravity
	if g < Deadzone {
		return 0
	}
	return g
}

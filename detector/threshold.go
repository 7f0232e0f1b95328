package detector

import (
	"math"
	"sync/atomic"
)

// Threshold bounds, in g.
const (
	MinThreshold     = 0.5
	MaxThreshold     = 3.0
	DefaultThreshold = 1.20

	// MaxPosition is the top of the 0.01 g step slider scale.
	MaxPosition = 250
)

// ClampThreshold limits g to [MinThreshold, MaxThreshold]. NaN maps to
// DefaultThreshold.
func ClampThreshold(g float64) float64 {
	if math.IsNaN(g) {
		return DefaultThreshold
	}
	return math.Max(MinThreshold, math.Min(MaxThreshold, g))
}

// ThresholdFromPosition maps a slider position 0..MaxPosition to g.
func ThresholdFromPosition(pos int) float64 {
	pos = max(0, min(MaxPosition, pos))
	return MinThreshold + float64(pos)/100
}

// PositionFromThreshold maps g back to the nearest slider position.
func PositionFromThreshold(g float64) int {
	pos := int(math.Round((ClampThreshold(g) - MinThreshold) * 100))
	return max(0, min(MaxPosition, pos))
}

// ThresholdSource supplies the current threshold in g.
type ThresholdSource interface {
	Load() float64
}

// Threshold is a live, clamped threshold value shared between one writer
// (the settings watcher) and any number of readers.
type Threshold struct {
	bits atomic.Uint64
}

// NewThreshold returns a Threshold holding the clamped value g.
func NewThreshold(g float64) *Threshold {
	t := &Threshold{}
	t.Store(g)
	return t
}

// Load returns the current threshold.
func (t *Threshold) Load() float64 {
	return math.Float64frombits(t.bits.Load())
}

// Store clamps g, publishes it, and returns the stored value.
func (t *Threshold) Store(g float64) float64 {
	g = ClampThreshold(g)
	t.bits.Store(math.Float64bits(g))
	return g
}

// Fixed is a constant ThresholdSource.
type Fixed float64

// Load returns f.
func (f Fixed) Load() float64 { return float64(f) }

package detector

import "math"

const (
	gaugeKeep = 0.82
	gaugeGain = 0.18

	// minGaugeThreshold stands in for a non-positive threshold.
	minGaugeThreshold = 1e-6
)

// Gauge exponentially smooths intensity relative to the threshold for
// progress-style display. It has no influence on Trigger.
type Gauge struct {
	smoothed float64
}

// Update folds one intensity into the gauge and returns a percentage in [0,100].
func (g *Gauge) Update(intensity, threshold float64) int {
	if !(threshold > minGaugeThreshold) {
		threshold = minGaugeThreshold
	}

	p := intensity / threshold
	switch {
	case !(p > 0):
		p = 0
	case p > 1:
		p = 1
	}

	g.smoothed = g.smoothed*gaugeKeep + p*gaugeGain
	return g.Percent()
}

// Value returns the smoothed fraction in [0,1].
func (g *Gauge) Value() float64 {
	return g.smoothed
}

// Percent returns the smoothed value rounded to a whole percentage.
func (g *Gauge) Percent() int {
	return int(math.Round(g.smoothed * 100))
}

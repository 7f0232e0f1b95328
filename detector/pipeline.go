package detector

import "time"

// SampleRate is the nominal input rate in Hz used to back-date batched samples.
const SampleRate = 100

// maxEvents bounds the in-memory event log.
const maxEvents = 500

// ScreenSource reports whether the display is on.
type ScreenSource interface {
	ScreenOn() bool
}

// EventKind distinguishes lock events from feedback pulses.
type EventKind int

const (
	EventLock EventKind = iota
	EventPulse
)

func (k EventKind) String() string {
	switch k {
	case EventLock:
		return "lock"
	case EventPulse:
		return "pulse"
	default:
		return "unknown"
	}
}

// Event records one emitted trigger.
type Event struct {
	Time      time.Time
	Kind      EventKind
	Intensity float64
	Threshold float64
	// Suppressed is set on lock events raised while the screen was off.
	Suppressed bool
}

// Result is everything one Pipeline step produces.
type Result struct {
	Intensity float64
	Threshold float64
	Percent   int
	Above     bool
	Fired     bool
	Pulse     bool
	// Lock is Fired gated by the screen state: a lock event raised while the
	// display is off still consumes the cooldown but is not dispatched.
	Lock bool
}

// PipelineConfig wires a Pipeline to its collaborators.
type PipelineConfig struct {
	Threshold     ThresholdSource // nil means DefaultThreshold
	Screen        ScreenSource    // nil means always on
	LockCooldown  time.Duration
	PulseCooldown time.Duration
	HistoryLen    int // intensity samples kept; 0 means 5 s at SampleRate
}

// Pipeline runs MotionFilter, Trigger and Gauge over a sample stream.
type Pipeline struct {
	Filter  *MotionFilter
	Trigger *Trigger
	Gauge   *Gauge

	// History holds recent intensities for display.
	History *RingFloat
	Events  []Event

	SampleCount int
	Last        Result

	threshold ThresholdSource
	screen    ScreenSource
}

// NewPipeline creates a Pipeline from cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	th := cfg.Threshold
	if th == nil {
		th = Fixed(DefaultThreshold)
	}
	n := cfg.HistoryLen
	if n <= 0 {
		n = SampleRate * 5
	}
	return &Pipeline{
		Filter:    NewMotionFilter(),
		Trigger:   NewTrigger(cfg.LockCooldown, cfg.PulseCooldown),
		Gauge:     &Gauge{},
		History:   NewRingFloat(n),
		threshold: th,
		screen:    cfg.Screen,
	}
}

// Process ingests one well-formed sample observed at now.
func (p *Pipeline) Process(s Sample, now time.Time) Result {
	p.SampleCount++

	th := ClampThreshold(p.threshold.Load())
	intensity := p.Filter.Update(s)
	p.History.Push(intensity)

	d := p.Trigger.Process(intensity, th, now)
	r := Result{
		Intensity: intensity,
		Threshold: th,
		Percent:   p.Gauge.Update(intensity, th),
		Above:     d.Above,
		Fired:     d.Fired,
		Pulse:     d.Pulse,
	}

	if d.Fired {
		r.Lock = p.screenOn()
		p.record(Event{Time: now, Kind: EventLock, Intensity: intensity, Threshold: th, Suppressed: !r.Lock})
	}
	if d.Pulse {
		p.record(Event{Time: now, Kind: EventPulse, Intensity: intensity, Threshold: th})
	}

	p.Last = r
	return r
}

func (p *Pipeline) screenOn() bool {
	return p.screen == nil || p.screen.ScreenOn()
}

func (p *Pipeline) record(ev Event) {
	p.Events = append(p.Events, ev)
	if len(p.Events) > maxEvents {
		p.Events = p.Events[len(p.Events)-maxEvents:]
	}
}

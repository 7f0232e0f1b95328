package pulse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
)

// ToneRate is the output sample rate of Tone.
const ToneRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Tone plays a short sine beep on the default audio device.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

// Pulse implements Pulser.
func (t Tone) Pulse(ctx context.Context) error {
	s, err := t.streamer()
	if err != nil {
		return err
	}

	speakerOnce.Do(func() {
		speakerErr = speaker.Init(ToneRate, ToneRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("initializing speaker: %w", speakerErr)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// streamer builds the attenuated, time-limited sine for t.
func (t Tone) streamer() (beep.Streamer, error) {
	sine, err := generators.SineTone(ToneRate, t.Freq)
	if err != nil {
		return nil, fmt.Errorf("tone %.0f Hz: %w", t.Freq, err)
	}
	return &effects.Gain{
		Streamer: beep.Take(ToneRate.N(t.Duration), sine),
		Gain:     -0.75,
	}, nil
}

// Package app builds the collaborators shared by the shakelock binaries from
// a loaded configuration.
package app

import (
	"io"
	"runtime"
	"time"

	"github.com/taigrr/shakelock/config"
	"github.com/taigrr/shakelock/detector"
	"github.com/taigrr/shakelock/lock"
	"github.com/taigrr/shakelock/pulse"
	"github.com/taigrr/shakelock/screen"
	"github.com/taigrr/shakelock/sensor"
)

// LoadConfig loads the config at path, or at the default location when path
// is empty, and applies its log level.
func LoadConfig(path string, verbose bool) (*config.Config, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.SetupLogging(cfg.LogLevel, verbose); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewDispatcher prefers the native session lock, then the configured lock
// command, and falls back to a terminal lock screen on in/out when enabled.
func NewDispatcher(cfg config.LockConfig, in io.Reader, out io.Writer) *lock.Dispatcher {
	var privileged lock.Locker = &lock.CommandLocker{Argv: cfg.Command}
	if session := (lock.SessionLocker{}); session.Available() {
		privileged = session
	}
	d := &lock.Dispatcher{Privileged: privileged}
	if cfg.Fallback {
		d.Fallback = &lock.TerminalLocker{In: in, Out: out, Phrase: cfg.UnlockPhrase}
	}
	return d
}

// NewPulser returns the enabled feedback pulsers, or nil when none are.
func NewPulser(cfg config.PulseConfig) pulse.Pulser {
	var m pulse.Multi
	if cfg.Backlight {
		m = append(m, &pulse.Backlight{
			KeyboardID: cfg.KeyboardID,
			Level:      1,
			Duration:   cfg.Duration(),
		})
	}
	if cfg.Tone {
		m = append(m, pulse.Tone{Freq: cfg.ToneFreqHz, Duration: cfg.Duration()})
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

// NewMonitor returns a screen monitor using the platform display probe and,
// when lid is non-nil, the lid angle.
func NewMonitor(cfg config.ScreenConfig, lid screen.AngleReader) *screen.Monitor {
	probes := []screen.Probe{screen.DisplayProbe()}
	if cfg.UseLid && lid != nil {
		probes = append(probes, screen.LidProbe(lid, cfg.LidClosedDeg))
	}
	return screen.NewMonitor(probes...)
}

// PollInterval returns the screen polling interval.
func PollInterval(cfg config.ScreenConfig) time.Duration {
	if cfg.PollMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(cfg.PollMs) * time.Millisecond
}

// SampleRate returns the rate sensord publishes at on this platform.
func SampleRate(cfg config.SensorConfig) int {
	return sampleRate(runtime.GOOS, cfg)
}

func sampleRate(goos string, cfg config.SensorConfig) int {
	if goos == "darwin" {
		return sensor.IMURateHz
	}
	if cfg.RateHz > 0 {
		return cfg.RateHz
	}
	return detector.SampleRate
}

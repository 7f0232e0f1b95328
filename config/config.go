// Package config loads shakelock settings and the persisted state shared
// between the daemon and shakectl.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config is the static daemon configuration.
type Config struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	StatePath string `toml:"state_path" yaml:"state_path"`

	Detector DetectorConfig `toml:"detector" yaml:"detector"`
	Lock     LockConfig     `toml:"lock" yaml:"lock"`
	Pulse    PulseConfig    `toml:"pulse" yaml:"pulse"`
	Screen   ScreenConfig   `toml:"screen" yaml:"screen"`
	Sensor   SensorConfig   `toml:"sensor" yaml:"sensor"`
}

// DetectorConfig tunes the trigger.
type DetectorConfig struct {
	LockCooldownMs  int `toml:"lock_cooldown_ms" yaml:"lock_cooldown_ms"`
	PulseCooldownMs int `toml:"pulse_cooldown_ms" yaml:"pulse_cooldown_ms"`
	HistorySeconds  int `toml:"history_seconds" yaml:"history_seconds"`
}

// LockCooldown returns the lock cooldown as a duration.
func (d DetectorConfig) LockCooldown() time.Duration {
	return time.Duration(d.LockCooldownMs) * time.Millisecond
}

// PulseCooldown returns the pulse cooldown as a duration.
func (d DetectorConfig) PulseCooldown() time.Duration {
	return time.Duration(d.PulseCooldownMs) * time.Millisecond
}

// LockConfig selects how a lock event is carried out.
type LockConfig struct {
	// Command is run when the native session lock is unavailable,
	// e.g. ["loginctl", "lock-session"].
	Command []string `toml:"command" yaml:"command"`
	// Fallback shows a blocking terminal screen when nothing else can lock.
	Fallback bool `toml:"fallback" yaml:"fallback"`
	// UnlockPhrase dismisses the fallback screen.
	UnlockPhrase string `toml:"unlock_phrase" yaml:"unlock_phrase"`
}

// PulseConfig selects feedback outputs for threshold crossings.
type PulseConfig struct {
	Backlight  bool    `toml:"backlight" yaml:"backlight"`
	Tone       bool    `toml:"tone" yaml:"tone"`
	DurationMs int     `toml:"duration_ms" yaml:"duration_ms"`
	ToneFreqHz float64 `toml:"tone_freq_hz" yaml:"tone_freq_hz"`
	KeyboardID uint64  `toml:"keyboard_id" yaml:"keyboard_id"`
}

// Duration returns the pulse length.
func (p PulseConfig) Duration() time.Duration {
	return time.Duration(p.DurationMs) * time.Millisecond
}

// ScreenConfig controls display-state polling.
type ScreenConfig struct {
	PollMs       int     `toml:"poll_ms" yaml:"poll_ms"`
	UseLid       bool    `toml:"use_lid" yaml:"use_lid"`
	LidClosedDeg float64 `toml:"lid_closed_deg" yaml:"lid_closed_deg"`
}

// SensorConfig configures sensord on hosts with an external I2C accelerometer.
type SensorConfig struct {
	Bus    string `toml:"bus" yaml:"bus"`
	Addr   uint16 `toml:"addr" yaml:"addr"`
	RateHz int    `toml:"rate_hz" yaml:"rate_hz"`
}

// DefaultConfig returns the built-in configuration. The pulse defaults to
// the keyboard backlight on macOS and to a tone elsewhere.
func DefaultConfig() *Config {
	darwin := runtime.GOOS == "darwin"
	return &Config{
		LogLevel: "info",
		Detector: DetectorConfig{
			LockCooldownMs:  1200,
			PulseCooldownMs: 600,
			HistorySeconds:  5,
		},
		Lock: LockConfig{
			Command:      []string{"loginctl", "lock-session"},
			Fallback:     true,
			UnlockPhrase: "unlock",
		},
		Pulse: PulseConfig{
			Backlight:  darwin,
			Tone:       !darwin,
			DurationMs: 25,
			ToneFreqHz: 880,
			KeyboardID: 1,
		},
		Screen: ScreenConfig{
			PollMs:       500,
			UseLid:       true,
			LidClosedDeg: 10,
		},
		Sensor: SensorConfig{
			Addr:   0x53,
			RateHz: 100,
		},
	}
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shakelock"), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config at path. A missing file is created with defaults.
// The format (TOML or YAML) follows the file extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
		cfg.resolve(path)
		return cfg, nil
	}

	if err := decodeFile(path, cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.resolve(path)
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	return encodeFile(path, cfg)
}

// resolve fills path-relative defaults after decoding.
func (c *Config) resolve(path string) {
	if c.StatePath == "" {
		c.StatePath = filepath.Join(filepath.Dir(path), "state"+filepath.Ext(path))
	} else if !filepath.IsAbs(c.StatePath) {
		c.StatePath = filepath.Join(filepath.Dir(path), c.StatePath)
	}
}

package app

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/shakelock/config"
	"github.com/taigrr/shakelock/lock"
	"github.com/taigrr/shakelock/pulse"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Detector, cfg.Detector)
	assert.FileExists(t, path)
}

func TestNewDispatcherFallback(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfig().Lock

	d := NewDispatcher(cfg, strings.NewReader(""), &bytes.Buffer{})
	require.NotNil(t, d.Privileged)
	require.IsType(t, &lock.TerminalLocker{}, d.Fallback)
	assert.Equal(t, "unlock", d.Fallback.(*lock.TerminalLocker).Phrase)

	cfg.Fallback = false
	d = NewDispatcher(cfg, nil, nil)
	assert.Nil(t, d.Fallback)
}

func TestNewPulser(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfig().Pulse

	cfg.Backlight, cfg.Tone = false, false
	assert.Nil(t, NewPulser(cfg))

	cfg.Tone = true
	assert.Equal(t, pulse.Tone{Freq: 880, Duration: 25 * time.Millisecond}, NewPulser(cfg))

	cfg.Backlight = true
	m, ok := NewPulser(cfg).(pulse.Multi)
	require.True(t, ok)
	assert.Len(t, m, 2)
}

func TestSampleRate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		goos string
		cfg  config.SensorConfig
		want int
	}{
		{"darwin", config.SensorConfig{RateHz: 400}, 125},
		{"linux", config.SensorConfig{RateHz: 200}, 200},
		{"linux", config.SensorConfig{}, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sampleRate(tt.goos, tt.cfg), "%s %+v", tt.goos, tt.cfg)
	}
}

func TestPollInterval(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 500*time.Millisecond, PollInterval(config.ScreenConfig{}))
	assert.Equal(t, 50*time.Millisecond, PollInterval(config.ScreenConfig{PollMs: 50}))
}

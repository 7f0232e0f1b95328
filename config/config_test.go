package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/shakelock/detector"
)

func TestLoadCreatesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 1200*time.Millisecond, cfg.Detector.LockCooldown())
	assert.Equal(t, 600*time.Millisecond, cfg.Detector.PulseCooldown())
	assert.Equal(t, 25*time.Millisecond, cfg.Pulse.Duration())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "state.toml"), cfg.StatePath)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestDefaultPulseIsSupported(t *testing.T) {
	t.Parallel()
	p := DefaultConfig().Pulse
	if runtime.GOOS == "darwin" {
		assert.True(t, p.Backlight)
		assert.False(t, p.Tone)
		return
	}
	assert.False(t, p.Backlight, "keyboard backlight only exists on macOS")
	assert.True(t, p.Tone)
}

func TestLoadFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "toml",
			file: "config.toml",
			body: `
log_level = "debug"
state_path = "run/state.toml"

[detector]
lock_cooldown_ms = 2000

[lock]
command = ["xdg-screensaver", "lock"]
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			body: `
log_level: debug
state_path: run/state.toml
detector:
  lock_cooldown_ms: 2000
lock:
  command: [xdg-screensaver, lock]
`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			path := filepath.Join(dir, tc.file)
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "debug", cfg.LogLevel)
			assert.Equal(t, 2*time.Second, cfg.Detector.LockCooldown())
			assert.Equal(t, 600*time.Millisecond, cfg.Detector.PulseCooldown(), "unset keys keep defaults")
			assert.Equal(t, []string{"xdg-screensaver", "lock"}, cfg.Lock.Command)
			assert.Equal(t, filepath.Join(dir, "run", "state.toml"), cfg.StatePath)
		})
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = = ="), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"state.toml", "state.yml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), name)

			st, err := LoadState(path)
			require.NoError(t, err)
			assert.Equal(t, DefaultState(), st)

			require.NoError(t, SaveState(path, State{ThresholdG: 1.75, Running: true}))
			st, err = LoadState(path)
			require.NoError(t, err)
			assert.Equal(t, State{ThresholdG: 1.75, Running: true}, st)
			assert.Equal(t, 125, st.Position())
		})
	}
}

func TestStateClamped(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("threshold_g = 9.5\n"), 0o644))

	st, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, detector.MaxThreshold, st.ThresholdG)

	st, err = UpdateState(path, func(s *State) {
		s.ThresholdG = 0
		s.Running = true
	})
	require.NoError(t, err)
	assert.Equal(t, detector.MinThreshold, st.ThresholdG)

	st, err = LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, State{ThresholdG: detector.MinThreshold, Running: true}, st)
}

func TestWatchState(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, SaveState(path, DefaultState()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []State
	)
	require.NoError(t, WatchState(ctx, path, func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	}))

	want := State{ThresholdG: 2.1, Running: true}
	require.NoError(t, SaveState(path, want))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == want
	}, 2*time.Second, 10*time.Millisecond)
}

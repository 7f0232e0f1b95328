package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/taigrr/shakelock/detector"
)

// State is the mutable settings record written by shakectl and the daemon.
type State struct {
	ThresholdG float64 `toml:"threshold_g" yaml:"threshold_g"`
	Running    bool    `toml:"running" yaml:"running"`
}

// DefaultState is used when no state file exists yet.
func DefaultState() State {
	return State{ThresholdG: detector.DefaultThreshold}
}

// Position returns the threshold as a 0..250 slider position.
func (s State) Position() int {
	return detector.PositionFromThreshold(s.ThresholdG)
}

// LoadState reads the state file at path. A missing file yields DefaultState.
// Out-of-range thresholds are clamped.
func LoadState(path string) (State, error) {
	st := DefaultState()
	err := decodeFile(path, &st)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultState(), nil
	}
	if err != nil {
		return DefaultState(), fmt.Errorf("load state %s: %w", path, err)
	}
	st.ThresholdG = detector.ClampThreshold(st.ThresholdG)
	return st, nil
}

// SaveState writes st to path.
func SaveState(path string, st State) error {
	st.ThresholdG = detector.ClampThreshold(st.ThresholdG)
	return encodeFile(path, st)
}

// UpdateState loads the state at path, applies fn, and saves the result.
func UpdateState(path string, fn func(*State)) (State, error) {
	st, err := LoadState(path)
	if err != nil {
		return st, err
	}
	fn(&st)
	st.ThresholdG = detector.ClampThreshold(st.ThresholdG)
	if err := SaveState(path, st); err != nil {
		return st, err
	}
	return st, nil
}

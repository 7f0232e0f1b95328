package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThreshold(t *testing.T) {
	t.Parallel()
	tests := []struct {
		arg  string
		pos  bool
		want float64
	}{
		{"1.5", false, 1.5},
		{"9", false, 3.0},
		{"0.1", false, 0.5},
		{"70", true, 1.2},
		{"400", true, 3.0},
		{"-3", true, 0.5},
	}
	for _, tt := range tests {
		g, err := parseThreshold(tt.arg, tt.pos)
		require.NoError(t, err, tt.arg)
		assert.InDelta(t, tt.want, g, 1e-9, tt.arg)
	}

	_, err := parseThreshold("abc", false)
	assert.Error(t, err)
	_, err = parseThreshold("1.5", true)
	assert.Error(t, err)
}

func TestFormatThreshold(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Threshold: 1.20 g (position 70/250)", formatThreshold(1.2))
}

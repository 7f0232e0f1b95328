//go:build darwin || linux

package shm

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seq atomic.Int32

// Darwin limits shm names to 31 bytes.
func uniqueName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("slt_%d_%d", os.Getpid(), seq.Add(1))
}

func newRing(t *testing.T) (*RingBuffer, *RingBuffer) {
	t.Helper()
	name := uniqueName(t)
	w, err := CreateRing(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = w.Close()
		_ = w.Unlink()
	})
	r, err := OpenRing(name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return w, r
}

func TestRingReadNew(t *testing.T) {
	w, r := newRing(t)

	samples, total := r.ReadNew(0)
	assert.Empty(t, samples)
	assert.Zero(t, total)

	w.WriteSample(ToQ16(0.5), ToQ16(-1), ToQ16(1))
	w.WriteSample(ToQ16(0.25), 0, ToQ16(-2))

	samples, total = r.ReadNew(0)
	require.Len(t, samples, 2)
	assert.Equal(t, uint64(2), total)
	assert.Equal(t, Sample{X: 0.5, Y: -1, Z: 1}, samples[0])
	assert.Equal(t, Sample{X: 0.25, Y: 0, Z: -2}, samples[1])

	samples, _ = r.ReadNew(total)
	assert.Empty(t, samples)
}

func TestRingWrap(t *testing.T) {
	w, r := newRing(t)
	for i := range RingCap + 10 {
		w.WriteSample(int32(i), 0, 0)
	}
	samples, total := r.ReadNew(0)
	require.Len(t, samples, RingCap)
	assert.Equal(t, uint64(RingCap+10), total)
	assert.Equal(t, Sample{X: 10 / AccelScale}, samples[0])
	assert.Equal(t, Sample{X: float64(RingCap+9) / AccelScale}, samples[RingCap-1])
}

func TestCreateRingTakesOver(t *testing.T) {
	w, r := newRing(t)
	assert.Zero(t, r.Restarts())
	w.WriteSample(1, 2, 3)

	w2, err := CreateRing(w.name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w2.Close() })

	assert.Equal(t, uint32(1), r.Restarts())
	assert.Zero(t, r.Total())
}

func TestCursor(t *testing.T) {
	w, r := newRing(t)
	w.WriteSample(1, 1, 1)

	c := NewCursor(r)
	assert.Empty(t, c.Next())

	w.WriteSample(ToQ16(1), 0, 0)
	got := c.Next()
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].X)
	assert.Empty(t, c.Next())

	for range RingCap + 5 {
		w.WriteSample(0, 0, 0)
	}
	assert.Len(t, c.Next(), RingCap)
	assert.Equal(t, uint64(5), c.Dropped())
}

func TestCursorFollowsWriterRestart(t *testing.T) {
	tests := []struct {
		name  string
		after int // samples the new writer has written before the next read
	}{
		{"fewer than before", 3},
		{"more than before", 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, r := newRing(t)
			c := NewCursor(r)
			for range 10 {
				w.WriteSample(0, 0, 0)
			}
			require.Len(t, c.Next(), 10)

			// The old writer goes away; the reader keeps its mapping.
			require.NoError(t, w.Close())
			w2, err := CreateRing(w.name)
			require.NoError(t, err)
			t.Cleanup(func() { _ = w2.Close() })

			for i := range tt.after {
				w2.WriteSample(ToQ16(float64(i+1)), 0, 0)
			}
			got := c.Next()
			require.Len(t, got, tt.after)
			assert.Equal(t, 1.0, got[0].X)
			assert.Equal(t, float64(tt.after), got[tt.after-1].X)

			w2.WriteSample(ToQ16(-1), 0, 0)
			got = c.Next()
			require.Len(t, got, 1)
			assert.Equal(t, -1.0, got[0].X)
		})
	}
}

func TestSnapshotReusedAcrossWriters(t *testing.T) {
	name := uniqueName(t)
	w, err := CreateSnapshot(name, LidSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Unlink() })
	r, err := OpenSnapshot(name, LidSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	w.WriteFloat32(90)
	_, cnt, ok := r.ReadFloat32(0)
	require.True(t, ok)
	require.NoError(t, w.Close())

	w2, err := CreateSnapshot(name, LidSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w2.Close() })
	w2.WriteFloat32(5)

	v, _, ok := r.ReadFloat32(cnt)
	require.True(t, ok)
	assert.Equal(t, float32(5), v)
}

func TestSnapshot(t *testing.T) {
	name := uniqueName(t)
	w, err := CreateSnapshot(name, LidSize)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = w.Close()
		_ = w.Unlink()
	})
	r, err := OpenSnapshot(name, LidSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	_, cnt, ok := r.ReadFloat32(0)
	assert.False(t, ok)

	w.WriteFloat32(112.5)
	v, cnt, ok := r.ReadFloat32(cnt)
	require.True(t, ok)
	assert.Equal(t, float32(112.5), v)

	_, _, ok = r.ReadFloat32(cnt)
	assert.False(t, ok)
}

func TestOpenMissing(t *testing.T) {
	_, err := OpenRing(uniqueName(t))
	assert.Error(t, err)
}

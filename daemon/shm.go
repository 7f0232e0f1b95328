//go:build darwin || linux

package daemon

import (
	"github.com/taigrr/shakelock/detector"
	"github.com/taigrr/shakelock/shm"
)

// CursorSource converts Q16 g samples from a shared memory cursor.
func CursorSource(c *shm.Cursor) Source {
	return SourceFunc(func() []detector.Sample {
		raw := c.Next()
		out := make([]detector.Sample, len(raw))
		for i, s := range raw {
			out[i] = detector.FromG(s.X, s.Y, s.Z)
		}
		return out
	})
}

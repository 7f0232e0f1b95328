package pulse

import (
	"context"
	"sync"
	"time"
)

// Backlight flashes the keyboard backlight as a stand-in for a haptic tick.
type Backlight struct {
	KeyboardID uint64
	Level      float32
	Duration   time.Duration

	once sync.Once
	kb   *keyboardClient
	err  error
}

// Pulse raises the backlight to Level for Duration, then restores it.
func (b *Backlight) Pulse(ctx context.Context) error {
	b.once.Do(func() {
		b.kb, b.err = openKeyboard(b.KeyboardID)
	})
	if b.err != nil {
		return b.err
	}

	prev := b.kb.brightness()
	b.kb.setBrightness(b.Level, 0)
	defer b.kb.setBrightness(prev, 20)

	t := time.NewTimer(b.Duration)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

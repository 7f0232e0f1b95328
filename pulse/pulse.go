// Package pulse emits short feedback pulses when a shake crosses the
// threshold. Which outputs exist is decided by the caller.
package pulse

import (
	"context"
	"errors"
	"sync"
)

// ErrUnsupported is returned by outputs that do not exist on this platform.
var ErrUnsupported = errors.New("pulse: unsupported on this platform")

// Pulser emits one short pulse.
type Pulser interface {
	Pulse(ctx context.Context) error
}

// Func adapts a function to Pulser.
type Func func(ctx context.Context) error

// Pulse calls f.
func (f Func) Pulse(ctx context.Context) error { return f(ctx) }

// Multi fires every pulser concurrently and joins their errors.
type Multi []Pulser

// Pulse implements Pulser.
func (m Multi) Pulse(ctx context.Context) error {
	errs := make([]error, len(m))
	var wg sync.WaitGroup
	for i, p := range m {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = p.Pulse(ctx)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Nop does nothing.
type Nop struct{}

// Pulse implements Pulser.
func (Nop) Pulse(context.Context) error { return nil }

// Package lock carries out shake-triggered lock requests, preferring a
// privileged session lock and falling back to a blocking screen.
package lock

import (
	"context"
	"errors"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// ErrNoLocker is returned when neither the privileged nor the fallback
// locker can act.
var ErrNoLocker = errors.New("lock: no locker available")

// Locker locks the user session.
type Locker interface {
	Name() string
	Available() bool
	Lock(ctx context.Context) error
}

// Dispatcher selects a Locker per request. At most one lock runs at a time;
// requests arriving while one is in flight are dropped.
type Dispatcher struct {
	Privileged Locker
	Fallback   Locker

	busy atomic.Bool
}

// Select returns the locker that would handle a request now.
func (d *Dispatcher) Select() (Locker, error) {
	if d.Privileged != nil && d.Privileged.Available() {
		return d.Privileged, nil
	}
	if d.Fallback != nil && d.Fallback.Available() {
		return d.Fallback, nil
	}
	return nil, ErrNoLocker
}

// Lock runs one lock request synchronously.
func (d *Dispatcher) Lock(ctx context.Context) error {
	l, err := d.Select()
	if err != nil {
		return err
	}
	log.WithField("locker", l.Name()).Info("locking session")
	return l.Lock(ctx)
}

// Dispatch runs a lock request in the background. It reports false when a
// previous request is still running.
func (d *Dispatcher) Dispatch(ctx context.Context) bool {
	if !d.busy.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer d.busy.Store(false)
		if err := d.Lock(ctx); err != nil {
			log.WithError(err).Error("lock failed")
		}
	}()
	return true
}

// Busy reports whether a dispatched request is still running.
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

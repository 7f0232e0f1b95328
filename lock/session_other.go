//go:build !darwin

package lock

import "context"

// SessionLocker is only implemented on darwin; elsewhere configure a
// CommandLocker instead.
type SessionLocker struct{}

// Name implements Locker.
func (SessionLocker) Name() string { return "session" }

// Available always reports false.
func (SessionLocker) Available() bool { return false }

// Lock always fails with ErrNoLocker.
func (SessionLocker) Lock(context.Context) error { return ErrNoLocker }

//go:build darwin

package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

const loginFramework = "/System/Library/PrivateFrameworks/login.framework/Versions/Current/login"

var (
	sessionOnce   sync.Once
	sessionErr    error
	sacLockScreen func() int32
)

func loadSession() error {
	sessionOnce.Do(func() {
		lib, err := purego.Dlopen(loginFramework, purego.RTLD_LAZY)
		if err != nil {
			sessionErr = fmt.Errorf("dlopen login.framework: %w", err)
			return
		}
		if _, err := purego.Dlsym(lib, "SACLockScreenImmediate"); err != nil {
			sessionErr = fmt.Errorf("SACLockScreenImmediate: %w", err)
			return
		}
		purego.RegisterLibFunc(&sacLockScreen, lib, "SACLockScreenImmediate")
	})
	return sessionErr
}

// SessionLocker locks the macOS session immediately through login.framework.
type SessionLocker struct{}

// Name implements Locker.
func (SessionLocker) Name() string { return "session" }

// Available reports whether login.framework could be loaded.
func (SessionLocker) Available() bool {
	return loadSession() == nil
}

// Lock implements Locker.
func (SessionLocker) Lock(context.Context) error {
	if err := loadSession(); err != nil {
		return err
	}
	if rc := sacLockScreen(); rc != 0 {
		return fmt.Errorf("SACLockScreenImmediate returned %d", rc)
	}
	return nil
}

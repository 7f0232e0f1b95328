//go:build darwin

package screen

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	cgOnce            sync.Once
	cgErr             error
	cgMainDisplayID   func() uint32
	cgDisplayIsAsleep func(display uint32) bool
)

func loadCoreGraphics() error {
	cgOnce.Do(func() {
		lib, err := purego.Dlopen("/System/Library/Frameworks/CoreGraphics.framework/CoreGraphics", purego.RTLD_LAZY)
		if err != nil {
			cgErr = fmt.Errorf("dlopen CoreGraphics: %w", err)
			return
		}
		purego.RegisterLibFunc(&cgMainDisplayID, lib, "CGMainDisplayID")
		purego.RegisterLibFunc(&cgDisplayIsAsleep, lib, "CGDisplayIsAsleep")
	})
	return cgErr
}

// DisplayProbe asks CoreGraphics whether the main display is asleep.
func DisplayProbe() Probe {
	return func() (bool, error) {
		if err := loadCoreGraphics(); err != nil {
			return false, err
		}
		return !cgDisplayIsAsleep(cgMainDisplayID()), nil
	}
}

//go:build darwin

package shm

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	libcOnce    sync.Once
	libcErr     error
	fnShmOpen   func(name string, oflag int32, mode uint16) int32
	fnShmUnlink func(name string) int32
)

func loadLibc() error {
	libcOnce.Do(func() {
		lib, err := purego.Dlopen("/usr/lib/libSystem.B.dylib", purego.RTLD_LAZY)
		if err != nil {
			libcErr = fmt.Errorf("dlopen libSystem: %w", err)
			return
		}
		purego.RegisterLibFunc(&fnShmOpen, lib, "shm_open")
		purego.RegisterLibFunc(&fnShmUnlink, lib, "shm_unlink")
	})
	return libcErr
}

// shm_open names must start with a slash.
func shmOpen(name string, flags int, mode uint32) (int, error) {
	if err := loadLibc(); err != nil {
		return -1, err
	}
	fd := fnShmOpen("/"+name, int32(flags), uint16(mode))
	if fd < 0 {
		return -1, fmt.Errorf("shm_open(%q) returned %d", "/"+name, fd)
	}
	return int(fd), nil
}

func shmUnlink(name string) error {
	if err := loadLibc(); err != nil {
		return err
	}
	if fnShmUnlink("/"+name) < 0 {
		return fmt.Errorf("shm_unlink(%q) failed", "/"+name)
	}
	return nil
}

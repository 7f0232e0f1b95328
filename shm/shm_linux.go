//go:build linux

package shm

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// shmDir is the tmpfs glibc's shm_open resolves names against.
var shmDir = "/dev/shm"

func shmOpen(name string, flags int, mode uint32) (int, error) {
	return unix.Open(filepath.Join(shmDir, name), flags|unix.O_CLOEXEC, mode)
}

func shmUnlink(name string) error {
	return unix.Unlink(filepath.Join(shmDir, name))
}

//go:build linux

package shm

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "shm")
	if err != nil {
		panic(err)
	}
	shmDir = dir
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

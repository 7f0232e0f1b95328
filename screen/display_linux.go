//go:build linux

package screen

import (
	"os"
	"path/filepath"
	"strings"
)

// drmRoot is where the kernel exposes DRM connectors.
var drmRoot = "/sys/class/drm"

// DisplayProbe reads DRM connector state from sysfs. The display counts as
// on while any connected output reports DPMS "On".
func DisplayProbe() Probe {
	return func() (bool, error) {
		return drmDisplayOn(drmRoot)
	}
}

func drmDisplayOn(root string) (bool, error) {
	dirs, err := filepath.Glob(filepath.Join(root, "card*-*"))
	if err != nil {
		return false, err
	}

	known := 0
	for _, dir := range dirs {
		status, err := readTrimmed(filepath.Join(dir, "status"))
		if err != nil || status != "connected" {
			continue
		}
		dpms, err := readTrimmed(filepath.Join(dir, "dpms"))
		if err != nil {
			continue
		}
		known++
		if dpms == "On" {
			return true, nil
		}
	}
	if known == 0 {
		return false, ErrUnknown
	}
	return false, nil
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

//go:build !darwin && !linux

package screen

// DisplayProbe always reports ErrUnknown on this platform.
func DisplayProbe() Probe {
	return func() (bool, error) {
		return false, ErrUnknown
	}
}

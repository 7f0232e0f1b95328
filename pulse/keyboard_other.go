//go:build !darwin

package pulse

type keyboardClient struct{}

func openKeyboard(uint64) (*keyboardClient, error) {
	return nil, ErrUnsupported
}

func (*keyboardClient) brightness() float32 { return 0 }

func (*keyboardClient) setBrightness(float32, int) {}

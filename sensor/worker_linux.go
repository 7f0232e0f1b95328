//go:build linux

package sensor

import (
	"context"
	"fmt"

	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

// Run opens the configured I2C bus and copies ADXL345 samples into the
// accelerometer ring at cfg.RateHz until ctx is done.
func Run(ctx context.Context, cfg Config) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("could not initialize host: %w", err)
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return fmt.Errorf("could not open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := NewADXL345(bus, cfg.Addr, cfg.RateHz)
	if err != nil {
		return err
	}
	defer dev.Standby()

	return dev.Stream(ctx, cfg.RateHz, cfg.Accel.WriteSample)
}

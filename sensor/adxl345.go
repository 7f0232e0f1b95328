package sensor

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/i2c"
)

// ErrNotDevice is returned when the device ID register does not match an
// ADXL345 (0xE5).
var ErrNotDevice = errors.New("adxl345: device ID does not match (0xE5)")

// ADXL345 registers and values.
const (
	ADXL345Addr = 0x53

	regDevID      = 0x00
	regBWRate     = 0x2C
	regPowerCtl   = 0x2D
	regDataFormat = 0x31
	regDataX0     = 0x32

	devID       = 0xE5
	measure     = 0x08
	fullRes16g  = 0x0B // FULL_RES, +-16 g
	lsbPerG     = 256  // full resolution scale factor
	q16PerCount = 65536 / lsbPerG

	// BW_RATE codes run from 6.25 Hz at 0x06 to 3200 Hz at 0x0F, doubling
	// with each step.
	rateMinCode = 0x06
	rateMaxCode = 0x0F
	rate100Hz   = 0x0A

	defaultRateHz = 100
)

// rateCode returns the BW_RATE code for the slowest output data rate that
// is at least hz.
func rateCode(hz int) byte {
	if hz <= 0 {
		return rate100Hz
	}
	for c := rateMinCode; c < rateMaxCode; c++ {
		// 6.25 Hz << (c - 0x06), kept in quarter hertz.
		if hz*4 <= 25<<(c-rateMinCode) {
			return byte(c)
		}
	}
	return rateMaxCode
}

// ADXL345 is an ADXL345 accelerometer on an I2C bus.
type ADXL345 struct {
	dev *i2c.Dev
}

// NewADXL345 verifies the device ID and starts measurement in
// full-resolution mode with an output data rate of at least rateHz
// (100 Hz when rateHz is 0).
func NewADXL345(bus i2c.Bus, addr uint16, rateHz int) (*ADXL345, error) {
	if addr == 0 {
		addr = ADXL345Addr
	}
	a := &ADXL345{dev: &i2c.Dev{Bus: bus, Addr: addr}}

	id, err := a.read(regDevID)
	if err != nil {
		return nil, fmt.Errorf("adxl345: could not get device ID: %w", err)
	}
	if id != devID {
		return nil, ErrNotDevice
	}

	for _, w := range [][2]byte{
		{regBWRate, rateCode(rateHz)},
		{regDataFormat, fullRes16g},
		{regPowerCtl, measure},
	} {
		if err := a.write(w[0], w[1]); err != nil {
			return nil, fmt.Errorf("adxl345: could not initialize device: %w", err)
		}
	}
	return a, nil
}

// ReadQ16 returns the current acceleration in Q16 g.
func (a *ADXL345) ReadQ16() (x, y, z int32, err error) {
	b := make([]byte, 6)
	if err := a.dev.Tx([]byte{regDataX0}, b); err != nil {
		return 0, 0, 0, fmt.Errorf("adxl345: could not read data: %w", err)
	}
	x = int32(int16(binary.LittleEndian.Uint16(b[0:]))) * q16PerCount
	y = int32(int16(binary.LittleEndian.Uint16(b[2:]))) * q16PerCount
	z = int32(int16(binary.LittleEndian.Uint16(b[4:]))) * q16PerCount
	return x, y, z, nil
}

// Stream reads a sample every 1/rateHz and hands it to sink until ctx is
// done. Failed reads are skipped.
func (a *ADXL345) Stream(ctx context.Context, rateHz int, sink func(x, y, z int32)) error {
	if rateHz <= 0 {
		rateHz = defaultRateHz
	}
	ticker := time.NewTicker(time.Second / time.Duration(rateHz))
	defer ticker.Stop()

	var failures int
	for {
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		x, y, z, err := a.ReadQ16()
		if err != nil {
			failures++
			if failures == 1 || failures%rateHz == 0 {
				log.WithError(err).WithField("failures", failures).Warn("accelerometer read failed")
			}
			continue
		}
		failures = 0
		sink(x, y, z)
	}
}

// Standby stops measurement.
func (a *ADXL345) Standby() error {
	return a.write(regPowerCtl, 0)
}

func (a *ADXL345) read(reg byte) (byte, error) {
	b := make([]byte, 1)
	if err := a.dev.Tx([]byte{reg}, b); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (a *ADXL345) write(reg, data byte) error {
	_, err := a.dev.Write([]byte{reg, data})
	return err
}

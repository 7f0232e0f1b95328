//go:build darwin || linux

package sensor

import "github.com/taigrr/shakelock/shm"

// Config holds the shared memory targets and device settings for a worker.
type Config struct {
	Accel *shm.RingBuffer
	Lid   *shm.Snapshot // optional; darwin only

	// I2C settings for the ADXL345 worker.
	Bus    string
	Addr   uint16
	RateHz int
}

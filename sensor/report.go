// Package sensor reads accelerometer samples (and, on Apple Silicon, the lid
// angle) from hardware and publishes them to shared memory. On macOS it talks
// to the SPU IMU through IOKit HID; on Linux it polls an ADXL345 over I2C.
package sensor

import "encoding/binary"

// Report format constants for the Apple SPU IMU.
const (
	IMUReportLen     = 22   // accel report length in bytes
	IMUDecimation    = 8    // keep 1 in N reports
	IMUDataOffset    = 6    // XYZ payload start offset
	LidReportLen     = 3    // lid angle report length in bytes
	ReportBufSize    = 4096 // HID callback buffer size
	ReportIntervalUS = 1000 // driver report interval in microseconds

	// IMURateHz is the accel rate published after decimation.
	IMURateHz = 1000000 / ReportIntervalUS / IMUDecimation
)

// ParseIMUReport extracts the Q16 XYZ values from an IMU report. Short
// reports yield zeros.
func ParseIMUReport(data []byte) (x, y, z int32) {
	if len(data) < IMUDataOffset+12 {
		return 0, 0, 0
	}
	off := IMUDataOffset
	x = int32(binary.LittleEndian.Uint32(data[off:]))
	y = int32(binary.LittleEndian.Uint32(data[off+4:]))
	z = int32(binary.LittleEndian.Uint32(data[off+8:]))
	return x, y, z
}

// ParseLidAngle extracts the lid angle in degrees from a lid sensor report.
func ParseLidAngle(data []byte) (float32, bool) {
	if len(data) < LidReportLen || data[0] != 1 {
		return 0, false
	}
	angle := binary.LittleEndian.Uint16(data[1:3]) & 0x1FF
	return float32(angle), true
}

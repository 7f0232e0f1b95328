//go:build darwin

package sensor

import (
	"context"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/taigrr/shakelock/shm"
)

// callbackState is read from HID callbacks; only one worker runs per
// process.
type callbackState struct {
	accel    *shm.RingBuffer
	lid      *shm.Snapshot
	accelDec int
}

var (
	state *callbackState

	accelCallbackPtr = purego.NewCallback(accelCallback)
	lidCallbackPtr   = purego.NewCallback(lidCallback)

	// report buffers handed to IOKit must outlive the run loop.
	reportBufs [][]byte
)

func accelCallback(_ uintptr, _ int32, _ uintptr, _ int32, _ uint32, report *byte, length int) {
	if state == nil || state.accel == nil || length != IMUReportLen {
		return
	}
	state.accelDec++
	if state.accelDec < IMUDecimation {
		return
	}
	state.accelDec = 0

	x, y, z := ParseIMUReport(unsafe.Slice(report, length))
	state.accel.WriteSample(x, y, z)
}

func lidCallback(_ uintptr, _ int32, _ uintptr, _ int32, _ uint32, report *byte, length int) {
	if state == nil || state.lid == nil {
		return
	}
	if angle, ok := ParseLidAngle(unsafe.Slice(report, length)); ok {
		state.lid.WriteFloat32(angle)
	}
}

// Run wakes the SPU drivers, registers HID callbacks and pumps the
// CFRunLoop until ctx is done. It locks the calling goroutine to its OS
// thread.
func Run(ctx context.Context, cfg Config) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := loadFrameworks(); err != nil {
		return err
	}

	state = &callbackState{accel: cfg.Accel, lid: cfg.Lid}

	if err := wakeSPUDrivers(); err != nil {
		return fmt.Errorf("waking SPU drivers: %w", err)
	}
	if err := registerHIDDevices(); err != nil {
		return fmt.Errorf("registering HID devices: %w", err)
	}

	for ctx.Err() == nil {
		cfRunLoopRunInMode(kCFRunLoopDefaultMode, 1.0, false)
	}
	return nil
}

func wakeSPUDrivers() error {
	return eachService("AppleSPUHIDDriver", func(svc uint32) {
		for _, p := range []struct {
			key string
			val int32
		}{
			{"SensorPropertyReportingState", 1},
			{"SensorPropertyPowerState", 1},
			{"ReportInterval", ReportIntervalUS},
		} {
			ioRegistryEntrySetCFProp(svc, cfStr(p.key), cfNum32(p.val))
		}
	})
}

func registerHIDDevices() error {
	var found bool
	err := eachService("AppleSPUHIDDevice", func(svc uint32) {
		up, _ := propInt(svc, "PrimaryUsagePage")
		u, _ := propInt(svc, "PrimaryUsage")

		var cb uintptr
		switch {
		case up == pageVendor && u == usageAccel:
			cb = accelCallbackPtr
			found = true
		case up == pageSensor && u == usageLid && state.lid != nil:
			cb = lidCallbackPtr
		default:
			return
		}

		hid := ioHIDDeviceCreate(kCFAllocatorDefault, svc)
		if hid == 0 || ioHIDDeviceOpen(hid, 0) != 0 {
			return
		}
		buf := make([]byte, ReportBufSize)
		reportBufs = append(reportBufs, buf)
		ioHIDDeviceRegisterInputReport(hid, uintptr(unsafe.Pointer(&buf[0])), ReportBufSize, cb, 0)
		ioHIDDeviceScheduleWithRL(hid, cfRunLoopGetCurrent(), kCFRunLoopDefaultMode)
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no SPU accelerometer found")
	}
	return nil
}

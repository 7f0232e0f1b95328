//go:build darwin

package sensor

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// HID usage pages and usages for Apple SPU sensors.
const (
	pageVendor = 0xFF00
	pageSensor = 0x0020
	usageAccel = 3
	usageLid   = 138
)

// CoreFoundation constants.
const (
	cfStringEncodingUTF8 = 0x08000100
	cfNumberSInt32Type   = 3
	cfNumberSInt64Type   = 4
)

var (
	frameworksOnce sync.Once
	frameworksErr  error
)

// IOKit functions.
var (
	ioServiceMatching              func(name *byte) uintptr
	ioServiceGetMatchingServices   func(mainPort uint32, matching uintptr, existing *uint32) int32
	ioIteratorNext                 func(iterator uint32) uint32
	ioObjectRelease                func(object uint32) int32
	ioRegistryEntryCreateCFProp    func(entry uint32, key uintptr, allocator uintptr, options uint32) uintptr
	ioRegistryEntrySetCFProp       func(entry uint32, key uintptr, value uintptr) int32
	ioHIDDeviceCreate              func(allocator uintptr, service uint32) uintptr
	ioHIDDeviceOpen                func(device uintptr, options int32) int32
	ioHIDDeviceRegisterInputReport func(device uintptr, report uintptr, reportLen int, callback uintptr, context uintptr)
	ioHIDDeviceScheduleWithRL      func(device uintptr, runLoop uintptr, mode uintptr)
)

// CoreFoundation functions and globals.
var (
	cfStringCreateWithCString func(alloc uintptr, cStr *byte, encoding uint32) uintptr
	cfNumberCreate            func(alloc uintptr, theType int32, valuePtr uintptr) uintptr
	cfNumberGetValue          func(number uintptr, theType int32, valuePtr uintptr) bool
	cfRunLoopGetCurrent       func() uintptr
	cfRunLoopRunInMode        func(mode uintptr, seconds float64, returnAfterSourceHandled bool) int32

	kCFAllocatorDefault   uintptr
	kCFRunLoopDefaultMode uintptr
)

func loadFrameworks() error {
	frameworksOnce.Do(func() {
		iokit, err := purego.Dlopen("/System/Library/Frameworks/IOKit.framework/IOKit", purego.RTLD_LAZY)
		if err != nil {
			frameworksErr = fmt.Errorf("dlopen IOKit: %w", err)
			return
		}
		cf, err := purego.Dlopen("/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation", purego.RTLD_LAZY)
		if err != nil {
			frameworksErr = fmt.Errorf("dlopen CoreFoundation: %w", err)
			return
		}

		purego.RegisterLibFunc(&ioServiceMatching, iokit, "IOServiceMatching")
		purego.RegisterLibFunc(&ioServiceGetMatchingServices, iokit, "IOServiceGetMatchingServices")
		purego.RegisterLibFunc(&ioIteratorNext, iokit, "IOIteratorNext")
		purego.RegisterLibFunc(&ioObjectRelease, iokit, "IOObjectRelease")
		purego.RegisterLibFunc(&ioRegistryEntryCreateCFProp, iokit, "IORegistryEntryCreateCFProperty")
		purego.RegisterLibFunc(&ioRegistryEntrySetCFProp, iokit, "IORegistryEntrySetCFProperty")
		purego.RegisterLibFunc(&ioHIDDeviceCreate, iokit, "IOHIDDeviceCreate")
		purego.RegisterLibFunc(&ioHIDDeviceOpen, iokit, "IOHIDDeviceOpen")
		purego.RegisterLibFunc(&ioHIDDeviceRegisterInputReport, iokit, "IOHIDDeviceRegisterInputReportCallback")
		purego.RegisterLibFunc(&ioHIDDeviceScheduleWithRL, iokit, "IOHIDDeviceScheduleWithRunLoop")

		purego.RegisterLibFunc(&cfStringCreateWithCString, cf, "CFStringCreateWithCString")
		purego.RegisterLibFunc(&cfNumberCreate, cf, "CFNumberCreate")
		purego.RegisterLibFunc(&cfNumberGetValue, cf, "CFNumberGetValue")
		purego.RegisterLibFunc(&cfRunLoopGetCurrent, cf, "CFRunLoopGetCurrent")
		purego.RegisterLibFunc(&cfRunLoopRunInMode, cf, "CFRunLoopRunInMode")

		kCFAllocatorDefault = derefSymbol(cf, "kCFAllocatorDefault")
		kCFRunLoopDefaultMode = derefSymbol(cf, "kCFRunLoopDefaultMode")
	})
	return frameworksErr
}

// derefSymbol reads a global CFTypeRef exported by a dylib.
func derefSymbol(lib uintptr, name string) uintptr {
	sym, _ := purego.Dlsym(lib, name)
	if sym == 0 {
		return 0
	}
	return **(**uintptr)(unsafe.Pointer(&sym))
}

func cfStr(s string) uintptr {
	return cfStringCreateWithCString(0, cStr(s), cfStringEncodingUTF8)
}

func cfNum32(v int32) uintptr {
	return cfNumberCreate(0, cfNumberSInt32Type, uintptr(unsafe.Pointer(&v)))
}

func cStr(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// propInt reads an integer IORegistry property from a service.
func propInt(service uint32, key string) (int64, bool) {
	ref := ioRegistryEntryCreateCFProp(service, cfStr(key), 0, 0)
	if ref == 0 {
		return 0, false
	}
	var val int64
	if !cfNumberGetValue(ref, cfNumberSInt64Type, uintptr(unsafe.Pointer(&val))) {
		return 0, false
	}
	return val, true
}

// eachService calls fn for every IORegistry service matching class.
func eachService(class string, fn func(svc uint32)) error {
	var it uint32
	if kr := ioServiceGetMatchingServices(0, ioServiceMatching(cStr(class)), &it); kr != 0 {
		return fmt.Errorf("IOServiceGetMatchingServices(%s) returned %d", class, kr)
	}
	defer ioObjectRelease(it)
	for {
		svc := ioIteratorNext(it)
		if svc == 0 {
			return nil
		}
		fn(svc)
		ioObjectRelease(svc)
	}
}

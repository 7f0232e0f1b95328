//go:build darwin

package pulse

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Objective-C runtime entry points used to drive CoreBrightness.
var (
	objcGetClass     func(name *byte) uintptr
	objcSelRegName   func(name *byte) uintptr
	objcMsgSend      func(receiver uintptr, sel uintptr, args ...uintptr) uintptr
	objcMsgSendFloat func(receiver uintptr, sel uintptr, args ...uintptr) float32
)

func loadObjC() error {
	lib, err := purego.Dlopen("/usr/lib/libobjc.A.dylib", purego.RTLD_LAZY)
	if err != nil {
		return fmt.Errorf("dlopen libobjc: %w", err)
	}
	purego.RegisterLibFunc(&objcGetClass, lib, "objc_getClass")
	purego.RegisterLibFunc(&objcSelRegName, lib, "sel_registerName")
	purego.RegisterLibFunc(&objcMsgSend, lib, "objc_msgSend")
	// arm64 returns floats through plain objc_msgSend.
	purego.RegisterLibFunc(&objcMsgSendFloat, lib, "objc_msgSend")
	return nil
}

func cString(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

func sel(name string) uintptr { return objcSelRegName(cString(name)) }
func class(name string) uintptr { return objcGetClass(cString(name)) }

// keyboardClient wraps a CoreBrightness KeyboardBrightnessClient.
type keyboardClient struct {
	instance   uintptr
	keyboardID uintptr

	selSet uintptr
	selGet uintptr
}

func openKeyboard(id uint64) (*keyboardClient, error) {
	if err := loadObjC(); err != nil {
		return nil, err
	}

	path := objcMsgSend(class("NSString"), sel("stringWithUTF8String:"),
		uintptr(unsafe.Pointer(cString("/System/Library/PrivateFrameworks/CoreBrightness.framework"))))
	bundle := objcMsgSend(class("NSBundle"), sel("bundleWithPath:"), path)
	if bundle == 0 {
		return nil, fmt.Errorf("loading CoreBrightness.framework: %w", ErrUnsupported)
	}
	objcMsgSend(bundle, sel("load"))

	cls := class("KeyboardBrightnessClient")
	if cls == 0 {
		return nil, fmt.Errorf("KeyboardBrightnessClient: %w", ErrUnsupported)
	}
	inst := objcMsgSend(objcMsgSend(cls, sel("alloc")), sel("init"))
	if inst == 0 {
		return nil, fmt.Errorf("creating KeyboardBrightnessClient failed")
	}

	return &keyboardClient{
		instance:   inst,
		keyboardID: uintptr(id),
		selSet:     sel("setBrightness:fadeSpeed:commit:forKeyboard:"),
		selGet:     sel("brightnessForKeyboard:"),
	}, nil
}

func (k *keyboardClient) brightness() float32 {
	return objcMsgSendFloat(k.instance, k.selGet, k.keyboardID)
}

func (k *keyboardClient) setBrightness(level float32, fadeMs int) {
	bits := uintptr(*(*uint32)(unsafe.Pointer(&level)))
	objcMsgSend(k.instance, k.selSet, bits, uintptr(fadeMs), 1, k.keyboardID)
}

package compute

import (
	"fmt"
	"strings"
)

// Device names an execution target.
type Device string

const (
	DeviceNone Device = ""
	DeviceCPU  Device = "CPU"
	DeviceGPU  Device = "GPU"
)

// TargetDevice returns the device this binary was compiled for.
func TargetDevice() Device {
	return targetDevice
}

// ParseDevice accepts cpu, gpu or an empty string, in any case.
func ParseDevice(s string) (Device, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return DeviceNone, nil
	case "CPU":
		return DeviceCPU, nil
	case "GPU", "CUDA":
		return DeviceGPU, nil
	default:
		return DeviceNone, fmt.Errorf("unknown device: %s", s)
	}
}

func (d Device) String() string {
	if d == DeviceNone {
		return "unconfigured"
	}
	return string(d)
}

//go:build !cuda

package compute

const targetDevice = DeviceCPU

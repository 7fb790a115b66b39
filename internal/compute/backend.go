package compute

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/san-kum/heatsolve/internal/heat"
)

// ErrBackendUnavailable indicates the requested device is not usable in this build or on this host.
var ErrBackendUnavailable = errors.New("compute: backend unavailable")

// Backend runs the heat kernel on one device.
type Backend interface {
	Name() string
	Device() Device
	Available() bool
	Solve(grid []Scalar, maxIter int, etol Scalar, opts ...heat.Option) (heat.Result[Scalar], error)
	Cleanup()
}

// Config selects and tunes a backend.
type Config struct {
	// Device to run on. Empty means TargetDevice().
	Device Device
	// Workers per CPU sweep. Zero means runtime.NumCPU().
	Workers int
	// Fallback returns the CPU backend when the GPU is unavailable.
	Fallback bool
	Logger   *slog.Logger
}

// New builds the backend named by cfg.
func New(cfg Config) (Backend, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	device := cfg.Device
	if device == DeviceNone {
		device = TargetDevice()
	}

	switch device {
	case DeviceCPU:
		return NewCPUBackend(cfg.Workers, logger), nil
	case DeviceGPU:
		gpu := NewGPUBackend(logger)
		if gpu.Available() {
			logger.Info("backend selected", "name", gpu.Name())
			return gpu, nil
		}
		gpu.Cleanup()
		if !cfg.Fallback {
			return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, gpu.Name())
		}
		logger.Warn("gpu unavailable, falling back to cpu", "gpu", gpu.Name())
		return NewCPUBackend(cfg.Workers, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown device %q", ErrBackendUnavailable, string(device))
	}
}

// AutoSelect returns the GPU backend when available, else the CPU one.
func AutoSelect(logger *slog.Logger) Backend {
	b, err := New(Config{Device: DeviceGPU, Fallback: true, Logger: logger})
	if err != nil {
		return NewCPUBackend(runtime.NumCPU(), logger)
	}
	return b
}

//go:build !cuda

package compute

import (
	"log/slog"

	"github.com/san-kum/heatsolve/internal/heat"
)

// GPUBackend stands in for the CUDA backend in builds without the cuda tag.
type GPUBackend struct {
	logger *slog.Logger
}

func NewGPUBackend(logger *slog.Logger) *GPUBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &GPUBackend{logger: logger}
}

func (g *GPUBackend) Name() string    { return "cuda (not available)" }
func (g *GPUBackend) Device() Device  { return DeviceGPU }
func (g *GPUBackend) Available() bool { return false }
func (g *GPUBackend) Cleanup()        {}

func (g *GPUBackend) Solve(grid []Scalar, maxIter int, etol Scalar, opts ...heat.Option) (heat.Result[Scalar], error) {
	return NewCPUBackend(0, g.logger).Solve(grid, maxIter, etol, opts...)
}

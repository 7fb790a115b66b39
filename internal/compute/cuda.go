//go:build cuda

package compute

/*
#cgo CFLAGS: -I/opt/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR}/kernels -lcudart -lheatkernels -lstdc++
#include <stddef.h>
#include <stdlib.h>

extern int cuda_device_count();
extern const char* cuda_device_name_get();
extern int heat_jacobi_gpu(double* grid, size_t n, size_t max_iter, double etol, size_t* last_iter, double* last_etol);
*/
import "C"

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/san-kum/heatsolve/internal/heat"
)

// GPUBackend runs the Jacobi kernel on a CUDA device.
type GPUBackend struct {
	available  bool
	deviceName string
	logger     *slog.Logger
}

// NewGPUBackend probes for a CUDA device.
func NewGPUBackend(logger *slog.Logger) *GPUBackend {
	if logger == nil {
		logger = slog.Default()
	}
	count := int(C.cuda_device_count())
	name := ""
	if count > 0 {
		name = C.GoString(C.cuda_device_name_get())
	}
	logger.Debug("cuda probe", "devices", count, "name", name)
	return &GPUBackend{
		available:  count > 0,
		deviceName: name,
		logger:     logger,
	}
}

func (g *GPUBackend) Name() string {
	if g.available {
		return "cuda (" + g.deviceName + ")"
	}
	return "cuda (not available)"
}

func (g *GPUBackend) Device() Device  { return DeviceGPU }
func (g *GPUBackend) Available() bool { return g.available }
func (g *GPUBackend) Cleanup()        {}

// Solve copies grid to the device, runs the whole sweep loop there and
// copies the result back. Observers are not called on this path.
func (g *GPUBackend) Solve(grid []Scalar, maxIter int, etol Scalar, opts ...heat.Option) (heat.Result[Scalar], error) {
	if err := heat.Validate(grid, maxIter, etol); err != nil {
		return heat.Result[Scalar]{}, err
	}
	if !g.available {
		return NewCPUBackend(0, g.logger).Solve(grid, maxIter, etol, opts...)
	}
	if len(opts) > 0 {
		g.logger.Debug("solver options ignored on gpu", "count", len(opts))
	}

	// The kernel is compiled for double precision.
	buf := make([]float64, len(grid))
	for i, v := range grid {
		buf[i] = float64(v)
	}

	var lastIter C.size_t
	var lastEtol C.double
	rc := C.heat_jacobi_gpu(
		(*C.double)(unsafe.Pointer(&buf[0])),
		C.size_t(len(buf)),
		C.size_t(maxIter),
		C.double(etol),
		&lastIter,
		&lastEtol,
	)
	if rc != 0 {
		return heat.Result[Scalar]{}, fmt.Errorf("cuda heat kernel failed with code %d", int(rc))
	}

	for i := 1; i < len(grid)-1; i++ {
		grid[i] = Scalar(buf[i])
	}

	return heat.Result[Scalar]{
		LastIter: int(lastIter),
		LastEtol: Scalar(lastEtol),
	}, nil
}

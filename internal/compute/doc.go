// Package compute provides the execution backends for the heat kernel.
//
// Backends are selected explicitly through [Config]:
//
//   - CPU: the Jacobi kernel from package heat, sweeps split across cores
//   - GPU: a CUDA kernel with the same read/commit discipline
//
// The GPU backend is only real when built with the cuda tag; otherwise it
// reports itself unavailable and [New] either fails or falls back to the
// CPU, depending on [Config.Fallback].
//
//	backend, err := compute.New(compute.Config{Device: compute.DeviceGPU, Fallback: true})
//	if err != nil {
//	    return err
//	}
//	defer backend.Cleanup()
//	res, err := backend.Solve(grid, 1000, 1e-6)
//
// Build with CUDA support:
//
//	nvcc -c -o internal/compute/kernels/heat_jacobi.o internal/compute/kernels/heat_jacobi.cu
//	ar rcs internal/compute/kernels/libheatkernels.a internal/compute/kernels/heat_jacobi.o
//	go build -tags cuda ./cmd/heatsolve
//
// The grid element width is fixed at build time by [Scalar]: float64 by
// default, float32 with the f32 tag.
package compute

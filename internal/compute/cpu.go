package compute

import (
	"log/slog"
	"runtime"

	"github.com/san-kum/heatsolve/internal/heat"
)

// CPUBackend runs the Jacobi kernel on the host.
type CPUBackend struct {
	workers int
	solver  *heat.Solver[Scalar]
	logger  *slog.Logger
}

// NewCPUBackend returns a CPU backend. workers <= 0 uses every core.
func NewCPUBackend(workers int, logger *slog.Logger) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CPUBackend{
		workers: workers,
		solver:  heat.NewSolver[Scalar](heat.WithWorkers(workers)),
		logger:  logger,
	}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Device() Device  { return DeviceCPU }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

// Workers reports the sweep parallelism.
func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Solve(grid []Scalar, maxIter int, etol Scalar, opts ...heat.Option) (heat.Result[Scalar], error) {
	res, err := c.solver.With(opts...).Solve(grid, maxIter, etol)
	if err != nil {
		return res, err
	}
	c.logger.Debug("cpu solve finished",
		"grid_size", len(grid),
		"sweeps", res.LastIter,
		"residual", float64(res.LastEtol),
		"workers", c.workers,
	)
	return res, nil
}

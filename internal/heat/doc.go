// Package heat provides the iterative steady-state heat equation kernel.
//
// The solver relaxes a 1-D temperature field in place with Jacobi sweeps:
//
//   - every interior sample becomes the mean of its two neighbours from the
//     previous sweep
//   - the residual is the largest absolute change over the interior
//   - the first and last samples are Dirichlet boundaries and never change
//
// The loop stops once the residual drops to the requested tolerance or the
// sweep budget runs out, whichever happens first.
//
// # Example
//
//	grid := []float64{0, 100, 100, 100, 0}
//	res, err := heat.Solve(grid, 1000, 1e-6)
//	if err != nil {
//	    return err
//	}
//	if !res.Converged(1e-6) {
//	    // budget exhausted, res.LastEtol is still above tolerance
//	}
//
// # Thread Safety
//
// A [Solver] holds no per-call state and may serve concurrent calls on
// disjoint grids. Concurrent calls on the same grid must be serialized by
// the caller.
package heat

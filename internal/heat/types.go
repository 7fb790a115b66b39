package heat

import (
	"fmt"
	"math"
)

// MinGridSize is the smallest grid with an interior point.
const MinGridSize = 3

// Float is the element type of a grid.
type Float interface {
	~float32 | ~float64
}

// Result reports where a solve stopped.
type Result[T Float] struct {
	// LastIter is the number of sweeps that ran.
	LastIter int
	// LastEtol is the residual measured by the last sweep. +Inf when no
	// sweep ran.
	LastEtol T
}

// Converged reports whether the final residual is at or below etol.
func (r Result[T]) Converged(etol T) bool {
	return r.LastEtol <= etol
}

// Err returns ErrNotConverged when the residual is still above etol.
func (r Result[T]) Err(etol T) error {
	if r.Converged(etol) {
		return nil
	}
	return fmt.Errorf("%w: residual %g > %g after %d sweeps", ErrNotConverged, float64(r.LastEtol), float64(etol), r.LastIter)
}

// Observer is called after every committed sweep with the 1-based sweep
// count and the residual of that sweep.
type Observer func(iter int, residual float64)

func unmeasured[T Float]() T {
	return T(math.Inf(1))
}

func isNaN[T Float](v T) bool {
	return v != v
}

func isFinite[T Float](v T) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Package analysis provides convergence analysis for Jacobi heat solves.
//
// The package includes tools for judging a finished or running solve:
//
//   - [JacobiSpectralRadius]: theoretical per-sweep contraction of the stencil
//   - [EstimateRate]: observed contraction from a residual history
//   - [PredictSweeps]: remaining sweeps to reach a tolerance at a given rate
//   - [LinearSteadyState]: exact steady state between two fixed boundaries
//   - [MaxDeviation]: infinity-norm distance between two grids
//
// # Budget Planning
//
// The residual shrinks roughly by the spectral radius each sweep, so the
// sweeps needed from a cold start can be estimated before solving:
//
//	rho := analysis.JacobiSpectralRadius(len(grid))
//	n, ok := analysis.PredictSweeps(initialResidual, etol, rho)
package analysis

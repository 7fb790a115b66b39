// Package viz provides the terminal live view of a running heat solve.
//
// [Model] is a bubbletea program that advances the solve a few sweeps per
// tick through a compute backend and redraws:
//
//   - the temperature profile of the grid
//   - the log10 residual history
//   - sweep count, residual and tolerance
//
// Run it with:
//
//	m := viz.NewModel(backend, grid, maxIter, etol)
//	final, err := tea.NewProgram(m).Run()
package viz

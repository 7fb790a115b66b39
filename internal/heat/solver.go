package heat

import (
	"sync"
)

const defaultMinChunk = 4096

type options struct {
	workers     int
	minChunk    int
	observer    Observer
	checkFinite bool
}

// Option configures a Solver.
type Option func(*options)

// WithWorkers splits each sweep across n goroutines. n <= 1 keeps sweeps serial.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithMinChunk sets the minimum number of interior points per worker.
func WithMinChunk(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.minChunk = n
		}
	}
}

// WithObserver registers a per-sweep residual hook.
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observer = fn }
}

// WithFiniteCheck rejects grids holding NaN or Inf samples.
func WithFiniteCheck() Option {
	return func(o *options) { o.checkFinite = true }
}

// Solver runs Jacobi relaxation on caller-owned grids.
type Solver[T Float] struct {
	opts options
	pool *bufferPool[T]
}

// NewSolver returns a Solver configured with opts.
func NewSolver[T Float](opts ...Option) *Solver[T] {
	s := &Solver[T]{
		opts: options{workers: 1, minChunk: defaultMinChunk},
		pool: newBufferPool[T](),
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// With returns a copy of s with extra options applied. The scratch pool is shared.
func (s *Solver[T]) With(opts ...Option) *Solver[T] {
	if len(opts) == 0 {
		return s
	}
	c := &Solver[T]{opts: s.opts, pool: s.pool}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Solve relaxes grid in place for at most maxIter sweeps, stopping early once
// the residual is at or below etol.
func Solve[T Float](grid []T, maxIter int, etol T) (Result[T], error) {
	return NewSolver[T]().Solve(grid, maxIter, etol)
}

// Validate checks solve arguments without touching grid.
func Validate[T Float](grid []T, maxIter int, etol T) error {
	if grid == nil {
		return invalid("grid", "is nil")
	}
	if len(grid) < MinGridSize {
		return invalid("grid_size", "is %d, need at least %d", len(grid), MinGridSize)
	}
	if maxIter < 0 {
		return invalid("max_iter", "is negative (%d)", maxIter)
	}
	if isNaN(etol) || etol < 0 {
		return invalid("etol", "must be a non-negative number, got %g", float64(etol))
	}
	return nil
}

// Solve runs the configured kernel. See the package-level Solve.
func (s *Solver[T]) Solve(grid []T, maxIter int, etol T) (Result[T], error) {
	if err := Validate(grid, maxIter, etol); err != nil {
		return Result[T]{}, err
	}
	if s.opts.checkFinite {
		for i, v := range grid {
			if !isFinite(v) {
				return Result[T]{}, invalid("grid", "holds non-finite value %g at index %d", float64(v), i)
			}
		}
	}

	res := Result[T]{LastEtol: unmeasured[T]()}
	if maxIter == 0 {
		return res, nil
	}

	n := len(grid)
	buf := s.pool.Get(n)
	defer s.pool.Put(buf)
	next := *buf

	workers := s.workersFor(n - 2)
	var partial []T
	if workers > 1 {
		partial = make([]T, workers)
	}

	for res.LastIter < maxIter {
		var residual T
		if workers > 1 {
			residual = sweepParallel(grid, next, partial)
		} else {
			residual = sweep(grid, next, 1, n-1)
		}

		copy(grid[1:n-1], next[1:n-1])
		res.LastIter++
		res.LastEtol = residual

		if s.opts.observer != nil {
			s.opts.observer(res.LastIter, float64(residual))
		}
		if residual <= etol {
			break
		}
	}

	return res, nil
}

func (s *Solver[T]) workersFor(interior int) int {
	w := s.opts.workers
	if w <= 1 || interior <= s.opts.minChunk {
		return 1
	}
	if interior/s.opts.minChunk < w {
		w = interior / s.opts.minChunk
	}
	if w < 1 {
		w = 1
	}
	return w
}

// sweep writes the Jacobi update of cur[lo:hi] into next and returns the
// largest absolute change. NaN changes win so they can't pass for convergence.
// Each neighbour is halved before the add so finite inputs give a finite mean.
func sweep[T Float](cur, next []T, lo, hi int) T {
	var residual T
	for i := lo; i < hi; i++ {
		v := cur[i-1]/2 + cur[i+1]/2
		next[i] = v
		d := v - cur[i]
		if d < 0 {
			d = -d
		}
		residual = maxResidual(residual, d)
	}
	return residual
}

func sweepParallel[T Float](cur, next, partial []T) T {
	n := len(cur)
	interior := n - 2
	workers := len(partial)
	chunkSize := (interior + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := 1 + w*chunkSize
		hi := lo + chunkSize
		if hi > n-1 {
			hi = n - 1
		}
		if lo >= hi {
			partial[w] = 0
			continue
		}

		wg.Add(1)
		go func(worker, lo, hi int) {
			defer wg.Done()
			partial[worker] = sweep(cur, next, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	var residual T
	for _, r := range partial {
		residual = maxResidual(residual, r)
	}
	return residual
}

func maxResidual[T Float](a, b T) T {
	if isNaN(a) {
		return a
	}
	if isNaN(b) || b > a {
		return b
	}
	return a
}

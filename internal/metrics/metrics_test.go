package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/heatsolve/internal/heat"
)

func TestMetricsBeforeObservation(t *testing.T) {
	assert.Equal(t, 0.0, NewSweeps().Value())
	assert.True(t, math.IsNaN(NewResidual().Value()))
	assert.True(t, math.IsNaN(NewConvergenceRate().Value()))
	assert.Equal(t, 0.0, NewHistory().Value())
}

func TestConvergenceRate_Geometric(t *testing.T) {
	c := NewConvergenceRate()
	r := 64.0
	for i := 1; i <= 6; i++ {
		c.Observe(i, r)
		r /= 2
	}
	assert.InDelta(t, 0.5, c.Value(), 1e-12)

	c.Reset()
	assert.True(t, math.IsNaN(c.Value()))
}

func TestConvergenceRate_SkipsZeroResidual(t *testing.T) {
	c := NewConvergenceRate()
	c.Observe(1, 4)
	c.Observe(2, 1)
	c.Observe(3, 0)
	assert.InDelta(t, 0.25, c.Value(), 1e-12)
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	h.Observe(1, 3)
	h.Observe(2, 2)

	vals := h.Values()
	assert.Equal(t, []float64{3, 2}, vals)
	vals[0] = 99
	assert.Equal(t, 3.0, h.Values()[0], "Values must return a copy")

	h.Reset()
	assert.Empty(t, h.Values())
}

func TestObserverWithSolver(t *testing.T) {
	sweeps := NewSweeps()
	residual := NewResidual()
	history := NewHistory()
	rate := NewConvergenceRate()

	s := heat.NewSolver[float64](heat.WithObserver(Observer(sweeps, residual, history, rate)))
	res, err := s.Solve([]float64{0, 100, 100, 100, 0}, 1000, 1e-6)
	require.NoError(t, err)

	assert.Equal(t, float64(res.LastIter), sweeps.Value())
	assert.Equal(t, res.LastEtol, residual.Value())
	assert.Len(t, history.Values(), res.LastIter)
	// Three interior points: the error contracts by cos(pi/4) per sweep.
	assert.InDelta(t, math.Cos(math.Pi/4), rate.Value(), 0.05)

	values := Collect(sweeps, residual, rate)
	assert.Len(t, values, 3)
	assert.Equal(t, sweeps.Value(), values["sweeps"])
}

func TestDefaults(t *testing.T) {
	names := map[string]bool{}
	for _, m := range Defaults() {
		names[m.Name()] = true
	}
	assert.True(t, names["sweeps"])
	assert.True(t, names["residual"])
	assert.True(t, names["convergence_rate"])
}

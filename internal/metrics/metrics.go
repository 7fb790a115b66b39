// Package metrics observes the residual of every sweep.
package metrics

import (
	"math"

	"github.com/san-kum/heatsolve/internal/heat"
)

// Metric accumulates one statistic over the sweeps of a solve.
type Metric interface {
	Name() string
	Observe(iter int, residual float64)
	Value() float64
	Reset()
}

// Observer fans a solver hook out to ms.
func Observer(ms ...Metric) heat.Observer {
	return func(iter int, residual float64) {
		for _, m := range ms {
			m.Observe(iter, residual)
		}
	}
}

// Collect snapshots the value of every metric by name.
func Collect(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Defaults returns the metrics recorded for every run.
func Defaults() []Metric {
	return []Metric{NewSweeps(), NewResidual(), NewConvergenceRate()}
}

type Sweeps struct {
	count int
}

func NewSweeps() *Sweeps { return &Sweeps{} }

func (s *Sweeps) Name() string                { return "sweeps" }
func (s *Sweeps) Observe(iter int, _ float64) { s.count = iter }
func (s *Sweeps) Value() float64              { return float64(s.count) }
func (s *Sweeps) Reset()                      { s.count = 0 }

// Residual keeps the last residual. NaN before the first sweep.
type Residual struct {
	last float64
	seen bool
}

func NewResidual() *Residual { return &Residual{} }

func (r *Residual) Name() string { return "residual" }

func (r *Residual) Observe(_ int, residual float64) {
	r.last = residual
	r.seen = true
}

func (r *Residual) Value() float64 {
	if !r.seen {
		return math.NaN()
	}
	return r.last
}

func (r *Residual) Reset() {
	r.last = 0
	r.seen = false
}

// History records every residual in sweep order.
type History struct {
	values []float64
}

func NewHistory() *History { return &History{values: make([]float64, 0, 256)} }

func (h *History) Name() string                    { return "history_len" }
func (h *History) Observe(_ int, residual float64) { h.values = append(h.values, residual) }
func (h *History) Value() float64                  { return float64(len(h.values)) }
func (h *History) Reset()                          { h.values = h.values[:0] }

// Values returns a copy of the recorded residuals.
func (h *History) Values() []float64 {
	out := make([]float64, len(h.values))
	copy(out, h.values)
	return out
}

// ConvergenceRate is the geometric mean of successive residual ratios.
// Values below 1 mean the residual shrinks each sweep.
type ConvergenceRate struct {
	prev    float64
	sumLog  float64
	samples int
	started bool
}

func NewConvergenceRate() *ConvergenceRate { return &ConvergenceRate{} }

func (c *ConvergenceRate) Name() string { return "convergence_rate" }

func (c *ConvergenceRate) Observe(_ int, residual float64) {
	if c.started && c.prev > 0 && residual > 0 {
		c.sumLog += math.Log(residual / c.prev)
		c.samples++
	}
	c.prev = residual
	c.started = true
}

func (c *ConvergenceRate) Value() float64 {
	if c.samples == 0 {
		return math.NaN()
	}
	return math.Exp(c.sumLog / float64(c.samples))
}

func (c *ConvergenceRate) Reset() {
	c.prev = 0
	c.sumLog = 0
	c.samples = 0
	c.started = false
}

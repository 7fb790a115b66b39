package analysis

import "math"

// JacobiSpectralRadius is the largest eigenvalue magnitude of the Jacobi
// iteration matrix for a grid of n samples: cos(pi/(n-1)).
func JacobiSpectralRadius(n int) float64 {
	if n < 3 {
		return 0
	}
	return math.Cos(math.Pi / float64(n-1))
}

// EstimateRate returns the geometric-mean residual ratio over the last
// window sweeps of history. window <= 0 uses the whole history. Zero and
// non-finite residuals are skipped.
func EstimateRate(history []float64, window int) float64 {
	start := 0
	if window > 0 && len(history) > window+1 {
		start = len(history) - window - 1
	}

	sumLog := 0.0
	count := 0
	for i := start + 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		if !usable(prev) || !usable(cur) {
			continue
		}
		sumLog += math.Log(cur / prev)
		count++
	}

	if count == 0 {
		return math.NaN()
	}
	return math.Exp(sumLog / float64(count))
}

// PredictSweeps estimates how many more sweeps take residual to etol when it
// contracts by rate per sweep. ok is false when the rate never gets there.
func PredictSweeps(residual, etol, rate float64) (sweeps int, ok bool) {
	if residual <= etol {
		return 0, true
	}
	if etol <= 0 || !(rate > 0 && rate < 1) || !usable(residual) {
		return 0, false
	}
	n := math.Ceil(math.Log(etol/residual) / math.Log(rate))
	if n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// LinearSteadyState returns the exact steady state for the boundaries of
// grid: a straight line from grid[0] to grid[len-1].
func LinearSteadyState(grid []float64) []float64 {
	n := len(grid)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = grid[0]
		return out
	}
	left, right := grid[0], grid[n-1]
	for i := range out {
		t := float64(i) / float64(n-1)
		out[i] = left + (right-left)*t
	}
	out[n-1] = right
	return out
}

// MaxDeviation is max |a[i]-b[i]| over the common length.
func MaxDeviation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dev := 0.0
	for i := 0; i < n; i++ {
		d := math.Abs(a[i] - b[i])
		if math.IsNaN(d) {
			return d
		}
		if d > dev {
			dev = d
		}
	}
	return dev
}

// IsNonIncreasing reports whether history never grows by more than slack.
func IsNonIncreasing(history []float64, slack float64) bool {
	for i := 1; i < len(history); i++ {
		if history[i] > history[i-1]+slack {
			return false
		}
	}
	return true
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

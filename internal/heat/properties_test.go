package heat_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/heatsolve/internal/heat"
)

func smoothGrid(n int) []float64 {
	g := make([]float64, n)
	for i := range g {
		x := float64(i) / float64(n-1)
		g[i] = 20 + 80*math.Sin(math.Pi*x) + 10*x
	}
	return g
}

var _ = Describe("Solve", func() {
	grids := map[string][]float64{
		"hot rod":    {0, 100, 100, 100, 0},
		"asymmetric": {10, -5, 30, 7, 2, 90},
		"smooth":     smoothGrid(64),
	}

	Context("for any valid grid", func() {
		for name, g := range grids {
			name, g := name, g

			It("never writes the boundaries of "+name, func() {
				grid := append([]float64{}, g...)
				_, err := heat.Solve(grid, 500, 1e-9)
				Expect(err).NotTo(HaveOccurred())
				Expect(grid[0]).To(Equal(g[0]))
				Expect(grid[len(grid)-1]).To(Equal(g[len(g)-1]))
			})

			It("never exceeds the sweep budget on "+name, func() {
				for _, budget := range []int{0, 1, 7, 50} {
					grid := append([]float64{}, g...)
					res, err := heat.Solve(grid, budget, 0)
					Expect(err).NotTo(HaveOccurred())
					Expect(res.LastIter).To(BeNumerically("<=", budget))
				}
			})

			It("leaves "+name+" untouched with a zero budget", func() {
				grid := append([]float64{}, g...)
				res, err := heat.Solve(grid, 0, 1e-6)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.LastIter).To(Equal(0))
				Expect(grid).To(Equal(g))
			})
		}
	})

	It("reports a non-increasing residual for smooth data", func() {
		var history []float64
		s := heat.NewSolver[float64](heat.WithObserver(func(_ int, r float64) {
			history = append(history, r)
		}))

		_, err := s.Solve(smoothGrid(64), 300, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(300))
		for i := 1; i < len(history); i++ {
			Expect(history[i]).To(BeNumerically("<=", history[i-1]+1e-12))
		}
	})

	It("barely moves an already converged grid", func() {
		const etol = 1e-8
		grid := smoothGrid(32)
		first, err := heat.Solve(grid, 100000, etol)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Converged(etol)).To(BeTrue())

		second, err := heat.Solve(grid, 100000, etol)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.LastIter).To(BeNumerically("<=", 1))
		Expect(second.LastEtol).To(BeNumerically("<=", etol))
	})

	It("drains a hot rod between cold walls", func() {
		grid := []float64{0, 100, 100, 100, 0}
		res, err := heat.Solve(grid, 1000, 1e-6)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Converged(1e-6)).To(BeTrue())
		Expect(res.LastIter).To(BeNumerically("<", 1000))
		for _, v := range grid[1:4] {
			Expect(v).To(BeNumerically("~", 0, 1e-4))
		}
	})

	It("converges toward the linear ramp between unequal boundaries", func() {
		grid := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 80}
		res, err := heat.Solve(grid, 5000, 1e-10)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Converged(1e-10)).To(BeTrue())
		for i, v := range grid {
			Expect(v).To(BeNumerically("~", 80*float64(i)/9, 1e-6))
		}
	})

	It("stops after one sweep on a steady grid with zero tolerance", func() {
		grid := []float64{50, 50, 50, 50, 50}
		res, err := heat.Solve(grid, 100, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.LastIter).To(Equal(1))
		Expect(res.LastEtol).To(BeZero())
	})

	DescribeTable("rejecting malformed input",
		func(grid []float64, maxIter int, etol float64) {
			res, err := heat.Solve(grid, maxIter, etol)
			Expect(err).To(MatchError(heat.ErrInvalidArgument))
			Expect(res.LastIter).To(Equal(0))
		},
		Entry("grid of size 2", []float64{0, 1}, 10, 1e-6),
		Entry("grid of size 2 with zero budget", []float64{0, 1}, 0, 0.0),
		Entry("negative tolerance", []float64{0, 1, 2, 3}, 10, -1.0),
		Entry("negative tolerance with zero budget", []float64{0, 1, 2, 3}, 0, -1.0),
		Entry("nil grid", nil, 10, 1e-6),
	)
})

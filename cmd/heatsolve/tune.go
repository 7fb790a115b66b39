package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/heatsolve/internal/compute"
	"github.com/san-kum/heatsolve/internal/export"
	"github.com/san-kum/heatsolve/internal/heat"
	"github.com/san-kum/heatsolve/internal/optim"
	"github.com/san-kum/heatsolve/internal/storage"
)

var (
	tuneWorkers   []int
	tuneMinChunks []int
	tuneRepeat    int

	svgOut    string
	svgWidth  int
	svgHeight int
)

// runTune grid-searches the cpu kernel's workers and min chunk for the
// fastest solve of the configured grid.
func runTune(cmd *cobra.Command, args []string) error {
	cfg, source, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	initial, err := cfg.Grid.Build()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	ranges := [][]float64{toFloats(tuneWorkers), toFloats(tuneMinChunks)}
	search := optim.NewGridSearch([]string{"workers", "min_chunk"}, ranges)

	grid := make([]compute.Scalar, len(initial))
	objective := func(_ context.Context, p map[string]float64) (float64, error) {
		solver := heat.NewSolver[compute.Scalar](
			heat.WithWorkers(int(p["workers"])),
			heat.WithMinChunk(int(p["min_chunk"])),
		)
		best := time.Duration(-1)
		for i := 0; i < max(tuneRepeat, 1); i++ {
			for j, v := range initial {
				grid[j] = compute.Scalar(v)
			}
			start := time.Now()
			if _, err := solver.Solve(grid, cfg.MaxIter, compute.Scalar(cfg.Etol)); err != nil {
				return 0, err
			}
			if elapsed := time.Since(start); best < 0 || elapsed < best {
				best = elapsed
			}
		}
		logger.Debug("tune trial", "workers", p["workers"], "min_chunk", p["min_chunk"], "elapsed", best)
		return best.Seconds(), nil
	}

	fmt.Printf("tuning %s (%d samples, %d sweeps max)\n\n", source, len(initial), cfg.MaxIter)
	bestParams, bestScore, trials, err := search.Search(cmd.Context(), objective)
	if err != nil {
		return err
	}

	sort.SliceStable(trials, func(i, j int) bool {
		if (trials[i].Err == nil) != (trials[j].Err == nil) {
			return trials[i].Err == nil
		}
		return trials[i].Score < trials[j].Score
	})
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tMIN_CHUNK\tTIME")
	for _, tr := range trials {
		if tr.Err != nil {
			fmt.Fprintf(w, "%.0f\t%.0f\terror: %v\n", tr.Params["workers"], tr.Params["min_chunk"], tr.Err)
			continue
		}
		fmt.Fprintf(w, "%.0f\t%.0f\t%v\n", tr.Params["workers"], tr.Params["min_chunk"], time.Duration(tr.Score*float64(time.Second)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: --workers %.0f (min chunk %.0f) in %v\n",
		bestParams["workers"], bestParams["min_chunk"], time.Duration(bestScore*float64(time.Second)))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	initial, final, err := st.LoadGrid(runID)
	if err != nil {
		return err
	}

	svg := export.ProfileSVG([]export.Series{
		{Name: "initial", Color: "#666688", Values: initial},
		{Name: "final", Color: "#00ccff", Values: final},
	}, svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("no data to export")
	}

	if svgOut == "" {
		_, err = fmt.Println(svg)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(svg+"\n"), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func toFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

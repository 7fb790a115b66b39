package main

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/heatsolve/internal/analysis"
	"github.com/san-kum/heatsolve/internal/buildinfo"
	"github.com/san-kum/heatsolve/internal/compute"
	"github.com/san-kum/heatsolve/internal/config"
	"github.com/san-kum/heatsolve/internal/heat"
	"github.com/san-kum/heatsolve/internal/metrics"
	"github.com/san-kum/heatsolve/internal/storage"
	"github.com/san-kum/heatsolve/internal/viz"
)

// solveOutcome is one finished solve, ready to print or archive.
type solveOutcome struct {
	cfg       *config.Config
	source    string
	backend   compute.Backend
	initial   []float64
	final     []float64
	result    heat.Result[compute.Scalar]
	residuals []float64
	metrics   map[string]float64
	elapsed   time.Duration
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, source, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	be, err := newBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer be.Cleanup()

	out, err := solveConfig(be, cfg, source, logger)
	if err != nil {
		return err
	}

	fmt.Printf("solving %d samples on %s...\n", len(out.initial), be.Name())
	printOutcome(out)

	if !noSave {
		runID, err := saveOutcome(storage.New(cfg.DataDir), out)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if cfg.Strict {
		return out.result.Err(compute.Scalar(cfg.Etol))
	}
	return nil
}

// solveConfig builds the grid described by cfg and relaxes it on be.
func solveConfig(be compute.Backend, cfg *config.Config, source string, logger *slog.Logger) (*solveOutcome, error) {
	initial, err := cfg.Grid.Build()
	if err != nil {
		return nil, err
	}
	grid := toScalar(initial)

	ms := metrics.Defaults()
	history := metrics.NewHistory()
	observe := metrics.Observer(append(ms, history)...)

	start := time.Now()
	res, err := be.Solve(grid, cfg.MaxIter, compute.Scalar(cfg.Etol),
		heat.WithObserver(observe),
		heat.WithFiniteCheck(),
	)
	if err != nil {
		return nil, fmt.Errorf("solve %s: %w", source, err)
	}
	elapsed := time.Since(start)

	logger.Info("solve finished",
		"source", source,
		"backend", be.Name(),
		"sweeps", res.LastIter,
		"residual", float64(res.LastEtol),
		"elapsed", elapsed,
	)

	return &solveOutcome{
		cfg:       cfg,
		source:    source,
		backend:   be,
		initial:   initial,
		final:     fromScalar(grid),
		result:    res,
		residuals: history.Values(),
		metrics:   metrics.Collect(ms...),
		elapsed:   elapsed,
	}, nil
}

func printOutcome(out *solveOutcome) {
	res := out.result
	etol := compute.Scalar(out.cfg.Etol)

	fmt.Printf("completed in %v\n", out.elapsed)
	fmt.Printf("sweeps: %d / %d\n", res.LastIter, out.cfg.MaxIter)
	fmt.Printf("final residual: %.6e\n", float64(res.LastEtol))
	fmt.Printf("converged: %t\n", res.Converged(etol))

	n := len(out.final)
	rho := analysis.JacobiSpectralRadius(n)
	fmt.Printf("jacobi spectral radius: %.6f\n", rho)
	if rate := analysis.EstimateRate(out.residuals, 0); !math.IsNaN(rate) {
		fmt.Printf("observed rate: %.6f\n", rate)
		if !res.Converged(etol) {
			if more, ok := analysis.PredictSweeps(float64(res.LastEtol), out.cfg.Etol, rate); ok {
				fmt.Printf("sweeps still needed: ~%d\n", more)
			}
		}
	}
	if len(out.residuals) > 1 && !analysis.IsNonIncreasing(out.residuals, 1e-12) {
		fmt.Println("warning: residual history is not monotone")
	}
	fmt.Printf("deviation from steady state: %.6e\n",
		analysis.MaxDeviation(out.final, analysis.LinearSteadyState(out.final)))
}

func saveOutcome(st *storage.Store, out *solveOutcome) (string, error) {
	if err := st.Init(); err != nil {
		return "", err
	}
	info := buildinfo.Get()
	return st.Save(&storage.Run{
		Meta: storage.RunMetadata{
			Source:    out.source,
			Backend:   out.backend.Name(),
			Device:    out.backend.Device().String(),
			Precision: info.Precision,
			Version:   info.Version,
			MaxIter:   out.cfg.MaxIter,
			Etol:      out.cfg.Etol,
			LastIter:  out.result.LastIter,
			LastEtol:  float64(out.result.LastEtol),
			Converged: out.result.Converged(compute.Scalar(out.cfg.Etol)),
			ElapsedMs: float64(out.elapsed.Microseconds()) / 1000,
			Metrics:   out.metrics,
		},
		Initial:   out.initial,
		Final:     out.final,
		Residuals: out.residuals,
	})
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	be, err := newBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer be.Cleanup()

	initial, err := cfg.Grid.Build()
	if err != nil {
		return err
	}

	m := viz.NewModel(be, toScalar(initial), cfg.MaxIter, compute.Scalar(cfg.Etol)).WithFrameRate(frameRate)

	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

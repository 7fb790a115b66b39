package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/heatsolve/internal/compute"
	"github.com/san-kum/heatsolve/internal/config"
	"github.com/san-kum/heatsolve/internal/storage"
)

// benchRow is one line of the benchmark table.
type benchRow struct {
	device  compute.Device
	size    int
	algo    string
	elapsed time.Duration
	iters   int
}

func runBench(cmd *cobra.Command, args []string) error {
	logger := newLogger(logLevel)

	var rows []benchRow
	for _, name := range benchDevices {
		device, err := compute.ParseDevice(name)
		if err != nil {
			return err
		}
		be, err := compute.New(compute.Config{Device: device, Workers: workers, Logger: logger})
		if errors.Is(err, compute.ErrBackendUnavailable) {
			logger.Warn("skipping device", "device", name, "err", err)
			continue
		}
		if err != nil {
			return err
		}

		for _, n := range benchSizes {
			row, err := benchOne(be, n)
			if err != nil {
				be.Cleanup()
				return err
			}
			rows = append(rows, row)
		}
		be.Cleanup()
	}

	if benchCSV {
		return writeBenchCSV(os.Stdout, rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tSIZE\tALGO\tTIME\tITERS\tPOINTS/SEC")
	for _, r := range rows {
		rate := float64(r.size) * float64(r.iters) / r.elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%d\t%s\t%v\t%d\t%.3g\n", r.device, r.size, r.algo, r.elapsed, r.iters, rate)
	}
	return w.Flush()
}

// benchOne times the best of benchRepeat solves of a hot rod of n samples.
func benchOne(be compute.Backend, n int) (benchRow, error) {
	gen := config.GridConfig{Size: n, Interior: config.DefaultInterior}
	initial, err := gen.Build()
	if err != nil {
		return benchRow{}, err
	}
	grid := make([]compute.Scalar, n)

	row := benchRow{device: be.Device(), size: n, algo: be.Name()}
	for i := 0; i < max(benchRepeat, 1); i++ {
		for j, v := range initial {
			grid[j] = compute.Scalar(v)
		}

		start := time.Now()
		res, err := be.Solve(grid, benchMaxIter, compute.Scalar(benchEtol))
		if err != nil {
			return benchRow{}, fmt.Errorf("bench %s n=%d: %w", be.Name(), n, err)
		}
		elapsed := time.Since(start)

		if i == 0 || elapsed < row.elapsed {
			row.elapsed = elapsed
		}
		row.iters = res.LastIter
	}
	return row, nil
}

func writeBenchCSV(w io.Writer, rows []benchRow) error {
	if _, err := fmt.Fprintln(w, "Target device;Grid size;Algo ver;Elapsed Time;Iters"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s;%d;%s;%.6f;%d\n", r.device, r.size, r.algo, r.elapsed.Seconds(), r.iters); err != nil {
			return err
		}
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := newLogger(logLevel)

	cfgs := make([]*config.Config, len(args))
	for i, path := range args {
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("data") || cfg.DataDir == "" {
			cfg.DataDir = dataDir
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		cfgs[i] = cfg
	}

	outcomes := make([]*solveOutcome, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(jobs, 1))

	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			be, err := newBackend(cfg, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", args[i], err)
			}
			defer be.Cleanup()

			out, err := solveConfig(be, cfg, "config:"+args[i], logger)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONFIG\tBACKEND\tSIZE\tSWEEPS\tRESIDUAL\tCONVERGED\tTIME\tRUN")

	var failed []error
	for i, out := range outcomes {
		runID := "-"
		if !noSave {
			id, err := saveOutcome(storage.New(out.cfg.DataDir), out)
			if err != nil {
				return fmt.Errorf("failed to save run: %w", err)
			}
			runID = id
		}

		etol := compute.Scalar(out.cfg.Etol)
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.3e\t%t\t%v\t%s\n",
			args[i],
			out.backend.Name(),
			len(out.final),
			out.result.LastIter,
			float64(out.result.LastEtol),
			out.result.Converged(etol),
			out.elapsed,
			runID,
		)
		if out.cfg.Strict {
			if err := out.result.Err(etol); err != nil {
				failed = append(failed, fmt.Errorf("%s: %w", args[i], err))
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return errors.Join(failed...)
}

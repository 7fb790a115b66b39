package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/heatsolve/internal/compute"
	"github.com/san-kum/heatsolve/internal/config"
)

var (
	dataDir  string
	logLevel string
	backend  string
	fallback bool
	workers  int
	// Grid source
	configFile string
	preset     string
	values     []float64
	size       int
	left       float64
	right      float64
	interior   float64
	// Solver budget
	maxIter int
	etol    float64
	strict  bool
	noSave  bool
	// bench
	benchSizes   []int
	benchDevices []string
	benchRepeat  int
	benchMaxIter int
	benchEtol    float64
	benchCSV     bool
	// batch
	jobs int
	// live
	frameRate int
	// info
	asJSON bool
)

// main registers the heatsolve commands and exits with status 1 when one fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "heatsolve",
		Short:         "steady-state heat equation solver",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&backend, "backend", "", "device to solve on (cpu, gpu; empty = compiled target)")
	pf.BoolVar(&fallback, "fallback", true, "fall back to cpu when the gpu is unavailable")
	pf.IntVar(&workers, "workers", 0, "goroutines per cpu sweep (0 = all cores)")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "relax a grid to steady state",
		Args:  cobra.NoArgs,
		RunE:  runSolve,
	}
	addGridFlags(solveCmd)
	solveCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the tolerance is not reached")
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not archive the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "solve with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addGridFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "show version, target device and precision",
		Args:  cobra.NoArgs,
		RunE:  showInfo,
	}
	infoCmd.Flags().BoolVar(&asJSON, "json", false, "print as json")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list grid presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "plot a run's grid and residual history",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's grid as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the solver across grid sizes and devices",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{1 << 10, 1 << 14, 1 << 18}, "grid sizes")
	benchCmd.Flags().StringSliceVar(&benchDevices, "devices", []string{"cpu", "gpu"}, "devices to compare")
	benchCmd.Flags().IntVar(&benchRepeat, "repeat", 3, "runs per size, best time is reported")
	benchCmd.Flags().IntVar(&benchMaxIter, "max-iter", 1000, "sweep budget")
	benchCmd.Flags().Float64Var(&benchEtol, "etol", 0, "tolerance (0 runs the whole budget)")
	benchCmd.Flags().BoolVar(&benchCSV, "csv", false, "print ';'-separated csv")

	batchCmd := &cobra.Command{
		Use:   "batch [config.yaml...]",
		Short: "solve several configs concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&jobs, "jobs", 4, "concurrent solves")
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not archive the runs")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run's initial and final profile as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search cpu workers and chunk size for a grid",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addGridFlags(tuneCmd)
	tuneCmd.Flags().IntSliceVar(&tuneWorkers, "worker-counts", []int{1, 2, 4, 8}, "worker counts to try")
	tuneCmd.Flags().IntSliceVar(&tuneMinChunks, "min-chunks", []int{1024, 4096, 16384}, "minimum chunk sizes to try")
	tuneCmd.Flags().IntVar(&tuneRepeat, "repeat", 3, "runs per point, best time is kept")

	rootCmd.AddCommand(solveCmd, liveCmd, infoCmd, presetsCmd, listCmd, showCmd, exportCmd, exportCSVCmd, exportSVGCmd, benchCmd, batchCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addGridFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64SliceVar(&values, "values", nil, "explicit grid values, boundaries included")
	f.IntVar(&size, "size", config.DefaultSize, "generated grid size")
	f.Float64Var(&left, "left", 0, "left boundary temperature")
	f.Float64Var(&right, "right", 0, "right boundary temperature")
	f.Float64Var(&interior, "interior", config.DefaultInterior, "initial interior temperature")
	f.IntVar(&maxIter, "max-iter", config.DefaultMaxIter, "sweep budget")
	f.Float64Var(&etol, "etol", config.DefaultEtol, "residual tolerance")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	source := "flags"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
		source = "preset:" + preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		source = "config:" + configFile
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("fallback") {
		cfg.Fallback = fallback
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("max-iter") {
		cfg.MaxIter = maxIter
	}
	if flags.Changed("etol") {
		cfg.Etol = etol
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}

	switch {
	case flags.Changed("values"):
		cfg.Grid = config.GridConfig{Values: append([]float64(nil), values...)}
		source = "values"
	case flags.Changed("size") || flags.Changed("left") || flags.Changed("right") || flags.Changed("interior"):
		g := cfg.Grid
		g.Values = nil
		if flags.Changed("size") || g.Size == 0 {
			g.Size = size
		}
		if flags.Changed("left") {
			g.Left = left
		}
		if flags.Changed("right") {
			g.Right = right
		}
		if flags.Changed("interior") {
			g.Interior = interior
		}
		cfg.Grid = g
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newBackend(cfg *config.Config, logger *slog.Logger) (compute.Backend, error) {
	device, err := compute.ParseDevice(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return compute.New(compute.Config{
		Device:   device,
		Workers:  cfg.Workers,
		Fallback: cfg.Fallback,
		Logger:   logger,
	})
}

func toScalar(src []float64) []compute.Scalar {
	out := make([]compute.Scalar, len(src))
	for i, v := range src {
		out[i] = compute.Scalar(v)
	}
	return out
}

func fromScalar(src []compute.Scalar) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

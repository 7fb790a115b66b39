package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/heatsolve/internal/compute"
	"github.com/san-kum/heatsolve/internal/config"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile, values = "", "", nil
	cmd := &cobra.Command{Use: "solve"}
	addGridFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, source, err := resolveConfig(newTestCmd(t))
	require.NoError(t, err)
	assert.Equal(t, "flags", source)
	assert.Equal(t, config.DefaultMaxIter, cfg.MaxIter)
	assert.Equal(t, config.DefaultSize, cfg.Grid.Len())
}

func TestResolveConfigPresetWithOverride(t *testing.T) {
	cfg, source, err := resolveConfig(newTestCmd(t, "--preset", "hot-rod", "--max-iter", "7"))
	require.NoError(t, err)
	assert.Equal(t, "preset:hot-rod", source)
	assert.Equal(t, 7, cfg.MaxIter)
	assert.Equal(t, []float64{0, 100, 100, 100, 0}, cfg.Grid.Values)
}

func TestResolveConfigValues(t *testing.T) {
	cfg, source, err := resolveConfig(newTestCmd(t, "--values", "1,2,3,4"))
	require.NoError(t, err)
	assert.Equal(t, "values", source)
	assert.Equal(t, []float64{1, 2, 3, 4}, cfg.Grid.Values)
}

func TestResolveConfigGenerated(t *testing.T) {
	cfg, _, err := resolveConfig(newTestCmd(t, "--size", "9", "--left", "10"))
	require.NoError(t, err)
	grid, err := cfg.Grid.Build()
	require.NoError(t, err)
	assert.Len(t, grid, 9)
	assert.Equal(t, 10.0, grid[0])
	assert.Equal(t, config.DefaultInterior, grid[4])
}

func TestResolveConfigRejects(t *testing.T) {
	_, _, err := resolveConfig(newTestCmd(t, "--preset", "nope"))
	assert.Error(t, err)

	_, _, err = resolveConfig(newTestCmd(t, "--values", "1,2"))
	assert.Error(t, err)

	_, _, err = resolveConfig(newTestCmd(t, "--etol=-1"))
	assert.Error(t, err)
}

func TestSolveConfig(t *testing.T) {
	cfg := config.GetPreset("hot-rod")
	be := compute.NewCPUBackend(1, nil)

	out, err := solveConfig(be, cfg, "preset:hot-rod", newLogger("error"))
	require.NoError(t, err)
	assert.True(t, out.result.Converged(compute.Scalar(cfg.Etol)))
	assert.Len(t, out.residuals, out.result.LastIter)
	assert.Equal(t, []float64{0, 100, 100, 100, 0}, out.initial)
	for _, v := range out.final {
		assert.InDelta(t, 0, v, 1e-5)
	}
	assert.Equal(t, float64(out.result.LastIter), out.metrics["sweeps"])
}

func TestWriteBenchCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []benchRow{{device: compute.DeviceCPU, size: 1024, algo: "cpu", elapsed: 1500 * time.Millisecond, iters: 100}}
	require.NoError(t, writeBenchCSV(&buf, rows))
	assert.Equal(t, "Target device;Grid size;Algo ver;Elapsed Time;Iters\nCPU;1024;cpu;1.500000;100\n", buf.String())
}

func TestThin(t *testing.T) {
	short := []float64{1, 2, 3}
	assert.Equal(t, short, thin(short))

	long := make([]float64, 1000)
	for i := range long {
		long[i] = float64(i)
	}
	got := thin(long)
	assert.Len(t, got, maxPlotWidth)
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 999.0, got[maxPlotWidth-1])
}

func TestFormatResidual(t *testing.T) {
	assert.Equal(t, "n/a", formatResidual(-1))
	assert.Equal(t, "2.500e-01", formatResidual(0.25))
}

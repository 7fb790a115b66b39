package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/heatsolve/internal/buildinfo"
	"github.com/san-kum/heatsolve/internal/config"
	"github.com/san-kum/heatsolve/internal/storage"
	"github.com/san-kum/heatsolve/internal/viz"
)

const maxPlotWidth = 80

func showInfo(cmd *cobra.Command, args []string) error {
	info := buildinfo.Get()
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	panel := lipgloss.JoinVertical(lipgloss.Left,
		viz.GradientTitle.Render("heatsolve"),
		"",
		viz.Metric("version", info.Version),
		viz.Metric("target", info.TargetDevice),
		viz.Metric("precision", info.Precision),
		viz.Metric("go", info.GoVersion),
	)
	fmt.Println(viz.GlassPanel.Render(panel))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tMAX_ITER\tETOL")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\n", name, p.Grid.Len(), p.MaxIter, p.Etol)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tBACKEND\tSIZE\tSWEEPS\tRESIDUAL\tCONVERGED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%t\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Backend,
			run.GridSize,
			run.LastIter,
			formatResidual(run.LastEtol),
			run.Converged,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	initial, final, err := st.LoadGrid(runID)
	if err != nil {
		return err
	}
	if len(final) == 0 {
		return fmt.Errorf("no data to plot")
	}

	residuals, err := st.LoadResiduals(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("backend: %s (%s, %s)\n", meta.Backend, meta.Device, meta.Precision)
	fmt.Printf("sweeps: %d / %d\n", meta.LastIter, meta.MaxIter)
	fmt.Printf("residual: %s (etol %g)\n\n", formatResidual(meta.LastEtol), meta.Etol)

	graph := asciigraph.PlotMany([][]float64{thin(initial), thin(final)},
		asciigraph.Height(10),
		asciigraph.Width(maxPlotWidth),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Red),
		asciigraph.Caption("temperature: initial, final (red)"),
	)
	fmt.Println(graph)
	fmt.Println()

	if len(residuals) > 1 {
		logs := make([]float64, len(residuals))
		for i, r := range residuals {
			logs[i] = math.Log10(math.Max(r, 1e-16))
		}
		graph = asciigraph.Plot(thin(logs),
			asciigraph.Height(10),
			asciigraph.Width(maxPlotWidth),
			asciigraph.Caption("log10 residual vs sweep"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).Export(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	initial, final, err := st.LoadGrid(runID)
	if err != nil {
		return err
	}

	if len(final) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"index", "initial", "final"}); err != nil {
		return err
	}
	for i := range final {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(initial[i], 'f', 6, 64),
			strconv.FormatFloat(final[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// formatResidual renders the -1 the archive uses for an unmeasured residual.
func formatResidual(r float64) string {
	if r < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.3e", r)
}

// thin keeps at most maxPlotWidth evenly spaced points, endpoints included.
func thin(data []float64) []float64 {
	n := len(data)
	if n <= maxPlotWidth {
		return data
	}
	out := make([]float64, maxPlotWidth)
	for i := range out {
		out[i] = data[i*(n-1)/(maxPlotWidth-1)]
	}
	return out
}

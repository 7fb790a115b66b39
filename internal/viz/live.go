package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/heatsolve/internal/compute"
	"github.com/san-kum/heatsolve/internal/heat"
)

const (
	plotWidth        = 72
	plotHeight       = 10
	historyCapacity  = 600
	maxSweepsPerTick = 1 << 16
	residualFloor    = -16.0
)

type TickMsg time.Time

// Model holds the grid under relaxation and the view state.
type Model struct {
	backend       compute.Backend
	initial       []compute.Scalar
	grid          []compute.Scalar
	maxIter       int
	etol          compute.Scalar
	iter          int
	residual      float64
	history       []float64
	sweepsPerTick int
	running       bool
	done          bool
	err           error
	frameRate     int
}

// NewModel copies grid; the caller's buffer is left alone.
func NewModel(backend compute.Backend, grid []compute.Scalar, maxIter int, etol compute.Scalar) Model {
	initial := make([]compute.Scalar, len(grid))
	copy(initial, grid)
	work := make([]compute.Scalar, len(grid))
	copy(work, grid)

	return Model{
		backend:       backend,
		initial:       initial,
		grid:          work,
		maxIter:       maxIter,
		etol:          etol,
		residual:      math.Inf(1),
		history:       make([]float64, 0, historyCapacity),
		sweepsPerTick: 1,
		running:       true,
		frameRate:     30,
	}
}

// WithFrameRate sets ticks per second.
func (m Model) WithFrameRate(fps int) Model {
	if fps > 0 {
		m.frameRate = fps
	}
	return m
}

func (m Model) Grid() []compute.Scalar { return m.grid }
func (m Model) Iter() int              { return m.iter }
func (m Model) Residual() float64      { return m.residual }
func (m Model) Done() bool             { return m.done }
func (m Model) Err() error             { return m.err }

// Converged reports whether the solve stopped at tolerance.
func (m Model) Converged() bool {
	return m.done && m.err == nil && m.residual <= float64(m.etol)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances the solve.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			if m.sweepsPerTick < maxSweepsPerTick {
				m.sweepsPerTick *= 2
			}
		case "-", "_":
			if m.sweepsPerTick > 1 {
				m.sweepsPerTick /= 2
			}
		case "r":
			m.reset()
		}
	case TickMsg:
		if m.running && !m.done {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	budget := m.maxIter - m.iter
	if budget <= 0 {
		m.done = true
		return
	}
	k := m.sweepsPerTick
	if k > budget {
		k = budget
	}

	before := len(m.history)
	res, err := m.backend.Solve(m.grid, k, m.etol, heat.WithObserver(func(_ int, r float64) {
		m.record(r)
	}))
	if err != nil {
		m.err = err
		m.done = true
		return
	}
	if len(m.history) == before && res.LastIter > 0 {
		m.record(float64(res.LastEtol))
	}

	m.iter += res.LastIter
	m.residual = float64(res.LastEtol)
	if res.Converged(m.etol) || m.iter >= m.maxIter {
		m.done = true
	}
}

func (m *Model) record(r float64) {
	if len(m.history) == historyCapacity {
		copy(m.history, m.history[1:])
		m.history = m.history[:historyCapacity-1]
	}
	m.history = append(m.history, r)
}

func (m *Model) reset() {
	copy(m.grid, m.initial)
	m.iter = 0
	m.residual = math.Inf(1)
	m.history = m.history[:0]
	m.done = false
	m.err = nil
	m.running = true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(GradientTitle.Render("heat solve"))
	b.WriteString(" ")
	b.WriteString(Subtle.Render(fmt.Sprintf("%s, %d samples", m.backend.Name(), len(m.grid))))
	b.WriteString("\n")

	profile := asciigraph.Plot(downsample(m.grid, plotWidth),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("temperature"),
	)
	b.WriteString(graphStyle.Render(profile))
	b.WriteString("\n")

	if len(m.history) > 1 {
		hist := asciigraph.Plot(logResiduals(m.history),
			asciigraph.Height(plotHeight/2),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("log10 residual"),
		)
		b.WriteString(graphStyle.Render(hist))
		b.WriteString("\n")
	}

	stats := lipgloss.JoinVertical(lipgloss.Left,
		Metric("status", m.status()),
		Metric("sweeps", fmt.Sprintf("%d / %d", m.iter, m.maxIter)),
		Metric("residual", fmt.Sprintf("%.3e", m.residual)),
		Metric("tolerance", fmt.Sprintf("%.3e", float64(m.etol))),
		Metric("per tick", fmt.Sprintf("%d", m.sweepsPerTick)),
	)
	b.WriteString(GlassPanel.Render(stats))
	b.WriteString("\n")
	b.WriteString(KeyHint.Render("space pause  +/- sweeps per tick  r reset  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("error: " + m.err.Error())
	case m.Converged():
		return StatusDone.Render("converged")
	case m.done:
		return StatusPaused.Render("budget exhausted")
	case !m.running:
		return StatusPaused.Render("paused")
	default:
		return StatusRunning.Render("running")
	}
}

// downsample keeps at most width points, taking the bucket midpoint.
func downsample(grid []compute.Scalar, width int) []float64 {
	n := len(grid)
	if n <= width {
		out := make([]float64, n)
		for i, v := range grid {
			out[i] = float64(v)
		}
		return out
	}
	out := make([]float64, width)
	for i := range out {
		lo := i * n / width
		hi := (i + 1) * n / width
		out[i] = float64(grid[(lo+hi)/2])
	}
	out[0] = float64(grid[0])
	out[width-1] = float64(grid[n-1])
	return out
}

func logResiduals(history []float64) []float64 {
	out := make([]float64, len(history))
	for i, r := range history {
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			out[i] = residualFloor
			continue
		}
		out[i] = math.Max(math.Log10(r), residualFloor)
	}
	return out
}

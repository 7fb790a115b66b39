package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatsolve/internal/compute"
)

const (
	DefaultMaxIter  = 10000
	DefaultEtol     = 1e-6
	DefaultSize     = 5
	DefaultInterior = 100.0
	DefaultDataDir  = ".heatsolve"
	DefaultLogLevel = "warn"
)

type Config struct {
	Backend  string     `yaml:"backend"`
	Fallback bool       `yaml:"fallback"`
	Workers  int        `yaml:"workers"`
	MaxIter  int        `yaml:"max_iter"`
	Etol     float64    `yaml:"etol"`
	Strict   bool       `yaml:"strict"`
	DataDir  string     `yaml:"data_dir"`
	LogLevel string     `yaml:"log_level"`
	Grid     GridConfig `yaml:"grid"`
}

// GridConfig describes the initial temperature field. Values wins over the
// generated form when set.
type GridConfig struct {
	Values   []float64 `yaml:"values,omitempty"`
	Size     int       `yaml:"size"`
	Left     float64   `yaml:"left"`
	Right    float64   `yaml:"right"`
	Interior float64   `yaml:"interior"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend:  "",
		Fallback: true,
		MaxIter:  DefaultMaxIter,
		Etol:     DefaultEtol,
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
		Grid: GridConfig{
			Size:     DefaultSize,
			Interior: DefaultInterior,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem with cfg at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := compute.ParseDevice(c.Backend); err != nil {
		errs = append(errs, err)
	}
	if c.MaxIter < 0 {
		errs = append(errs, fmt.Errorf("max_iter must be >= 0, got %d", c.MaxIter))
	}
	if c.Etol < 0 || c.Etol != c.Etol {
		errs = append(errs, fmt.Errorf("etol must be >= 0, got %g", c.Etol))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if n := c.Grid.Len(); n < 3 {
		errs = append(errs, fmt.Errorf("grid needs at least 3 samples, got %d", n))
	}
	return errors.Join(errs...)
}

// Len is the number of samples Build would return.
func (g GridConfig) Len() int {
	if len(g.Values) > 0 {
		return len(g.Values)
	}
	return g.Size
}

// Build returns a fresh grid the caller owns.
func (g GridConfig) Build() ([]float64, error) {
	if len(g.Values) > 0 {
		grid := make([]float64, len(g.Values))
		copy(grid, g.Values)
		return grid, nil
	}
	if g.Size < 3 {
		return nil, fmt.Errorf("grid size must be >= 3, got %d", g.Size)
	}
	grid := make([]float64, g.Size)
	grid[0] = g.Left
	grid[g.Size-1] = g.Right
	for i := 1; i < g.Size-1; i++ {
		grid[i] = g.Interior
	}
	return grid, nil
}

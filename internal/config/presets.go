package config

import "sort"

var Presets = map[string]*Config{
	"hot-rod": {
		MaxIter: 1000, Etol: 1e-6,
		Grid: GridConfig{Values: []float64{0, 100, 100, 100, 0}},
	},
	"ramp": {
		MaxIter: 20000, Etol: 1e-9,
		Grid: GridConfig{Size: 33, Left: 0, Right: 100, Interior: 0},
	},
	"uniform": {
		MaxIter: 100, Etol: 0,
		Grid: GridConfig{Size: 16, Left: 25, Right: 25, Interior: 25},
	},
	"cold-wall": {
		MaxIter: 50000, Etol: 1e-8,
		Grid: GridConfig{Size: 64, Left: -40, Right: 20, Interior: 20},
	},
	"wide": {
		MaxIter: 2000, Etol: 1e-6, Workers: 0,
		Grid: GridConfig{Size: 1 << 20, Left: 0, Right: 0, Interior: 100},
	},
}

// GetPreset returns a copy of the named preset filled over the defaults, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.MaxIter = p.MaxIter
	cfg.Etol = p.Etol
	cfg.Workers = p.Workers
	cfg.Grid = p.Grid
	if p.Grid.Values != nil {
		cfg.Grid.Values = append([]float64(nil), p.Grid.Values...)
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

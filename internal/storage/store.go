package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	metadataFile  = "metadata.json"
	gridFile      = "grid.csv"
	residualsFile = "residuals.csv"
)

// ErrRunNotFound is returned when a run id has no directory.
var ErrRunNotFound = errors.New("storage: run not found")

var newRunID = uuid.NewString

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Source    string             `json:"source"`
	Backend   string             `json:"backend"`
	Device    string             `json:"device"`
	Precision string             `json:"precision"`
	Version   string             `json:"version"`
	GridSize  int                `json:"grid_size"`
	MaxIter   int                `json:"max_iter"`
	Etol      float64            `json:"etol"`
	LastIter  int                `json:"last_iter"`
	LastEtol  float64            `json:"last_etol"`
	Converged bool               `json:"converged"`
	ElapsedMs float64            `json:"elapsed_ms"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is a solve to archive: the grid before and after plus the residual
// of every sweep.
type Run struct {
	Meta      RunMetadata
	Initial   []float64
	Final     []float64
	Residuals []float64
}

// Save writes run under a fresh id and returns it. A run that fails to
// write is removed.
func (s *Store) Save(run *Run) (string, error) {
	if len(run.Initial) != len(run.Final) {
		return "", fmt.Errorf("initial and final grids differ in length: %d vs %d", len(run.Initial), len(run.Final))
	}

	runID := newRunID()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, runID, run); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir, runID string, run *Run) error {
	meta := run.Meta
	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.GridSize == 0 {
		meta.GridSize = len(run.Final)
	}
	// JSON has no Inf/NaN; an unmeasured residual is stored as -1.
	if !finite(meta.LastEtol) {
		meta.LastEtol = -1
	}
	clean := make(map[string]float64, len(meta.Metrics))
	for k, v := range meta.Metrics {
		if finite(v) {
			clean[k] = v
		}
	}
	meta.Metrics = clean

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	rows := make([][]string, 0, len(run.Final)+1)
	rows = append(rows, []string{"index", "initial", "final"})
	for i := range run.Final {
		rows = append(rows, []string{
			strconv.Itoa(i),
			formatFloat(run.Initial[i]),
			formatFloat(run.Final[i]),
		})
	}
	if err := writeCSV(filepath.Join(runDir, gridFile), rows); err != nil {
		return err
	}

	rows = make([][]string, 0, len(run.Residuals)+1)
	rows = append(rows, []string{"sweep", "residual"})
	for i, r := range run.Residuals {
		rows = append(rows, []string{strconv.Itoa(i + 1), formatFloat(r)})
	}
	if err := writeCSV(filepath.Join(runDir, residualsFile), rows); err != nil {
		return err
	}

	return nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadGrid returns the initial and final grids of a run.
func (s *Store) LoadGrid(runID string) (initial, final []float64, err error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, gridFile))
	if err != nil {
		return nil, nil, err
	}

	initial = make([]float64, 0, len(records))
	final = make([]float64, 0, len(records))
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		a, errA := strconv.ParseFloat(record[1], 64)
		b, errB := strconv.ParseFloat(record[2], 64)
		if errA != nil || errB != nil {
			continue
		}
		initial = append(initial, a)
		final = append(final, b)
	}
	return initial, final, nil
}

// LoadResiduals returns the per-sweep residuals of a run.
func (s *Store) LoadResiduals(runID string) ([]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, residualsFile))
	if err != nil {
		return nil, err
	}

	residuals := make([]float64, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		r, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		residuals = append(residuals, r)
	}
	return residuals, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

// readCSV returns the data rows, header dropped.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func finite(v float64) bool {
	return v == v && v-v == 0
}

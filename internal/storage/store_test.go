package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleRun() *Run {
	return &Run{
		Meta: RunMetadata{
			Source:    "preset:hot-rod",
			Backend:   "cpu",
			Device:    "CPU",
			MaxIter:   1000,
			Etol:      1e-6,
			LastIter:  2,
			LastEtol:  50,
			Converged: false,
			Metrics:   map[string]float64{"sweeps": 2, "convergence_rate": math.NaN()},
		},
		Initial:   []float64{0, 100, 100, 100, 0},
		Final:     []float64{0, 50, 50, 50, 0},
		Residuals: []float64{50, 50},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleRun())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("expected id %s, got %s", runID, meta.ID)
	}
	if meta.GridSize != 5 {
		t.Errorf("expected grid size 5, got %d", meta.GridSize)
	}
	if meta.LastIter != 2 || meta.LastEtol != 50 {
		t.Errorf("unexpected result %d / %g", meta.LastIter, meta.LastEtol)
	}
	if meta.Metrics["sweeps"] != 2 {
		t.Errorf("expected sweeps 2, got %f", meta.Metrics["sweeps"])
	}
	if _, ok := meta.Metrics["convergence_rate"]; ok {
		t.Error("non-finite metric should be dropped")
	}

	initial, final, err := st.LoadGrid(runID)
	if err != nil {
		t.Fatalf("load grid failed: %v", err)
	}
	if len(initial) != 5 || len(final) != 5 {
		t.Fatalf("expected 5 samples, got %d/%d", len(initial), len(final))
	}
	if initial[1] != 100 || final[1] != 50 {
		t.Errorf("grid mismatch: %v -> %v", initial, final)
	}

	residuals, err := st.LoadResiduals(runID)
	if err != nil {
		t.Fatalf("load residuals failed: %v", err)
	}
	if len(residuals) != 2 {
		t.Errorf("expected 2 residuals, got %d", len(residuals))
	}
}

func TestStoreSave_UnmeasuredResidual(t *testing.T) {
	st := New(t.TempDir())
	run := sampleRun()
	run.Meta.LastIter = 0
	run.Meta.LastEtol = math.Inf(1)
	run.Residuals = nil

	runID, err := st.Save(run)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.LastEtol != -1 {
		t.Errorf("expected -1 for unmeasured residual, got %g", meta.LastEtol)
	}
}

func TestStoreSave_LengthMismatch(t *testing.T) {
	st := New(t.TempDir())
	run := sampleRun()
	run.Final = run.Final[:3]

	if _, err := st.Save(run); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestStoreSave_RemovesPartialRun(t *testing.T) {
	base := t.TempDir()
	st := New(base)

	orig := newRunID
	newRunID = func() string { return "broken" }
	defer func() { newRunID = orig }()

	// A directory where grid.csv belongs makes the second write fail.
	if err := os.MkdirAll(filepath.Join(base, "broken", gridFile), 0755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := st.Save(sampleRun()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if _, err := os.Stat(filepath.Join(base, "broken")); !os.IsNotExist(err) {
		t.Errorf("expected run directory to be removed, stat err = %v", err)
	}
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	older := sampleRun()
	older.Meta.Timestamp = time.Now().Add(-time.Hour)
	olderID, err := st.Save(older)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	newerID, err := st.Save(sampleRun())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != newerID || runs[1].ID != olderID {
		t.Errorf("expected newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreLoad_NotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(sampleRun())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, gridFile, residualsFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreExport(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(sampleRun())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.Export(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if data.Meta == nil || data.Meta.ID != runID {
		t.Error("export lost metadata")
	}
	if len(data.Final) != 5 || len(data.Residuals) != 2 {
		t.Errorf("export lost data: %d samples, %d residuals", len(data.Final), len(data.Residuals))
	}
}

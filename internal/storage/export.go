package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta      *RunMetadata `json:"meta"`
	Initial   []float64    `json:"initial"`
	Final     []float64    `json:"final"`
	Residuals []float64    `json:"residuals"`
}

// Export writes a run with its grids and residual history as indented JSON.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	initial, final, err := s.LoadGrid(runID)
	if err != nil {
		return err
	}
	residuals, err := s.LoadResiduals(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{
		Meta:      meta,
		Initial:   initial,
		Final:     final,
		Residuals: residuals,
	})
}

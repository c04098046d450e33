package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/mdasim/internal/acquire"
)

type ExportData struct {
	Metadata RunMetadata      `json:"metadata"`
	Records  []acquire.Record `json:"records"`
}

// ExportJSON writes a run's metadata and frame records as one JSON document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	records, err := s.LoadRecords(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: *meta, Records: records})
}

// Package storage keeps acquisition run summaries on disk: one directory per
// run holding metadata.json and a frames.csv row per acquired frame.
package storage

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/san-kum/mdasim/internal/acquire"
	"github.com/san-kum/mdasim/internal/imagegen"
	"github.com/san-kum/mdasim/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var framesHeader = []string{
	"index", "t", "p", "c", "z", "channel", "exposure", "x", "y", "z_pos",
	"cells", "mean", "peak", "focus",
}

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
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Generator imagegen.Options   `json:"generator"`
	Sequence  acquire.Sequence   `json:"sequence"`
	Frames    int                `json:"frames"`
	Steps     int                `json:"steps"`
	Duration  time.Duration      `json:"duration"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run and returns its id. ID and Timestamp are assigned here.
func (s *Store) Save(meta RunMetadata, records []acquire.Record) (string, error) {
	if meta.Name == "" {
		meta.Name = "run"
	}
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), records); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeFrames(path string, records []acquire.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(framesHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(formatRecord(rec)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatRecord(rec acquire.Record) []string {
	ev, st := rec.Event, rec.Stats
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		strconv.Itoa(ev.Index),
		strconv.Itoa(ev.T),
		strconv.Itoa(ev.P),
		strconv.Itoa(ev.C),
		strconv.Itoa(ev.Z),
		ev.Channel,
		ff(ev.Exposure),
		ff(ev.X),
		ff(ev.Y),
		ff(ev.ZPos),
		strconv.Itoa(st.Cells),
		ff(st.Mean),
		strconv.Itoa(int(st.Peak)),
		ff(st.Focus),
	}
}

// List returns all runs, oldest first. Directories without readable
// metadata are skipped.
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

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), cmp.Compare(a.ID, b.ID))
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadRecords(runID string) ([]acquire.Record, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(framesHeader)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(rows) < 2 {
		return []acquire.Record{}, nil
	}

	records := make([]acquire.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("run %s: %s line %d: %w", runID, framesFile, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// rowParser accumulates the first parse error of a row.
type rowParser struct {
	row []string
	err error
}

func (p *rowParser) int(i int) int {
	v, err := strconv.Atoi(p.row[i])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", framesHeader[i], err)
	}
	return v
}

func (p *rowParser) float(i int) float64 {
	v, err := strconv.ParseFloat(p.row[i], 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", framesHeader[i], err)
	}
	return v
}

func parseRecord(row []string) (acquire.Record, error) {
	p := &rowParser{row: row}
	rec := acquire.Record{
		Event: acquire.Event{
			Index:    p.int(0),
			T:        p.int(1),
			P:        p.int(2),
			C:        p.int(3),
			Z:        p.int(4),
			Channel:  row[5],
			Exposure: p.float(6),
			X:        p.float(7),
			Y:        p.float(8),
			ZPos:     p.float(9),
		},
		Stats: metrics.FrameStats{
			Cells: p.int(10),
			Mean:  p.float(11),
			Peak:  uint16(p.int(12)),
			Focus: p.float(13),
		},
	}
	return rec, p.err
}

package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mdasim/internal/acquire"
	"github.com/san-kum/mdasim/internal/imagegen"
	"github.com/san-kum/mdasim/internal/metrics"
)

func testRecords() []acquire.Record {
	return []acquire.Record{
		{
			Event: acquire.Event{Index: 0, Channel: "BF", Exposure: 1, X: -512, ZPos: -30},
			Stats: metrics.FrameStats{Cells: 12, Mean: 103.25, Peak: 9999, Focus: 0.125},
		},
		{
			Event: acquire.Event{Index: 1, T: 1, P: 1, C: 2, Z: 3, Channel: "FITC", Exposure: 10, X: 0.5, Y: 1.0 / 3, ZPos: 2},
			Stats: metrics.FrameStats{Cells: 4, Mean: 0.1, Peak: 65535, Focus: 0.9},
		},
	}
}

func testMetadata() RunMetadata {
	return RunMetadata{
		Name:      "napari",
		Seed:      42,
		Generator: imagegen.DefaultOptions(4000),
		Sequence: acquire.Sequence{
			Channels:       []acquire.ChannelSpec{{Name: "BF", Exposure: 1}},
			TimePlan:       acquire.TimePlan{Loops: 2, DeltaT: 1},
			StagePositions: []acquire.Position{{X: 1}},
			AxisOrder:      "tpcz",
		},
		Frames:  2,
		Steps:   1,
		Metrics: map[string]float64{"cells": 8},
	}
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return st, tmpDir
}

func TestStoreSaveLoad(t *testing.T) {
	st, _ := newStore(t)

	runID, err := st.Save(testMetadata(), testRecords())
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
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Generator.N != 4000 {
		t.Errorf("expected 4000 cells, got %d", meta.Generator.N)
	}
	if meta.Metrics["cells"] != 8 {
		t.Errorf("expected cells 8, got %f", meta.Metrics["cells"])
	}
	if meta.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	records, err := st.LoadRecords(runID)
	if err != nil {
		t.Fatalf("load records failed: %v", err)
	}
	want := testRecords()
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	st, _ := newStore(t)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, _ := st.Save(testMetadata(), nil)
	second, _ := st.Save(testMetadata(), testRecords())

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected runs in save order, got %s, %s", runs[0].ID, runs[1].ID)
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

func TestStoreFileStructure(t *testing.T) {
	st, tmpDir := newStore(t)

	runID, err := st.Save(RunMetadata{}, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "frames.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	records, err := st.LoadRecords(runID)
	if err != nil {
		t.Fatalf("load records failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestStoreLoadRecords_Corrupt(t *testing.T) {
	st, tmpDir := newStore(t)
	runID, _ := st.Save(testMetadata(), testRecords())

	path := filepath.Join(tmpDir, runID, "frames.csv")
	data, _ := os.ReadFile(path)
	data = bytes.Replace(data, []byte("9999"), []byte("lots"), 1)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.LoadRecords(runID); err == nil {
		t.Error("expected an error for a malformed row")
	}
}

func TestExportJSON(t *testing.T) {
	st, _ := newStore(t)
	runID, _ := st.Save(testMetadata(), testRecords())

	var buf bytes.Buffer
	if err := st.ExportJSON(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var out ExportData
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if out.Metadata.ID != runID {
		t.Errorf("expected id %s, got %s", runID, out.Metadata.ID)
	}
	if len(out.Records) != 2 || out.Records[1].Event.Channel != "FITC" {
		t.Errorf("unexpected records: %+v", out.Records)
	}

	if err := st.ExportJSON("missing", &buf); err == nil {
		t.Error("expected an error for a missing run")
	}
}

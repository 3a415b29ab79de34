package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/experiment"
	"github.com/san-kum/rigidsim/internal/geom"
)

func runDrop(t *testing.T) (*config.Config, *experiment.Result) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Duration = 0.1
	cfg.Seed = 42
	exp, err := experiment.NewRegistry().Prepare(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	cfg, result := runDrop(t)

	runID, err := st.Save(cfg, result)
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
	if meta.Scene != "drop" {
		t.Errorf("expected scene 'drop', got '%s'", meta.Scene)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Dim != geom.Dim || meta.Steps != 6 {
		t.Errorf("unexpected dim %d or steps %d", meta.Dim, meta.Steps)
	}

	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(tr.Times) != 7 || len(tr.Rows) != 7 {
		t.Errorf("expected 7 samples, got %d times and %d rows", len(tr.Times), len(tr.Rows))
	}
	y, ok := tr.Column("b0_y")
	if !ok {
		t.Fatalf("missing b0_y column in %v", tr.Header)
	}
	if y[len(y)-1] >= 0 {
		t.Errorf("ball should have fallen, got y=%v", y[len(y)-1])
	}

	snap, err := st.LoadSnapshot(runID)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if snap.Tick != 6 || len(snap.Bodies) != 2 {
		t.Errorf("unexpected snapshot tick=%d bodies=%d", snap.Tick, len(snap.Bodies))
	}

	loaded, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if loaded.Duration != cfg.Duration || loaded.Scene != cfg.Scene {
		t.Errorf("stored config differs: %+v", loaded)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, result := runDrop(t)
	first, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first == second {
		t.Errorf("two saves share run id %s", first)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	cfg, result := runDrop(t)

	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, trajectoryFile, snapshotFile, configFile} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadSnapshotDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	cfg, result := runDrop(t)
	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatal(err)
	}

	foreign := result.Final
	foreign.Dim = geom.Dim + 1
	data, err := msgpack.Marshal(foreign)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, runID, snapshotFile), data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.LoadSnapshot(runID); !errors.Is(err, geom.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	cfg, result := runDrop(t)
	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatal(err)
	}

	data, err := st.Export(runID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var js bytes.Buffer
	if err := WriteJSON(&js, data); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if _, ok := decoded["snapshot"]; !ok {
		t.Error("json export is missing the snapshot")
	}

	var csvOut bytes.Buffer
	if err := WriteCSV(&csvOut, data, 3); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	if len(lines) != 8 {
		t.Errorf("expected header plus 7 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "time,energy,contacts,b0_x") {
		t.Errorf("unexpected header %q", lines[0])
	}
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/experiment"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/pipeline"
	"github.com/san-kum/rigidsim/internal/world"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	snapshotFile   = "snapshot.msgpack"
	configFile     = "config.yaml"
)

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
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Dim        int                `json:"dim"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Tracked    []uint64           `json:"tracked"`
	Metrics    map[string]float64 `json:"metrics"`
	Counters   pipeline.Counters  `json:"counters"`
	Events     int                `json:"events"`
}

// Trajectory is the sampled time series of a run.
type Trajectory struct {
	Header []string
	Times  []float64
	Rows   [][]float64
}

// Column returns the series named col, excluding time.
func (t *Trajectory) Column(col string) ([]float64, bool) {
	for i, h := range t.Header {
		if h != col || i == 0 {
			continue
		}
		out := make([]float64, len(t.Rows))
		for r, row := range t.Rows {
			if i-1 < len(row) {
				out[r] = row[i-1]
			}
		}
		return out, true
	}
	return nil, false
}

func (s *Store) newRunDir(scene string) (string, string, error) {
	base := fmt.Sprintf("%s_%d", scene, time.Now().Unix())
	runID := base
	for n := 1; ; n++ {
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

// Save writes the run's metadata, trajectory, final snapshot and the config
// that produced it into a fresh run directory.
func (s *Store) Save(cfg *config.Config, result *experiment.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	runID, runDir, err := s.newRunDir(result.Scene)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      result.Scene,
		Timestamp:  time.Now(),
		Dim:        geom.Dim,
		Seed:       cfg.Seed,
		Dt:         result.Dt,
		Duration:   cfg.Duration,
		Steps:      result.Steps,
		Integrator: result.Integrator,
		Tracked:    result.Tracked,
		Metrics:    result.Metrics,
		Counters:   result.Counters,
		Events:     result.Events,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result); err != nil {
		return "", err
	}
	data, err := msgpack.Marshal(result.Final)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, snapshotFile), data, 0644); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	return runID, nil
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

// TrajectoryHeader names the CSV columns for n tracked bodies.
func TrajectoryHeader(n int) []string {
	header := []string{"time", "energy", "contacts"}
	axes := []string{"x", "y", "z"}
	for b := 0; b < n; b++ {
		for i := 0; i < geom.Dim; i++ {
			header = append(header, fmt.Sprintf("b%d_%s", b, axes[i]))
		}
	}
	return header
}

func writeTrajectory(path string, result *experiment.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(TrajectoryHeader(len(result.Tracked))); err != nil {
		return err
	}

	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.Energy[i], 'f', 6, 64),
			strconv.Itoa(result.Contacts[i]),
		}
		for _, val := range result.Positions[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the config a run was produced with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadSnapshot decodes the run's final world snapshot. A snapshot written by
// a build of another dimension yields geom.ErrDimensionMismatch.
func (s *Store) LoadSnapshot(runID string) (world.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, snapshotFile))
	if err != nil {
		return world.Snapshot{}, err
	}
	return world.DecodeSnapshot(data)
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse trajectory %s: %w", runID, err)
	}
	if len(records) == 0 {
		return &Trajectory{}, nil
	}

	tr := &Trajectory{
		Header: records[0],
		Times:  make([]float64, 0, len(records)-1),
		Rows:   make([][]float64, 0, len(records)-1),
	}

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			row = append(row, val)
		}
		tr.Times = append(tr.Times, t)
		tr.Rows = append(tr.Rows, row)
	}

	return tr, nil
}

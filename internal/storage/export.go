package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/rigidsim/internal/world"
)

type ExportData struct {
	Meta     RunMetadata    `json:"meta"`
	Header   []string       `json:"header"`
	Times    []float64      `json:"times"`
	Rows     [][]float64    `json:"rows"`
	Snapshot world.Snapshot `json:"snapshot"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	tr, err := s.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}
	snap, err := s.LoadSnapshot(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{
		Meta:     *meta,
		Header:   tr.Header,
		Times:    tr.Times,
		Rows:     tr.Rows,
		Snapshot: snap,
	}, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

// WriteCSV writes the trajectory with the given float precision.
func WriteCSV(w io.Writer, data *ExportData, precision int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(data.Header); err != nil {
		return err
	}
	for i, row := range data.Rows {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, strconv.FormatFloat(data.Times[i], 'f', precision, 64))
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', precision, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/clothsim/internal/cloth"
)

type ExportData struct {
	Run       RunMetadata        `json:"run"`
	Times     []float64          `json:"times"`
	Positions [][]cloth.Vec3     `json:"positions"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Export assembles a stored run into a single document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, times, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Times: times, Positions: frames, Metrics: meta.Metrics}, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

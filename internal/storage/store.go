package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
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

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Demo       string             `json:"demo"`
	Timestamp  time.Time          `json:"timestamp"`
	Solver     string             `json:"solver"`
	Iterations int                `json:"iterations"`
	SubSteps   int                `json:"sub_steps"`
	N          int                `json:"n"`
	TimeStep   float64            `json:"h"`
	Frames     int                `json:"frames"`
	Samples    int                `json:"samples"`
	Config     *config.Config     `json:"config,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the run metadata and the sampled frames under a new run
// directory and returns its id.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Demo, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Demo:       cfg.Demo,
		Timestamp:  now,
		Solver:     cfg.Solver.Name,
		Iterations: cfg.Solver.Iterations,
		SubSteps:   cfg.Solver.SubSteps,
		N:          cfg.Cloth.N,
		TimeStep:   cfg.Cloth.TimeStep,
		Frames:     result.Frames,
		Samples:    len(result.Positions),
		Config:     cfg,
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result); err != nil {
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

// writeFrames stores one row per sample: time then x,y,z of every particle.
func writeFrames(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if len(result.Positions) > 0 {
		header := []string{"time"}
		for i := range result.Positions[0] {
			header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}
	}

	for i, frame := range result.Positions {
		row := make([]string, 0, 1+3*len(frame))
		row = append(row, strconv.FormatFloat(result.Times[i], 'f', 6, 64))
		for _, p := range frame {
			for k := 0; k < 3; k++ {
				row = append(row, strconv.FormatFloat(p[k], 'f', 6, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the stored runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

// LoadFrames reads the sampled positions and their times back.
func (s *Store) LoadFrames(runID string) ([][]cloth.Vec3, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]cloth.Vec3{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	frames := make([][]cloth.Vec3, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 || (len(record)-1)%3 != 0 {
			return nil, nil, fmt.Errorf("run %s: malformed row %d", runID, i)
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s row %d: %w", runID, i, err)
			}
			vals[j] = v
		}

		times = append(times, vals[0])
		frame := make([]cloth.Vec3, (len(vals)-1)/3)
		for k := range frame {
			frame[k] = cloth.Vec3{vals[1+3*k], vals[2+3*k], vals[3+3*k]}
		}
		frames = append(frames, frame)
	}

	return frames, times, nil
}

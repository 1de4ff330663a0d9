package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/glowfield/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.lz4"
	lightFile    = "light.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

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
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Count       int                `json:"count"`
	Seed        int64              `json:"seed"`
	Frames      int                `json:"frames"`
	Samples     int                `json:"samples"`
	SampleEvery int                `json:"sample_every"`
	Aspect      float64            `json:"aspect"`
	Path        string             `json:"path"`
	Workers     int                `json:"workers"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a recorded run and returns its id. Fields of meta that the
// result already knows (count, seed, frames, samples, metrics) are filled in
// from result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	runID, runDir, err := s.newRunDir(result.Seed)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Count = result.Count
	meta.Seed = result.Seed
	meta.Frames = result.FramesRun
	meta.Samples = len(result.Frames)
	meta.Metrics = result.Metrics

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Count, result.Frames, result.FrameIndex); err != nil {
		return "", err
	}
	if err := writeLight(filepath.Join(runDir, lightFile), result.Light); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) newRunDir(seed int64) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}

	base := fmt.Sprintf("field_%d_s%d", time.Now().Unix(), seed)
	runID := base
	for i := 1; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
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

func writeLight(path string, light []mgl64.Vec3) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "x", "y", "z"}); err != nil {
		return err
	}
	for i, p := range light {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(p.X(), 'g', -1, 64),
			strconv.FormatFloat(p.Y(), 'g', -1, 64),
			strconv.FormatFloat(p.Z(), 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadLight(runID string) ([]mgl64.Vec3, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, lightFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []mgl64.Vec3{}, nil
	}

	light := make([]mgl64.Vec3, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != 4 {
			continue
		}
		var p mgl64.Vec3
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(rec[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("light row %s: %w", rec[0], err)
			}
			p[k] = v
		}
		light = append(light, p)
	}
	return light, nil
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

type ExportData struct {
	ID         string             `json:"id"`
	Count      int                `json:"count"`
	Seed       int64              `json:"seed"`
	Frames     int                `json:"frames"`
	FrameIndex []int              `json:"frame_index"`
	Light      [][3]float64       `json:"light"`
	Positions  [][][3]float32     `json:"positions"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Position reads the translation column of an instance matrix.
func Position(m mgl32.Mat4) [3]float32 {
	return [3]float32{m[12], m[13], m[14]}
}

// ExportJSON writes a stored run, with particle positions per sampled frame.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, index, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	light, err := s.LoadLight(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		ID:         meta.ID,
		Count:      meta.Count,
		Seed:       meta.Seed,
		Frames:     meta.Frames,
		FrameIndex: index,
		Light:      make([][3]float64, len(light)),
		Positions:  make([][][3]float32, len(frames)),
		Metrics:    meta.Metrics,
	}
	for i, p := range light {
		data.Light[i] = [3]float64(p)
	}
	for f, frame := range frames {
		pos := make([][3]float32, len(frame))
		for i, m := range frame {
			pos[i] = Position(m)
		}
		data.Positions[f] = pos
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes one row per particle per sampled frame.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	frames, index, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"frame", "particle", "x", "y", "z", "scale"}); err != nil {
		return err
	}
	for f, frame := range frames {
		fs := strconv.Itoa(index[f])
		for i, m := range frame {
			p := Position(m)
			row := []string{
				fs,
				strconv.Itoa(i),
				strconv.FormatFloat(float64(p[0]), 'g', -1, 32),
				strconv.FormatFloat(float64(p[1]), 'g', -1, 32),
				strconv.FormatFloat(float64(p[2]), 'g', -1, 32),
				strconv.FormatFloat(float64(scaleOf(m)), 'g', -1, 32),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// scaleOf recovers the uniform scale magnitude from the first basis column.
func scaleOf(m mgl32.Mat4) float32 {
	return m.Col(0).Vec3().Len()
}

package sim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/glowfield/internal/field"
)

// PointerPath scripts the pointer for headless runs.
type PointerPath interface {
	At(frame int) (x, y float64)
}

type Metric interface {
	Name() string
	Observe(frame int, transforms []field.Transform)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(frame int, a *field.Animator)
}

type Config struct {
	Count   int
	Seed    int64
	Workers int
	Frames  int
	Aspect  float64
	// SampleEvery keeps one frame of matrices out of every SampleEvery.
	// Zero keeps none.
	SampleEvery int
}

func DefaultConfig() Config {
	return Config{
		Count:       500,
		Seed:        1,
		Workers:     1,
		Frames:      600,
		Aspect:      2,
		SampleEvery: 1,
	}
}

type Result struct {
	Count     int
	Seed      int64
	FramesRun int
	Light     []mgl64.Vec3
	// Frames holds the sampled instance matrices; FrameIndex maps each back
	// to the frame it was taken at.
	Frames     [][]mgl32.Mat4
	FrameIndex []int
	Metrics    map[string]float64
}

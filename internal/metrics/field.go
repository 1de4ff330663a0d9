package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/sim"
)

// Centroid returns the mean position of a set of transforms.
func Centroid(tr []field.Transform) mgl64.Vec3 {
	var c mgl64.Vec3
	if len(tr) == 0 {
		return c
	}
	for i := range tr {
		c = c.Add(tr[i].Position)
	}
	return c.Mul(1 / float64(len(tr)))
}

// CentroidDrift is the largest distance the field centroid moves away from
// where it was on the first observed frame.
type CentroidDrift struct {
	name     string
	origin   mgl64.Vec3
	maxDrift float64
	samples  int
}

func NewCentroidDrift() *CentroidDrift {
	return &CentroidDrift{name: "centroid_drift"}
}

func (c *CentroidDrift) Name() string { return c.name }

func (c *CentroidDrift) Observe(frame int, tr []field.Transform) {
	p := Centroid(tr)
	if c.samples == 0 {
		c.origin = p
	}
	c.samples++
	c.maxDrift = math.Max(c.maxDrift, p.Sub(c.origin).Len())
}

func (c *CentroidDrift) Value() float64 { return c.maxDrift }

func (c *CentroidDrift) Reset() {
	c.origin = mgl64.Vec3{}
	c.maxDrift = 0
	c.samples = 0
}

// MeanScale averages |s| over every particle and frame. Scale follows
// cos(phase), so a long run settles near 2/pi.
type MeanScale struct {
	name    string
	sum     float64
	samples int
	last    float64
}

func NewMeanScale() *MeanScale {
	return &MeanScale{name: "mean_scale"}
}

func (m *MeanScale) Name() string { return m.name }

func (m *MeanScale) Observe(frame int, tr []field.Transform) {
	if len(tr) == 0 {
		return
	}
	frameSum := 0.0
	for i := range tr {
		frameSum += math.Abs(tr[i].Scale.X())
	}
	m.last = frameSum / float64(len(tr))
	m.sum += frameSum
	m.samples += len(tr)
}

func (m *MeanScale) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

// Last is the mean |s| of the most recent frame.
func (m *MeanScale) Last() float64 { return m.last }

func (m *MeanScale) Reset() {
	m.sum = 0
	m.samples = 0
	m.last = 0
}

// Extent is the largest distance of any particle from its frame's centroid.
type Extent struct {
	name string
	max  float64
}

func NewExtent() *Extent {
	return &Extent{name: "extent"}
}

func (e *Extent) Name() string { return e.name }

func (e *Extent) Observe(frame int, tr []field.Transform) {
	c := Centroid(tr)
	for i := range tr {
		e.max = math.Max(e.max, tr[i].Position.Sub(c).Len())
	}
}

func (e *Extent) Value() float64 { return e.max }
func (e *Extent) Reset()         { e.max = 0 }

// Standard returns the metrics recorded with every run.
func Standard() []sim.Metric {
	return []sim.Metric{NewCentroidDrift(), NewMeanScale(), NewExtent()}
}

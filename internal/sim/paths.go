package sim

import (
	"fmt"
	"math"
	"sort"
)

// Still holds the pointer at one spot.
type Still struct{ X, Y float64 }

func (s Still) At(int) (float64, float64) { return s.X, s.Y }

// Circle sweeps the pointer around the viewport center once every Period
// frames.
type Circle struct {
	Radius float64
	Period int
}

func (c Circle) At(frame int) (float64, float64) {
	period := c.Period
	if period <= 0 {
		period = 600
	}
	theta := 2 * math.Pi * float64(frame%period) / float64(period)
	return c.Radius * math.Cos(theta), c.Radius * math.Sin(theta)
}

// Lissajous traces x = AX sin(FX t), y = AY sin(FY t) with t in seconds at
// 60 frames per second.
type Lissajous struct {
	AX, AY float64
	FX, FY float64
}

func (l Lissajous) At(frame int) (float64, float64) {
	t := float64(frame) / 60
	return l.AX * math.Sin(l.FX*t), l.AY * math.Sin(l.FY*t)
}

var paths = map[string]func(radius float64) PointerPath{
	"still":     func(r float64) PointerPath { return Still{} },
	"corner":    func(r float64) PointerPath { return Still{X: r, Y: r} },
	"circle":    func(r float64) PointerPath { return Circle{Radius: r, Period: 600} },
	"lissajous": func(r float64) PointerPath { return Lissajous{AX: r, AY: r * 0.6, FX: 0.9, FY: 1.7} },
}

// ParsePath builds the named path scaled to radius pixels.
func ParsePath(name string, radius float64) (PointerPath, error) {
	ctor, ok := paths[name]
	if !ok {
		return nil, fmt.Errorf("unknown pointer path: %s (available: %v)", name, PathNames())
	}
	return ctor(radius), nil
}

func PathNames() []string {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

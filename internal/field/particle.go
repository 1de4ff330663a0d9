package field

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// PointerDamping is how far each tracker moves toward the live pointer per
// frame.
const PointerDamping = 0.001

// Construction ranges, lower bound inclusive, upper bound exclusive.
const (
	PhaseMax   = 60.0
	FactorMin  = 20.0
	FactorSpan = 100.0
	SpeedMin   = 0.01
	SpeedSpan  = 0.005
	XFactorMin = -50.0
	XSpan      = 100.0
	YFactorMin = 3.0
	YSpan      = 10.0
	ZFactorMin = -30.0
	ZSpan      = 50.0
)

// Particle is one instance of the field. Everything except Phase and the
// trackers is fixed at construction.
type Particle struct {
	Phase   float64
	Speed   float64
	Factor  float64
	XFactor float64
	YFactor float64
	ZFactor float64

	TrackedX float64
	TrackedY float64
}

func newParticle(rng *rand.Rand) Particle {
	phase := rng.Float64() * PhaseMax
	factor := FactorMin + rng.Float64()*FactorSpan
	speed := SpeedMin + rng.Float64()*SpeedSpan
	x := XFactorMin + rng.Float64()*XSpan
	y := YFactorMin + rng.Float64()*YSpan
	z := ZFactorMin + rng.Float64()*ZSpan
	return Particle{
		Phase:   phase,
		Speed:   speed,
		Factor:  factor,
		XFactor: x,
		YFactor: y,
		ZFactor: z,
	}
}

// Step advances the particle by one frame toward pointer (px, py) and returns
// its new transform.
//
// The y and z rows share the (TrackedY/10)*b term.
func (p *Particle) Step(px, py float64) Transform {
	p.Phase += p.Speed / 2
	t := p.Phase

	a := math.Cos(t) + math.Sin(t)
	b := math.Sin(t) + math.Cos(2*t)
	s := math.Cos(t)

	p.TrackedX += (px - p.TrackedX) * PointerDamping
	p.TrackedY += (-py - p.TrackedY) * PointerDamping

	wave := (t / 10) * p.Factor
	pos := mgl64.Vec3{
		(p.TrackedX/100)*a + p.XFactor + math.Cos(wave) + math.Sin(t)*p.Factor/10,
		(p.TrackedY/10)*b + p.YFactor + math.Sin(wave) + math.Cos(2*t)*p.Factor/10,
		(p.TrackedY/10)*b + p.ZFactor + math.Cos(wave) + math.Sin(3*t)*p.Factor/10,
	}

	return Transform{
		Position: pos,
		Rotation: mgl64.Vec3{5 * s, 5 * s, 5 * s},
		Scale:    mgl64.Vec3{s, s, s},
	}
}

// Package scene holds the renderer-independent parts of the desktop scene:
// the orbit camera and the light rig.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RotateSpeed is how many full turns a drag across the whole viewport
// height produces.
const RotateSpeed = 1.0

// Orbit keeps the camera on a sphere around Target. Drags add angular
// velocity that decays by Damping each Update. There is no dolly: the radius
// never changes.
type Orbit struct {
	Target mgl64.Vec3
	Radius float64
	// Theta is the azimuth about +Y from +Z, Phi the polar angle from +Y.
	Theta, Phi         float64
	MinPolar, MaxPolar float64
	Damping            float64

	dTheta, dPhi float64
}

// NewOrbit places the orbit so that the camera starts at pos.
func NewOrbit(pos, target mgl64.Vec3, minPolar, maxPolar, damping float64) *Orbit {
	off := pos.Sub(target)
	r := off.Len()
	o := &Orbit{
		Target:   target,
		Radius:   r,
		MinPolar: minPolar,
		MaxPolar: maxPolar,
		Damping:  damping,
	}
	if r > 0 {
		o.Theta = math.Atan2(off.X(), off.Z())
		o.Phi = math.Acos(mgl64.Clamp(off.Y()/r, -1, 1))
	}
	o.clamp()
	return o
}

// Drag rotates by a pointer movement of dx, dy pixels in a viewport h pixels
// tall.
func (o *Orbit) Drag(dx, dy float64, h int) {
	if h <= 0 {
		return
	}
	o.dTheta -= 2 * math.Pi * dx / float64(h) * RotateSpeed
	o.dPhi -= 2 * math.Pi * dy / float64(h) * RotateSpeed
}

// Update applies pending rotation and returns the camera position.
func (o *Orbit) Update() mgl64.Vec3 {
	o.Theta += o.dTheta
	o.Phi += o.dPhi
	o.clamp()

	if o.Damping > 0 && o.Damping < 1 {
		o.dTheta *= 1 - o.Damping
		o.dPhi *= 1 - o.Damping
	} else {
		o.dTheta, o.dPhi = 0, 0
	}
	return o.Position()
}

// clamp keeps Phi inside the polar limits the same way three.js does:
// max(min, min(max, phi)). When the limits cross, MinPolar wins.
func (o *Orbit) clamp() {
	o.Phi = math.Max(o.MinPolar, math.Min(o.MaxPolar, o.Phi))
	const eps = 1e-6
	o.Phi = mgl64.Clamp(o.Phi, eps, math.Pi-eps)
}

func (o *Orbit) Position() mgl64.Vec3 {
	sinPhi := math.Sin(o.Phi)
	return o.Target.Add(mgl64.Vec3{
		o.Radius * sinPhi * math.Sin(o.Theta),
		o.Radius * math.Cos(o.Phi),
		o.Radius * sinPhi * math.Cos(o.Theta),
	})
}

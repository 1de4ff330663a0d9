package field

import "github.com/go-gl/mathgl/mgl64"

// Light is the point light dragged around by the pointer.
type Light struct {
	Position  mgl64.Vec3
	Color     mgl64.Vec3
	Intensity float64
	Distance  float64
}

// NewLight returns the light-blue point light of the scene.
func NewLight() *Light {
	return &Light{
		Color:     mgl64.Vec3{0.678, 0.847, 0.902},
		Intensity: 10,
		Distance:  10,
	}
}

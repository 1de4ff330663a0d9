package field

import "github.com/go-gl/mathgl/mgl64"

// Transform is a position, XYZ Euler rotation in radians, and scale.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3
}

// Matrix composes scale, then rotation (X, then Y, then Z applied as
// Rx*Ry*Rz), then translation.
func (t Transform) Matrix() mgl64.Mat4 {
	r := mgl64.HomogRotate3DX(t.Rotation.X()).
		Mul4(mgl64.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl64.HomogRotate3DZ(t.Rotation.Z()))
	return mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(r).
		Mul4(mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera looking at Target. RotX and RotY orbit the
// scene about the origin before projection.
type Camera struct {
	Position, Target, Up mgl64.Vec3
	FOV                  float64 // vertical, degrees
	Near, Far            float64
	RotX, RotY           float64
	Zoom                 float64
}

func NewCamera() *Camera {
	return &Camera{
		Position: mgl64.Vec3{3, 0, 20},
		Up:       mgl64.Vec3{0, 1, 0},
		FOV:      75,
		Near:     0.1,
		Far:      1000,
		Zoom:     1,
	}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Distance from the camera to its target.
func (c *Camera) Distance() float64 { return c.Position.Sub(c.Target).Len() }

// Matrix returns the combined projection, view and orbit transform for a
// w by h viewport.
func (c *Camera) Matrix(w, h int) mgl64.Mat4 {
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	proj := mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
	view := mgl64.LookAtV(c.Position, c.Target, c.Up)
	orbit := mgl64.HomogRotate3DX(c.RotX).
		Mul4(mgl64.HomogRotate3DY(c.RotY)).
		Mul4(mgl64.Scale3D(c.Zoom, c.Zoom, c.Zoom))
	return proj.Mul4(view).Mul4(orbit)
}

// Project maps a world point to viewport coordinates. It returns the view
// depth and whether the point lands on screen.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (int, int, float64, bool) {
	return project(c.Matrix(w, h), p, w, h)
}

func project(m mgl64.Mat4, p mgl64.Vec3, w, h int) (int, int, float64, bool) {
	clip := m.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, 0, false
	}
	sx := int(math.Floor((ndc.X() + 1) / 2 * float64(w)))
	sy := int(math.Floor((1 - ndc.Y()) / 2 * float64(h)))
	return sx, sy, clip.W(), sx >= 0 && sx < w && sy >= 0 && sy < h
}

// DrawField plots one dot per instance matrix. Particles near full scale get
// a larger blob.
func DrawField(c *Canvas, cam *Camera, matrices []mgl32.Mat4) int {
	if c == nil || cam == nil {
		return 0
	}
	w, h := c.DotSize()
	m := cam.Matrix(w, h)
	drawn := 0
	for i := range matrices {
		mat := matrices[i]
		pos := mgl64.Vec3{float64(mat[12]), float64(mat[13]), float64(mat[14])}
		x, y, _, ok := project(m, pos, w, h)
		if !ok {
			continue
		}
		if mat.Col(0).Vec3().Len() > 0.66 {
			c.Blob(x, y, 1)
		} else {
			c.Set(x, y)
		}
		drawn++
	}
	return drawn
}

// DrawLight marks the pointer light with a cross.
func DrawLight(c *Canvas, cam *Camera, pos mgl64.Vec3) {
	w, h := c.DotSize()
	if x, y, _, ok := cam.Project(pos, w, h); ok {
		c.Cross(x, y, 2)
	}
}

// DrawGround draws the front edge of the ground plane at height y.
func DrawGround(c *Canvas, cam *Camera, y float64) {
	w, h := c.DotSize()
	m := cam.Matrix(w, h)
	const half = 40.0
	for x := -half; x < half; x += 0.5 {
		if sx, sy, _, ok := project(m, mgl64.Vec3{x, y, 0}, w, h); ok && int(x*2)%2 == 0 {
			c.Set(sx, sy)
		}
	}
}

package field_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/glowfield/internal/field"
)

// composeXYZ builds a column-major model matrix the way three.js does for an
// Object3D with Euler order XYZ: rotation from the Euler angles, columns
// scaled, translation in the last column.
func composeXYZ(pos, rot, scale mgl64.Vec3) [16]float64 {
	a, b := math.Cos(rot[0]), math.Sin(rot[0])
	c, d := math.Cos(rot[1]), math.Sin(rot[1])
	e, f := math.Cos(rot[2]), math.Sin(rot[2])
	ae, af, be, bf := a*e, a*f, b*e, b*f

	var m [16]float64
	m[0], m[4], m[8] = c*e, -c*f, d
	m[1], m[5], m[9] = af+be*d, ae-bf*d, -b*c
	m[2], m[6], m[10] = bf-ae*d, be+af*d, a*c

	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*4+row] *= scale[col]
		}
	}
	m[12], m[13], m[14], m[15] = pos[0], pos[1], pos[2], 1
	return m
}

var _ = Describe("Transform", func() {
	It("composes translation, XYZ rotation and scale in column-major order", func() {
		tr := field.Transform{
			Position: mgl64.Vec3{1, -2, 3},
			Rotation: mgl64.Vec3{0.7, -1.3, 2.1},
			Scale:    mgl64.Vec3{0.5, 1.5, 2},
		}
		want := composeXYZ(tr.Position, tr.Rotation, tr.Scale)
		got := tr.Matrix()
		for k := range want {
			Expect(got[k]).To(BeNumerically("~", want[k], 1e-12), "element %d", k)
		}
	})

	It("differs from the ZYX composition for the same angles", func() {
		tr := field.Transform{
			Rotation: mgl64.Vec3{0.7, -1.3, 2.1},
			Scale:    mgl64.Vec3{1, 1, 1},
		}
		zyx := mgl64.HomogRotate3DZ(2.1).
			Mul4(mgl64.HomogRotate3DY(-1.3)).
			Mul4(mgl64.HomogRotate3DX(0.7))
		Expect(tr.Matrix().ApproxEqualThreshold(zyx, 1e-6)).To(BeFalse())
	})
})

package field

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// InstanceBuffer holds one column-major model matrix per particle, the layout
// GPU instancing consumes directly.
type InstanceBuffer struct {
	Matrices []mgl32.Mat4

	// NeedsUpdate is raised by every Tick and cleared by the consumer once
	// the matrices have been uploaded.
	NeedsUpdate bool
}

func NewInstanceBuffer(n int) *InstanceBuffer {
	return &InstanceBuffer{Matrices: make([]mgl32.Mat4, n)}
}

func (b *InstanceBuffer) Len() int { return len(b.Matrices) }

// SetMatrixAt narrows m to float32 and stores it in slot i.
func (b *InstanceBuffer) SetMatrixAt(i int, m mgl64.Mat4) {
	dst := &b.Matrices[i]
	for k := range m {
		dst[k] = float32(m[k])
	}
}

func (b *InstanceBuffer) MatrixAt(i int) mgl32.Mat4 { return b.Matrices[i] }

// Flush reports whether the buffer changed since the last Flush and clears
// the flag.
func (b *InstanceBuffer) Flush() bool {
	dirty := b.NeedsUpdate
	b.NeedsUpdate = false
	return dirty
}

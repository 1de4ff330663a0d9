package field

import "sync/atomic"

// Pointer is the live cursor position in pixels from the viewport center.
// The zero value is a pointer resting at (0, 0).
type Pointer struct {
	v atomic.Pointer[[2]float64]
}

func NewPointer() *Pointer {
	return &Pointer{}
}

// Set publishes a new position. Safe to call from an input goroutine.
func (p *Pointer) Set(x, y float64) {
	p.v.Store(&[2]float64{x, y})
}

// Load returns both components from one snapshot.
func (p *Pointer) Load() (x, y float64) {
	if v := p.v.Load(); v != nil {
		return v[0], v[1]
	}
	return 0, 0
}

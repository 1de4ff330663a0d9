// Package spring animates the hover-scale of the scene model.
package spring

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Tension and friction of the default spring. Angular frequency is
// sqrt(tension) and the damping ratio friction / (2*sqrt(tension)).
const (
	DefaultTension  = 170.0
	DefaultFriction = 26.0
)

// Hover eases a scalar between a rest and an active value depending on
// whether the pointer is over the target.
type Hover struct {
	spring  harmonica.Spring
	rest    float64
	active  float64
	hovered bool
	pos     float64
	vel     float64
}

// NewHover returns a spring resting at rest, stepped fps times per second.
func NewHover(fps int, rest, active float64) *Hover {
	return NewHoverWith(fps, rest, active, DefaultTension, DefaultFriction)
}

func NewHoverWith(fps int, rest, active, tension, friction float64) *Hover {
	if fps <= 0 {
		fps = 60
	}
	freq := math.Sqrt(tension)
	damping := friction / (2 * freq)
	return &Hover{
		spring: harmonica.NewSpring(harmonica.FPS(fps), freq, damping),
		rest:   rest,
		active: active,
		pos:    rest,
	}
}

func (h *Hover) Set(hovered bool) { h.hovered = hovered }
func (h *Hover) Hovered() bool    { return h.hovered }

// Target is the value the spring is currently pulled toward.
func (h *Hover) Target() float64 {
	if h.hovered {
		return h.active
	}
	return h.rest
}

// Update steps the spring one frame and returns the new value.
func (h *Hover) Update() float64 {
	h.pos, h.vel = h.spring.Update(h.pos, h.vel, h.Target())
	return h.pos
}

func (h *Hover) Value() float64 { return h.pos }

// Settled reports whether the value is within eps of its target and nearly
// still.
func (h *Hover) Settled(eps float64) bool {
	return math.Abs(h.pos-h.Target()) < eps && math.Abs(h.vel) < eps
}

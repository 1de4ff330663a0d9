package field

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// minChunk keeps goroutine overhead below the cost of the work it splits.
const minChunk = 256

type options struct {
	rng     *rand.Rand
	workers int
}

// Option configures an Animator at construction.
type Option func(*options)

// WithSeed draws the particle constants from a source seeded with seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand draws the particle constants from r.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithWorkers spreads each Tick over n goroutines. Particles are independent,
// so the output does not depend on n.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Animator moves a fixed set of particles once per frame and writes their
// transforms into an instance buffer.
type Animator struct {
	particles  []Particle
	transforms []Transform

	pointer *Pointer
	light   *Light
	buffer  *InstanceBuffer

	workers int
	ticks   uint64
}

// New builds an animator over count particles reading pointer. A nil light or
// buffer is allocated here; a non-nil buffer must hold exactly count slots.
func New(count int, pointer *Pointer, light *Light, buffer *InstanceBuffer, opts ...Option) (*Animator, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: particle count must be positive, got %d", ErrInvalidArgument, count)
	}
	if pointer == nil {
		return nil, fmt.Errorf("%w: nil pointer", ErrInvalidArgument)
	}
	if buffer == nil {
		buffer = NewInstanceBuffer(count)
	} else if buffer.Len() != count {
		return nil, fmt.Errorf("%w: buffer holds %d instances, want %d", ErrInvalidArgument, buffer.Len(), count)
	}
	if light == nil {
		light = NewLight()
	}

	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	particles := make([]Particle, count)
	for i := range particles {
		particles[i] = newParticle(o.rng)
	}

	return &Animator{
		particles:  particles,
		transforms: make([]Transform, count),
		pointer:    pointer,
		light:      light,
		buffer:     buffer,
		workers:    o.workers,
	}, nil
}

// Tick advances the field one frame. aspect converts pointer pixels to scene
// units (screen width / viewport width).
func (a *Animator) Tick(aspect float64) {
	x, y := a.pointer.Load()

	a.light.Position = mgl64.Vec3{x / aspect, -y / aspect, 0}

	ParallelFor(len(a.particles), a.workers, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			tr := a.particles[i].Step(x, y)
			a.transforms[i] = tr
			a.buffer.SetMatrixAt(i, tr.Matrix())
		}
	})

	a.buffer.NeedsUpdate = true
	a.ticks++
}

func (a *Animator) Len() int { return len(a.particles) }

// Ticks is the number of frames advanced so far.
func (a *Animator) Ticks() uint64 { return a.ticks }

func (a *Animator) Pointer() *Pointer       { return a.pointer }
func (a *Animator) Light() *Light           { return a.light }
func (a *Animator) Buffer() *InstanceBuffer { return a.buffer }
func (a *Animator) SetWorkers(n int)        { a.workers = n }

// Particles returns a copy of the particle set.
func (a *Animator) Particles() []Particle {
	out := make([]Particle, len(a.particles))
	copy(out, a.particles)
	return out
}

// Transforms returns the transforms written by the last Tick. The slice is
// reused by the next Tick and must not be modified.
func (a *Animator) Transforms() []Transform { return a.transforms }

package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/glowfield/internal/field"
)

// Runner drives an animator headlessly, standing in for the render loop.
type Runner struct {
	path      PointerPath
	metrics   []Metric
	observers []Observer
}

func New(path PointerPath) *Runner {
	if path == nil {
		path = Still{}
	}
	return &Runner{
		path:      path,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run builds an animator from cfg and advances it cfg.Frames times.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", cfg.Count)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	ptr := field.NewPointer()
	anim, err := field.New(cfg.Count, ptr, nil, nil, field.WithSeed(cfg.Seed), field.WithWorkers(cfg.Workers))
	if err != nil {
		return nil, err
	}
	return r.RunAnimator(ctx, anim, cfg)
}

// RunAnimator advances an existing animator, moving its pointer along the
// runner's path. cfg.Count is ignored in favour of anim.Len(), and cfg.Seed
// is only recorded.
func (r *Runner) RunAnimator(ctx context.Context, anim *field.Animator, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Count:   anim.Len(),
		Seed:    cfg.Seed,
		Light:   make([]mgl64.Vec3, 0, cfg.Frames),
		Metrics: make(map[string]float64),
	}
	if cfg.SampleEvery > 0 {
		n := (cfg.Frames + cfg.SampleEvery - 1) / cfg.SampleEvery
		result.Frames = make([][]mgl32.Mat4, 0, n)
		result.FrameIndex = make([]int, 0, n)
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	ptr := anim.Pointer()
	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			slog.Debug("run canceled", "frame", i)
			return result, ctx.Err()
		default:
		}

		ptr.Set(r.path.At(i))
		anim.Tick(cfg.Aspect)

		tr := anim.Transforms()
		for _, m := range r.metrics {
			m.Observe(i, tr)
		}
		for _, obs := range r.observers {
			obs.OnFrame(i, anim)
		}

		result.Light = append(result.Light, anim.Light().Position)
		if cfg.SampleEvery > 0 && i%cfg.SampleEvery == 0 {
			buf := anim.Buffer()
			frame := make([]mgl32.Mat4, buf.Len())
			copy(frame, buf.Matrices)
			result.Frames = append(result.Frames, frame)
			result.FrameIndex = append(result.FrameIndex, i)
		}
		anim.Buffer().Flush()
		result.FramesRun++
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	if cfg.Aspect <= 0 {
		return fmt.Errorf("aspect must be positive, got %f", cfg.Aspect)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d", cfg.SampleEvery)
	}
	return nil
}

package field_test

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/glowfield/internal/field"
)

func mustAnimator(count int, ptr *field.Pointer, opts ...field.Option) *field.Animator {
	a, err := field.New(count, ptr, nil, nil, opts...)
	Expect(err).NotTo(HaveOccurred())
	return a
}

var _ = Describe("Animator", func() {
	Describe("New", func() {
		It("creates exactly count particles inside the construction ranges", func() {
			a := mustAnimator(1000, field.NewPointer(), field.WithSeed(7))
			ps := a.Particles()
			Expect(ps).To(HaveLen(1000))
			Expect(a.Len()).To(Equal(1000))
			Expect(a.Buffer().Len()).To(Equal(1000))

			for _, p := range ps {
				Expect(p.Speed).To(And(BeNumerically(">=", 0.01), BeNumerically("<", 0.015)))
				Expect(p.Factor).To(And(BeNumerically(">=", 20.0), BeNumerically("<", 120.0)))
				Expect(p.XFactor).To(And(BeNumerically(">=", -50.0), BeNumerically("<", 50.0)))
				Expect(p.YFactor).To(And(BeNumerically(">=", 3.0), BeNumerically("<", 13.0)))
				Expect(p.ZFactor).To(And(BeNumerically(">=", -30.0), BeNumerically("<", 20.0)))
				Expect(p.Phase).To(And(BeNumerically(">=", 0.0), BeNumerically("<", 60.0)))
				Expect(p.TrackedX).To(BeZero())
				Expect(p.TrackedY).To(BeZero())
			}
		})

		DescribeTable("rejects non-positive counts",
			func(count int) {
				a, err := field.New(count, field.NewPointer(), nil, nil)
				Expect(err).To(MatchError(field.ErrInvalidArgument))
				Expect(a).To(BeNil())
			},
			Entry("zero", 0),
			Entry("negative", -3),
		)

		It("rejects a nil pointer", func() {
			_, err := field.New(10, nil, nil, nil)
			Expect(err).To(MatchError(field.ErrInvalidArgument))
		})

		It("rejects a buffer of the wrong length", func() {
			_, err := field.New(10, field.NewPointer(), nil, field.NewInstanceBuffer(9))
			Expect(err).To(MatchError(field.ErrInvalidArgument))
		})

		It("writes into caller-owned light and buffer", func() {
			light := field.NewLight()
			buf := field.NewInstanceBuffer(4)
			ptr := field.NewPointer()
			ptr.Set(40, 20)
			a, err := field.New(4, ptr, light, buf, field.WithSeed(1))
			Expect(err).NotTo(HaveOccurred())

			a.Tick(4)
			Expect(light.Position).To(Equal(mgl64.Vec3{10, -5, 0}))
			Expect(buf.NeedsUpdate).To(BeTrue())
			Expect(a.Light()).To(BeIdenticalTo(light))
			Expect(a.Buffer()).To(BeIdenticalTo(buf))
		})

		It("leaves constants untouched until the first tick", func() {
			a := mustAnimator(50, field.NewPointer(), field.WithSeed(99))
			b := mustAnimator(50, field.NewPointer(), field.WithSeed(99))
			Expect(a.Particles()).To(Equal(b.Particles()))
			Expect(a.Ticks()).To(BeZero())
			Expect(a.Buffer().NeedsUpdate).To(BeFalse())
		})
	})

	Describe("Tick", func() {
		var (
			ptr *field.Pointer
			a   *field.Animator
		)

		BeforeEach(func() {
			ptr = field.NewPointer()
			a = mustAnimator(64, ptr, field.WithSeed(2024))
		})

		It("centres the light for a resting pointer", func() {
			ptr.Set(0, 0)
			a.Tick(1.0)
			Expect(a.Light().Position).To(Equal(mgl64.Vec3{0, 0, 0}))
		})

		It("converts pointer pixels to scene units", func() {
			ptr.Set(200, 100)
			a.Tick(2.0)
			Expect(a.Light().Position).To(Equal(mgl64.Vec3{100, -50, 0}))
		})

		It("keeps rotation at five times the uniform scale", func() {
			for frame := 0; frame < 20; frame++ {
				ptr.Set(float64(frame*13), float64(-frame*7))
				a.Tick(1.5)
				for _, tr := range a.Transforms() {
					s := tr.Scale.X()
					Expect(tr.Scale).To(Equal(mgl64.Vec3{s, s, s}))
					Expect(tr.Rotation).To(Equal(mgl64.Vec3{5 * s, 5 * s, 5 * s}))
				}
			}
		})

		It("strictly increases every phase", func() {
			prev := a.Particles()
			for frame := 0; frame < 10; frame++ {
				a.Tick(1)
				next := a.Particles()
				for i := range next {
					Expect(next[i].Phase).To(BeNumerically(">", prev[i].Phase))
				}
				prev = next
			}
		})

		It("raises the dirty flag on every tick", func() {
			for frame := 0; frame < 3; frame++ {
				a.Tick(1)
				Expect(a.Buffer().NeedsUpdate).To(BeTrue())
				Expect(a.Buffer().Flush()).To(BeTrue())
				Expect(a.Buffer().NeedsUpdate).To(BeFalse())
			}
			Expect(a.Ticks()).To(Equal(uint64(3)))
		})

		It("follows the documented motion formulas", func() {
			before := a.Particles()
			ptr.Set(200, 100)
			a.Tick(2)

			for i, p := range before {
				t := p.Phase + p.Speed/2
				av := math.Cos(t) + math.Sin(t)
				bv := math.Sin(t) + math.Cos(2*t)
				s := math.Cos(t)
				mx := p.TrackedX + (200-p.TrackedX)*0.001
				my := p.TrackedY + (-100-p.TrackedY)*0.001

				want := mgl64.Vec3{
					(mx/100)*av + p.XFactor + math.Cos((t/10)*p.Factor) + math.Sin(t)*p.Factor/10,
					(my/10)*bv + p.YFactor + math.Sin((t/10)*p.Factor) + math.Cos(2*t)*p.Factor/10,
					(my/10)*bv + p.ZFactor + math.Cos((t/10)*p.Factor) + math.Sin(3*t)*p.Factor/10,
				}

				got := a.Transforms()[i]
				for k := 0; k < 3; k++ {
					Expect(got.Position[k]).To(BeNumerically("~", want[k], 1e-9))
				}
				Expect(got.Scale.X()).To(BeNumerically("~", s, 1e-12))

				after := a.Particles()[i]
				Expect(after.TrackedX).To(BeNumerically("~", mx, 1e-12))
				Expect(after.TrackedY).To(BeNumerically("~", my, 1e-12))
			}
		})

		It("writes the composed matrix of each transform into its slot", func() {
			ptr.Set(-30, 45)
			a.Tick(1.25)
			for i, tr := range a.Transforms() {
				want := tr.Matrix()
				got := a.Buffer().MatrixAt(i)
				for k := range want {
					Expect(got[k]).To(Equal(float32(want[k])))
				}
				Expect(float64(got[12])).To(BeNumerically("~", tr.Position.X(), 1e-4))
				Expect(float64(got[13])).To(BeNumerically("~", tr.Position.Y(), 1e-4))
				Expect(float64(got[14])).To(BeNumerically("~", tr.Position.Z(), 1e-4))
			}
		})

		It("is reproducible for the same seed and pointer sequence", func() {
			pa, pb := field.NewPointer(), field.NewPointer()
			x := mustAnimator(128, pa, field.WithSeed(5))
			y := mustAnimator(128, pb, field.WithSeed(5))

			for frame := 0; frame < 50; frame++ {
				px, py := math.Sin(float64(frame))*300, math.Cos(float64(frame))*200
				pa.Set(px, py)
				pb.Set(px, py)
				x.Tick(1.7)
				y.Tick(1.7)
				Expect(x.Buffer().Matrices).To(Equal(y.Buffer().Matrices))
				Expect(x.Light().Position).To(Equal(y.Light().Position))
			}
			Expect(x.Particles()).To(Equal(y.Particles()))
		})

		It("produces identical output with several workers", func() {
			pa, pb := field.NewPointer(), field.NewPointer()
			seq := mustAnimator(2000, pa, field.WithSeed(11))
			par := mustAnimator(2000, pb, field.WithSeed(11), field.WithWorkers(4))

			for frame := 0; frame < 5; frame++ {
				pa.Set(120, -80)
				pb.Set(120, -80)
				seq.Tick(3)
				par.Tick(3)
			}
			Expect(par.Buffer().Matrices).To(Equal(seq.Buffer().Matrices))
			Expect(par.Particles()).To(Equal(seq.Particles()))
		})
	})
})

var _ = Describe("Pointer", func() {
	It("rests at the origin when never set", func() {
		var p field.Pointer
		x, y := p.Load()
		Expect(x).To(BeZero())
		Expect(y).To(BeZero())
	})

	It("never tears between components", func() {
		p := field.NewPointer()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10000; i++ {
				p.Set(float64(i), float64(i))
			}
		}()
		for i := 0; i < 10000; i++ {
			x, y := p.Load()
			Expect(x).To(Equal(y))
		}
		wg.Wait()
	})
})

var _ = Describe("PixelsPerUnit", func() {
	It("matches the visible plane width of a perspective camera", func() {
		Expect(field.PixelsPerUnit(800, 600, 90, 1)).To(BeNumerically("~", 300, 1e-9))
	})

	DescribeTable("falls back to 1 on degenerate input",
		func(w, h int, fov, dist float64) {
			Expect(field.PixelsPerUnit(w, h, fov, dist)).To(Equal(1.0))
		},
		Entry("zero width", 0, 600, 75.0, 20.0),
		Entry("zero height", 800, 0, 75.0, 20.0),
		Entry("zero fov", 800, 600, 0.0, 20.0),
		Entry("zero distance", 800, 600, 75.0, 0.0),
	)
})

var _ = Describe("ParallelFor", func() {
	DescribeTable("visits every index exactly once",
		func(n, workers int) {
			seen := make([]int, n)
			var mu sync.Mutex
			field.ParallelFor(n, workers, 16, func(start, end int) {
				mu.Lock()
				defer mu.Unlock()
				for i := start; i < end; i++ {
					seen[i]++
				}
			})
			for _, c := range seen {
				Expect(c).To(Equal(1))
			}
		},
		Entry("sequential", 100, 1),
		Entry("below chunk", 10, 8),
		Entry("uneven split", 1001, 7),
		Entry("more workers than chunks", 40, 16),
	)
})

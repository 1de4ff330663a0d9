package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/glowfield/internal/config"
)

func TestOrbitStartsAtPosition(t *testing.T) {
	pos := mgl64.Vec3{3, 0, 20}
	o := NewOrbit(pos, mgl64.Vec3{}, 0, math.Pi, 0.5)
	if got := o.Position(); !got.ApproxEqualThreshold(pos, 1e-9) {
		t.Errorf("Position = %v, want %v", got, pos)
	}
}

func TestOrbitKeepsRadius(t *testing.T) {
	o := NewOrbit(mgl64.Vec3{3, 0, 20}, mgl64.Vec3{}, 0.1, math.Pi-0.1, 0.5)
	r := o.Radius
	o.Drag(120, -40, 720)
	for i := 0; i < 30; i++ {
		p := o.Update()
		if math.Abs(p.Len()-r) > 1e-9 {
			t.Fatalf("frame %d: radius %f, want %f", i, p.Len(), r)
		}
	}
}

func TestOrbitPolarLock(t *testing.T) {
	o := NewOrbit(mgl64.Vec3{3, 0, 20}, mgl64.Vec3{}, math.Pi/2, math.Pi/2, 0.5)
	o.Drag(50, 300, 720)
	p := o.Update()
	if math.Abs(p.Y()) > 1e-9 {
		t.Errorf("locked polar angle let the camera leave the horizon: y = %f", p.Y())
	}
	if math.Abs(o.Phi-math.Pi/2) > 1e-12 {
		t.Errorf("Phi = %f, want pi/2", o.Phi)
	}
}

func TestOrbitDamping(t *testing.T) {
	o := NewOrbit(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{}, math.Pi/2, math.Pi/2, 0.5)
	o.Drag(-360, 0, 720)

	start := o.Theta
	o.Update()
	first := o.Theta - start
	o.Update()
	second := o.Theta - start - first

	if math.Abs(first-math.Pi) > 1e-12 {
		t.Errorf("first step %f, want pi", first)
	}
	if math.Abs(second-first/2) > 1e-12 {
		t.Errorf("second step %f, want half of %f", second, first)
	}
}

func TestOrbitNoDamping(t *testing.T) {
	o := NewOrbit(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{}, 0, math.Pi, 0)
	o.Drag(10, 0, 100)
	o.Update()
	theta := o.Theta
	o.Update()
	if o.Theta != theta {
		t.Error("undamped orbit should stop after one update")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
	}{
		{"#000000", 0, 0, 0},
		{"#ffffff", 255, 255, 255},
		{"#ffa500", 255, 165, 0},
		{"#00f", 0, 0, 255},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			r, g, b := Bytes(c)
			if absDiff(r, tt.r) > 1 || absDiff(g, tt.g) > 1 || absDiff(b, tt.b) > 1 {
				t.Errorf("round trip = (%d, %d, %d), want (%d, %d, %d)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}

	if _, err := ParseColor("orange"); err == nil {
		t.Error("expected an error for a named colour")
	}
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

func TestRigDefaults(t *testing.T) {
	lights, err := Rig(config.DefaultConfig().Lights)
	if err != nil {
		t.Fatal(err)
	}
	if len(lights) != 4 {
		t.Fatalf("expected 4 lights, got %d", len(lights))
	}
	if lights[0].Kind != Spot || lights[1].Kind != Point {
		t.Error("light kinds not preserved")
	}
	if lights[0].Color != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("blue spot has colour %v", lights[0].Color)
	}

	pos, col, intensity := Flatten(lights)
	if len(pos) != 12 || len(col) != 12 || len(intensity) != 4 {
		t.Fatal("unexpected uniform sizes")
	}
	if pos[1] != 100 || pos[2] != 100 || intensity[3] != 3 {
		t.Errorf("flattened rig mismatch: pos %v intensity %v", pos[:3], intensity)
	}
}

func TestRigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LightConfig
	}{
		{"kind", config.LightConfig{Kind: "area", Color: "#fff"}},
		{"colour", config.LightConfig{Kind: "point", Color: "blue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Rig([]config.LightConfig{tt.cfg}); !errors.Is(err, ErrBadLight) {
				t.Errorf("expected ErrBadLight, got %v", err)
			}
		})
	}
}

func TestRigTruncates(t *testing.T) {
	cfgs := make([]config.LightConfig, MaxLights+2)
	for i := range cfgs {
		cfgs[i] = config.LightConfig{Color: "#ffffff", Intensity: 1}
	}
	lights, err := Rig(cfgs)
	if err != nil {
		t.Fatal(err)
	}
	if len(lights) != MaxLights {
		t.Errorf("expected %d lights, got %d", MaxLights, len(lights))
	}
}

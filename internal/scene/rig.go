package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/glowfield/internal/config"
)

// MaxLights is the number of rig lights the lighting shader accepts.
const MaxLights = 4

var ErrBadLight = errors.New("scene: bad light")

type LightKind int

const (
	Point LightKind = iota
	Spot
)

// Light is a static rig light. Spot lights aim at the origin.
type Light struct {
	Kind      LightKind
	Color     mgl64.Vec3
	Intensity float64
	Position  mgl64.Vec3
}

// ParseColor reads a "#rgb" or "#rrggbb" string into linear 0..1 RGB.
func ParseColor(s string) (mgl64.Vec3, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	r, g, b := c.LinearRgb()
	return mgl64.Vec3{r, g, b}, nil
}

// Rig converts configured lights. Lights past MaxLights are dropped.
func Rig(cfgs []config.LightConfig) ([]Light, error) {
	n := min(len(cfgs), MaxLights)
	lights := make([]Light, 0, n)
	for i, lc := range cfgs[:n] {
		var kind LightKind
		switch lc.Kind {
		case "point", "":
			kind = Point
		case "spot":
			kind = Spot
		default:
			return nil, fmt.Errorf("%w %d: unknown kind %q", ErrBadLight, i, lc.Kind)
		}
		col, err := ParseColor(lc.Color)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrBadLight, i, err)
		}
		lights = append(lights, Light{
			Kind:      kind,
			Color:     col,
			Intensity: lc.Intensity,
			Position:  mgl64.Vec3(lc.Position),
		})
	}
	return lights, nil
}

// Flatten packs the rig into the uniform arrays the lighting shader reads.
func Flatten(lights []Light) (pos, col, intensity []float32) {
	pos = make([]float32, 3*MaxLights)
	col = make([]float32, 3*MaxLights)
	intensity = make([]float32, MaxLights)
	for i, l := range lights {
		if i == MaxLights {
			break
		}
		for k := 0; k < 3; k++ {
			pos[3*i+k] = float32(l.Position[k])
			col[3*i+k] = float32(l.Color[k])
		}
		intensity[i] = float32(l.Intensity)
	}
	return pos, col, intensity
}

// Bytes converts a 0..1 colour to 8-bit sRGB channels.
func Bytes(c mgl64.Vec3) (uint8, uint8, uint8) {
	r, g, b := colorful.LinearRgb(c[0], c[1], c[2]).Clamped().RGB255()
	return r, g, b
}

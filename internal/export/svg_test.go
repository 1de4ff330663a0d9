package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/glowfield/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 4, viz.ThemeMinimal) != "" {
		t.Error("nil canvas should produce no output")
	}

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(3, 5)
	svg := CanvasToSVG(c, 4, viz.ThemeMinimal)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("output is not a complete SVG document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(svg, `width="32" height="32"`) {
		t.Error("unexpected document size")
	}
	if !strings.Contains(svg, string(viz.ThemeMinimal.Field)) {
		t.Error("theme colour missing")
	}
}

func TestFrameToSVG(t *testing.T) {
	if FrameToSVG(nil, 100, 100, viz.ThemeOcean) != "" {
		t.Error("empty frame should produce no output")
	}

	frame := []mgl32.Mat4{
		mgl32.Translate3D(-1, -1, 0),
		mgl32.Translate3D(1, 1, 0).Mul4(mgl32.Scale3D(0.5, 0.5, 0.5)),
		mgl32.Translate3D(0, 0, 3),
	}
	svg := FrameToSVG(frame, 200, 100, viz.ThemeOcean)
	if n := strings.Count(svg, "<circle"); n != 3 {
		t.Errorf("expected 3 circles, got %d", n)
	}
	if !strings.Contains(svg, `r="4.0"`) || !strings.Contains(svg, `r="2.5"`) {
		t.Error("circle radius should follow instance scale")
	}
}

func TestLightPathToSVG(t *testing.T) {
	if LightPathToSVG([]mgl64.Vec3{{1, 1, 0}}, 100, 100, viz.ThemeOcean) != "" {
		t.Error("a single point is not a path")
	}

	pts := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	svg := LightPathToSVG(pts, 100, 100, viz.ThemeOcean)
	if n := strings.Count(svg, " L"); n != 2 {
		t.Errorf("expected 2 line segments, got %d", n)
	}
	if !strings.Contains(svg, "d=\"M8.3,91.7") {
		t.Error("path should start at the padded lower-left corner")
	}
}

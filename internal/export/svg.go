package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/glowfield/internal/viz"
)

func header(sb *strings.Builder, w, h float64, bg string) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, bg)
}

// CanvasToSVG draws every lit braille dot as a circle, scale pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	dw, dh := canvas.DotSize()
	var sb strings.Builder
	header(&sb, float64(dw)*scale, float64(dh)*scale, string(theme.Background))
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", theme.Field)

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.Dot(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct{ minX, minY, spanX, spanY float64 }

// fit pads the box around xs, ys by a tenth of its size on each side.
func fit(xs, ys []float64) bounds {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range xs {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	return bounds{
		minX:  minX - spanX*0.1,
		minY:  minY - spanY*0.1,
		spanX: spanX * 1.2,
		spanY: spanY * 1.2,
	}
}

func (b bounds) at(x, y float64, w, h int) (float64, float64) {
	return (x - b.minX) / b.spanX * float64(w),
		float64(h) - (y-b.minY)/b.spanY*float64(h)
}

// FrameToSVG plots the particles of one frame in the XY plane, each circle
// sized by the instance's scale.
func FrameToSVG(frame []mgl32.Mat4, w, h int, theme viz.Theme) string {
	if len(frame) == 0 {
		return ""
	}

	xs := make([]float64, len(frame))
	ys := make([]float64, len(frame))
	for i, m := range frame {
		xs[i], ys[i] = float64(m[12]), float64(m[13])
	}
	b := fit(xs, ys)

	var sb strings.Builder
	header(&sb, float64(w), float64(h), string(theme.Background))
	fmt.Fprintf(&sb, "<g fill=\"%s\" fill-opacity=\"0.8\">\n", theme.Field)
	for i, m := range frame {
		x, y := b.at(xs[i], ys[i], w, h)
		r := 1 + 3*float64(m.Col(0).Vec3().Len())
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", x, y, r)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// LightPathToSVG traces the pointer light across a run.
func LightPathToSVG(points []mgl64.Vec3, w, h int, theme viz.Theme) string {
	if len(points) < 2 {
		return ""
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X(), p.Y()
	}
	b := fit(xs, ys)

	var sb strings.Builder
	header(&sb, float64(w), float64(h), string(theme.Background))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", theme.Light)
	for i := range points {
		x, y := b.at(xs[i], ys[i], w, h)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

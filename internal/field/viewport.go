package field

import "math"

// PixelsPerUnit is the ratio of screen width in pixels to the width of the
// visible z=0 plane for a perspective camera with vertical field of view
// fovY (degrees) at the given distance. Degenerate input yields 1.
func PixelsPerUnit(screenW, screenH int, fovY, distance float64) float64 {
	if screenW <= 0 || screenH <= 0 || fovY <= 0 || distance <= 0 {
		return 1
	}
	visibleH := 2 * math.Tan(fovY*math.Pi/360) * distance
	visibleW := visibleH * float64(screenW) / float64(screenH)
	return float64(screenW) / visibleW
}

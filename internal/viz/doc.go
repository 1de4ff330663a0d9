// Package viz renders a particle field in the terminal.
//
// The view is a Bubble Tea program:
//
//   - [Model]: the live view, stepping a field.Animator on every tick
//   - [Canvas]: braille dot grid the field is projected onto
//   - [Camera]: perspective projection matching the desktop scene's camera
//
// Mouse motion over the canvas moves the field's pointer, so the light and
// the particles follow the cursor the same way they do in the desktop scene.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reseed the field
//	T     - Cycle color themes
//	+/-   - Zoom
//	X/Y   - Rotate (shift reverses)
//	E     - Export an SVG snapshot
//	Q     - Quit
package viz

// Package field animates a pointer-reactive field of instanced particles.
//
// The package owns the per-frame numerical core of the scene:
//
//   - [Particle]: randomized motion constants plus phase and pointer trackers
//   - [Animator]: advances every particle once per frame
//   - [Pointer]: shared pointer cell written by an input handler
//   - [Light]: point light that follows the pointer
//   - [InstanceBuffer]: one 4x4 transform per particle plus a dirty flag
//
// # Example
//
//	ptr := field.NewPointer()
//	anim, err := field.New(500, ptr, nil, nil, field.WithSeed(42))
//	if err != nil {
//		return err
//	}
//	for !done {
//		ptr.Set(mouseX-w/2, mouseY-h/2)
//		anim.Tick(field.PixelsPerUnit(w, h, 75, 20))
//		upload(anim.Buffer())
//	}
//
// # Thread Safety
//
// Tick must be called from a single goroutine, once per frame. The only value
// shared with other goroutines is the [Pointer], which is read with a single
// atomic load per Tick so x and y never tear. Light and InstanceBuffer have a
// single writer (the Animator); readers must not overlap a Tick.
package field

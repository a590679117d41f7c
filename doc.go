// Package pixfx implements a deterministic image transformation pipeline
// for photo-editing applications.
//
// # Overview
//
// pixfx composes user-facing edits (Operations) out of atomic pixel
// transforms (Primitives) and renders them through a pluggable Renderer.
// The pipeline is deterministic: the same operations with the same
// parameters always produce byte-identical output, and operations compose
// in a fixed priority order regardless of the order they were enabled.
//
// # Quick Start
//
//	import "github.com/pixfx/pixfx"
//
//	src, _ := pixfx.LoadPixmap("photo.jpg")
//
//	sess, _ := pixfx.NewSession(src)
//	defer sess.Close()
//
//	op, _ := sess.Activate(pixfx.OpFilters)
//	op.(*pixfx.FilterOperation).SetFilter("orchid")
//
//	out, _ := sess.RenderSync(context.Background())
//	_ = out.SavePNG("out.png")
//
// # Architecture
//
// The library is organized into:
//   - Primitives: tone curves, desaturation, brightness, contrast, blur,
//     overlay blending; pure functions over pixel data
//   - Operations: named, toggleable edit steps built from primitives
//   - OperationsStack: fixed-order composition of active operations
//   - Session: change batching, async rendering, notifications
//   - Renderers: software (this package) and GPU (backend/wgpu)
//
// # Ordering
//
// Operations always composite geometry first (crop-rotation, flip), then
// color (filters, contrast, brightness, saturation), then post-processing
// (radial-blur, tilt-shift, frames, stickers, text). See OperationOrder.
//
// # Determinism
//
// Rendering the same filter identifier twice over identical input produces
// byte-identical output. Intermediate stages are clamped to 8-bit between
// passes.
package pixfx

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)

package pixfx

import "errors"

// Renderer executes a single primitive against a pixel buffer. The
// software renderer in this package supports every primitive kind; GPU
// renderers may support a subset and return ErrUnsupportedPrimitive for
// the rest, in which case the caller falls back to another renderer.
type Renderer interface {
	// RenderPrimitive applies the primitive to dst in place.
	// Returns an error on an unsupported kind or malformed parameters.
	RenderPrimitive(dst *Pixmap, p Primitive) error
}

// ErrUnsupportedPrimitive indicates the renderer cannot execute this
// primitive kind. The caller should transparently fall back to another
// renderer (typically the CPU).
var ErrUnsupportedPrimitive = errors.New("pixfx: unsupported primitive kind")

// ErrResourcePressure indicates a transient backend resource shortage
// (for example GPU buffer allocation failure). The session retries a
// render pass once with backoff before surfacing this error.
var ErrResourcePressure = errors.New("pixfx: transient backend resource pressure")

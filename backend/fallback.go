package backend

import (
	"errors"

	"github.com/pixfx/pixfx"
)

// FallbackRenderer routes primitives to a primary renderer and retries on
// a fallback when the primary reports ErrUnsupportedPrimitive. It is how
// GPU backends cover the primitives they have no kernels for: wrap the
// GPU renderer with the software renderer as fallback.
type FallbackRenderer struct {
	primary  pixfx.Renderer
	fallback pixfx.Renderer
}

// NewFallbackRenderer returns a renderer that prefers primary.
func NewFallbackRenderer(primary, fallback pixfx.Renderer) *FallbackRenderer {
	return &FallbackRenderer{primary: primary, fallback: fallback}
}

// RenderPrimitive implements pixfx.Renderer.
func (r *FallbackRenderer) RenderPrimitive(dst *pixfx.Pixmap, p pixfx.Primitive) error {
	err := r.primary.RenderPrimitive(dst, p)
	if err != nil && errors.Is(err, pixfx.ErrUnsupportedPrimitive) {
		return r.fallback.RenderPrimitive(dst, p)
	}
	return err
}

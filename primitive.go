package pixfx

import (
	"errors"
	"fmt"
)

// PrimitiveKind identifies an atomic pixel transform.
type PrimitiveKind uint8

const (
	// PrimitiveToneCurve remaps channels through a spline lookup table.
	PrimitiveToneCurve PrimitiveKind = iota + 1

	// PrimitiveDesaturation blends pixels toward their grayscale value.
	PrimitiveDesaturation

	// PrimitiveSaturation blends pixels away from their grayscale value.
	PrimitiveSaturation

	// PrimitiveBrightness shifts all channels by a constant amount.
	PrimitiveBrightness

	// PrimitiveContrast scales channels around the mid level.
	PrimitiveContrast

	// PrimitiveBlur applies a separable gaussian blur.
	PrimitiveBlur

	// PrimitiveOverlay blends another pixmap over the target.
	PrimitiveOverlay
)

// String returns the kind's identifier.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveToneCurve:
		return "tone-curve"
	case PrimitiveDesaturation:
		return "desaturation"
	case PrimitiveSaturation:
		return "saturation"
	case PrimitiveBrightness:
		return "brightness"
	case PrimitiveContrast:
		return "contrast"
	case PrimitiveBlur:
		return "blur"
	case PrimitiveOverlay:
		return "overlay"
	default:
		return fmt.Sprintf("primitive(%d)", uint8(k))
	}
}

// Primitive is one atomic, parameterized pixel transform. Primitives are
// immutable once constructed and stateless during execution: applying the
// same primitive to the same pixels always produces the same output.
//
// Skip/no-op decisions belong to the Operation layer; a PrimitivesStack
// never skips a primitive based on its parameters.
type Primitive interface {
	Kind() PrimitiveKind

	// Validate reports malformed parameters. Renderers call it before
	// touching pixel data.
	Validate() error
}

// ToneCurvePrimitive remaps each pixel's channels through a tone curve.
type ToneCurvePrimitive struct {
	Curve *ToneCurve
}

// Kind implements Primitive.
func (p ToneCurvePrimitive) Kind() PrimitiveKind { return PrimitiveToneCurve }

// Validate implements Primitive.
func (p ToneCurvePrimitive) Validate() error {
	if p.Curve == nil {
		return errors.New("pixfx: tone curve primitive with nil curve")
	}
	return nil
}

// Desaturation blends every pixel toward its luma gray:
// out = lerp(px, gray(px), Intensity). Intensity 0 is the identity
// transform, 1 produces the full grayscale value.
type Desaturation struct {
	Intensity float64
}

// Kind implements Primitive.
func (p Desaturation) Kind() PrimitiveKind { return PrimitiveDesaturation }

// Validate implements Primitive.
func (p Desaturation) Validate() error {
	if p.Intensity < 0 || p.Intensity > 1 {
		return fmt.Errorf("pixfx: desaturation intensity %v outside [0,1]", p.Intensity)
	}
	return nil
}

// Grayscale returns a primitive converting pixels fully to luma gray.
func Grayscale() Desaturation {
	return Desaturation{Intensity: 1}
}

// Saturation blends every pixel away from its luma gray:
// out = lerp(gray(px), px, Amount). Amount 1 is the identity transform,
// 0 is full grayscale, values above 1 oversaturate.
type Saturation struct {
	Amount float64
}

// Kind implements Primitive.
func (p Saturation) Kind() PrimitiveKind { return PrimitiveSaturation }

// Validate implements Primitive.
func (p Saturation) Validate() error {
	if p.Amount < 0 {
		return fmt.Errorf("pixfx: saturation amount %v must be >= 0", p.Amount)
	}
	return nil
}

// Brightness shifts every channel by Amount*255. Amount is in [-1, 1];
// 0 is the identity transform.
type Brightness struct {
	Amount float64
}

// Kind implements Primitive.
func (p Brightness) Kind() PrimitiveKind { return PrimitiveBrightness }

// Validate implements Primitive.
func (p Brightness) Validate() error {
	if p.Amount < -1 || p.Amount > 1 {
		return fmt.Errorf("pixfx: brightness amount %v outside [-1,1]", p.Amount)
	}
	return nil
}

// Contrast scales every channel around the mid level:
// out = (px-127)*Amount + 127. Amount 1 is the identity transform.
type Contrast struct {
	Amount float64
}

// Kind implements Primitive.
func (p Contrast) Kind() PrimitiveKind { return PrimitiveContrast }

// Validate implements Primitive.
func (p Contrast) Validate() error {
	if p.Amount < 0 {
		return fmt.Errorf("pixfx: contrast amount %v must be >= 0", p.Amount)
	}
	return nil
}

// Blur applies a separable gaussian blur with the given sigma.
type Blur struct {
	Sigma float64
}

// Kind implements Primitive.
func (p Blur) Kind() PrimitiveKind { return PrimitiveBlur }

// Validate implements Primitive.
func (p Blur) Validate() error {
	if p.Sigma <= 0 {
		return fmt.Errorf("pixfx: blur sigma %v must be > 0", p.Sigma)
	}
	return nil
}

// BlendMode selects the per-channel blend function used by Overlay.
type BlendMode uint8

const (
	// BlendNormal composites the source over the destination.
	BlendNormal BlendMode = iota

	// BlendMultiply multiplies source and destination channels.
	BlendMultiply

	// BlendScreen inverts, multiplies and inverts again.
	BlendScreen

	// BlendOverlay combines multiply and screen based on the destination.
	BlendOverlay

	// BlendAdd sums source and destination channels.
	BlendAdd

	// BlendDifference takes the absolute channel difference.
	BlendDifference
)

// String returns the mode's identifier.
func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	case BlendOverlay:
		return "overlay"
	case BlendAdd:
		return "add"
	case BlendDifference:
		return "difference"
	default:
		return fmt.Sprintf("blend(%d)", uint8(m))
	}
}

// Overlay blends Source over the target pixmap at offset (X, Y) with the
// given blend mode and opacity.
type Overlay struct {
	Source  *Pixmap
	Mode    BlendMode
	Opacity float64
	X, Y    int
}

// Kind implements Primitive.
func (p Overlay) Kind() PrimitiveKind { return PrimitiveOverlay }

// Validate implements Primitive.
func (p Overlay) Validate() error {
	if p.Source == nil {
		return errors.New("pixfx: overlay primitive with nil source")
	}
	if p.Opacity < 0 || p.Opacity > 1 {
		return fmt.Errorf("pixfx: overlay opacity %v outside [0,1]", p.Opacity)
	}
	if p.Mode > BlendDifference {
		return fmt.Errorf("pixfx: unknown blend mode %v", p.Mode)
	}
	return nil
}

// PrimitivesStack is an ordered sequence of primitives. Insertion order is
// execution order: each primitive consumes the previous one's output.
type PrimitivesStack []Primitive

// Push appends a primitive to the stack.
func (s *PrimitivesStack) Push(p Primitive) {
	*s = append(*s, p)
}

// Render executes every primitive in insertion order against dst. No
// primitive is skipped here; identity detection is the operation layer's
// concern, keeping primitives pure and composable.
func (s PrimitivesStack) Render(r Renderer, dst *Pixmap) error {
	for i, p := range s {
		if err := r.RenderPrimitive(dst, p); err != nil {
			return fmt.Errorf("pixfx: primitive %d (%s): %w", i, p.Kind(), err)
		}
	}
	return nil
}

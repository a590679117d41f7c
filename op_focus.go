package pixfx

import (
	"fmt"
	"math"
)

// defaultFocusSigma is the blur strength used by the focus operations
// until SetSigma overrides it.
const defaultFocusSigma = 8.0

// RadialBlurOperation keeps a circular region sharp and blurs the rest of
// the image, with a smooth transition band between the two. Radius and
// gradient are normalized against the smaller image dimension.
type RadialBlurOperation struct {
	operationBase
	touched  bool
	cx, cy   float64
	radius   float64
	gradient float64
	sigma    float64
}

// NewRadialBlurOperation returns a radial blur centered on the image with
// default radius and strength. The operation is an identity until a
// parameter is set.
func NewRadialBlurOperation() *RadialBlurOperation {
	return &RadialBlurOperation{
		operationBase: operationBase{id: OpRadialBlur},
		cx:            0.5,
		cy:            0.5,
		radius:        0.25,
		gradient:      0.25,
		sigma:         defaultFocusSigma,
	}
}

// SetCenter sets the normalized center of the sharp region.
func (o *RadialBlurOperation) SetCenter(cx, cy float64) error {
	if cx < 0 || cx > 1 || cy < 0 || cy > 1 {
		return fmt.Errorf("pixfx: radial blur center (%v,%v) outside unit square", cx, cy)
	}
	o.cx, o.cy = cx, cy
	o.markTouched()
	return nil
}

// SetRadius sets the normalized radius of the fully sharp region.
func (o *RadialBlurOperation) SetRadius(radius float64) error {
	if radius < 0 || radius > 1.5 {
		return fmt.Errorf("pixfx: radial blur radius %v outside [0,1.5]", radius)
	}
	o.radius = radius
	o.markTouched()
	return nil
}

// SetGradient sets the normalized width of the sharp-to-blurred
// transition band.
func (o *RadialBlurOperation) SetGradient(gradient float64) error {
	if gradient < 0 || gradient > 1 {
		return fmt.Errorf("pixfx: radial blur gradient %v outside [0,1]", gradient)
	}
	o.gradient = gradient
	o.markTouched()
	return nil
}

// SetSigma sets the gaussian blur strength in pixels.
func (o *RadialBlurOperation) SetSigma(sigma float64) error {
	p := Blur{Sigma: sigma}
	if err := p.Validate(); err != nil {
		return err
	}
	o.sigma = sigma
	o.markTouched()
	return nil
}

func (o *RadialBlurOperation) markTouched() {
	o.touched = true
	o.touch()
}

// IsIdentity reports true until the first parameter update.
func (o *RadialBlurOperation) IsIdentity() bool { return !o.touched }

func (o *RadialBlurOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

func (o *RadialBlurOperation) Apply(r Renderer, src *Pixmap) (*Pixmap, error) {
	blurred := src.Clone()
	if err := r.RenderPrimitive(blurred, Blur{Sigma: o.sigma}); err != nil {
		return nil, err
	}
	w, h := src.Width(), src.Height()
	scale := float64(minInt(w, h))
	cx := o.cx * float64(w)
	cy := o.cy * float64(h)
	r0 := o.radius * scale
	band := o.gradient * scale
	return maskLerp(src, blurred, func(x, y int) float64 {
		dx := float64(x) + 0.5 - cx
		dy := float64(y) + 0.5 - cy
		return rampMask(math.Sqrt(dx*dx+dy*dy), r0, band)
	}), nil
}

// TiltShiftOperation keeps a straight band sharp and blurs the rest,
// imitating a shallow depth of field. The band is the set of pixels
// within HalfWidth of the axis line running through Start and End.
type TiltShiftOperation struct {
	operationBase
	touched        bool
	sx, sy, ex, ey float64
	halfWidth      float64
	gradient       float64
	sigma          float64
}

// NewTiltShiftOperation returns a horizontal focus band across the middle
// of the image. The operation is an identity until a parameter is set.
func NewTiltShiftOperation() *TiltShiftOperation {
	return &TiltShiftOperation{
		operationBase: operationBase{id: OpTiltShift},
		sx:            0,
		sy:            0.5,
		ex:            1,
		ey:            0.5,
		halfWidth:     0.15,
		gradient:      0.2,
		sigma:         defaultFocusSigma,
	}
}

// SetAxis sets the normalized endpoints of the focus axis. The endpoints
// must not coincide.
func (o *TiltShiftOperation) SetAxis(sx, sy, ex, ey float64) error {
	if sx == ex && sy == ey {
		return fmt.Errorf("pixfx: tilt shift axis endpoints coincide at (%v,%v)", sx, sy)
	}
	o.sx, o.sy, o.ex, o.ey = sx, sy, ex, ey
	o.markTouched()
	return nil
}

// SetHalfWidth sets the normalized half-width of the fully sharp band.
func (o *TiltShiftOperation) SetHalfWidth(halfWidth float64) error {
	if halfWidth < 0 || halfWidth > 1 {
		return fmt.Errorf("pixfx: tilt shift half width %v outside [0,1]", halfWidth)
	}
	o.halfWidth = halfWidth
	o.markTouched()
	return nil
}

// SetGradient sets the normalized width of the sharp-to-blurred
// transition band.
func (o *TiltShiftOperation) SetGradient(gradient float64) error {
	if gradient < 0 || gradient > 1 {
		return fmt.Errorf("pixfx: tilt shift gradient %v outside [0,1]", gradient)
	}
	o.gradient = gradient
	o.markTouched()
	return nil
}

// SetSigma sets the gaussian blur strength in pixels.
func (o *TiltShiftOperation) SetSigma(sigma float64) error {
	p := Blur{Sigma: sigma}
	if err := p.Validate(); err != nil {
		return err
	}
	o.sigma = sigma
	o.markTouched()
	return nil
}

func (o *TiltShiftOperation) markTouched() {
	o.touched = true
	o.touch()
}

// IsIdentity reports true until the first parameter update.
func (o *TiltShiftOperation) IsIdentity() bool { return !o.touched }

func (o *TiltShiftOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

func (o *TiltShiftOperation) Apply(r Renderer, src *Pixmap) (*Pixmap, error) {
	blurred := src.Clone()
	if err := r.RenderPrimitive(blurred, Blur{Sigma: o.sigma}); err != nil {
		return nil, err
	}
	w, h := src.Width(), src.Height()
	scale := float64(minInt(w, h))
	ax := o.sx * float64(w)
	ay := o.sy * float64(h)
	bx := o.ex * float64(w)
	by := o.ey * float64(h)
	// Unit normal of the axis line; distance to the line is a dot product.
	nx, ny := ay-by, bx-ax
	n := math.Hypot(nx, ny)
	nx /= n
	ny /= n
	hw := o.halfWidth * scale
	band := o.gradient * scale
	return maskLerp(src, blurred, func(x, y int) float64 {
		d := math.Abs((float64(x)+0.5-ax)*nx + (float64(y)+0.5-ay)*ny)
		return rampMask(d, hw, band)
	}), nil
}

// rampMask maps a distance to a blend weight: 0 inside r0, 1 beyond
// r0+band, with a smoothstep ramp in between.
func rampMask(d, r0, band float64) float64 {
	if d <= r0 {
		return 0
	}
	if band <= 0 || d >= r0+band {
		return 1
	}
	t := (d - r0) / band
	return t * t * (3 - 2*t)
}

// maskLerp blends sharp and blurred per pixel by the mask weight
// (0 sharp, 1 blurred) and returns the result as a new pixmap.
func maskLerp(sharp, blurred *Pixmap, mask func(x, y int) float64) *Pixmap {
	w, h := sharp.Width(), sharp.Height()
	dst := NewPixmap(w, h)
	sd, bd, dd := sharp.Data(), blurred.Data(), dst.Data()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := mask(x, y)
			i := dst.PixOffset(x, y)
			if m <= 0 {
				copy(dd[i:i+4], sd[i:i+4])
				continue
			}
			if m >= 1 {
				copy(dd[i:i+4], bd[i:i+4])
				continue
			}
			for c := 0; c < 4; c++ {
				dd[i+c] = uint8(clamp255(lerp(float64(sd[i+c]), float64(bd[i+c]), m) + 0.5))
			}
		}
	}
	return dst
}

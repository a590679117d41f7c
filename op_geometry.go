package pixfx

import "fmt"

// CropRotationOperation rotates the image by a multiple of 90 degrees and
// crops it to a normalized sub-rectangle. Rotation is applied before the
// crop, so the crop rectangle addresses the rotated image.
type CropRotationOperation struct {
	operationBase
	x0, y0, x1, y1 float64
	degrees        int
}

// NewCropRotationOperation returns a crop/rotation operation covering the
// full image with no rotation.
func NewCropRotationOperation() *CropRotationOperation {
	return &CropRotationOperation{
		operationBase: operationBase{id: OpCropRotation},
		x1:            1,
		y1:            1,
	}
}

// SetCrop sets the normalized crop rectangle. Coordinates must satisfy
// 0 <= x0 < x1 <= 1 and 0 <= y0 < y1 <= 1.
func (o *CropRotationOperation) SetCrop(x0, y0, x1, y1 float64) error {
	if x0 < 0 || y0 < 0 || x1 > 1 || y1 > 1 || x0 >= x1 || y0 >= y1 {
		return fmt.Errorf("pixfx: crop rect (%v,%v)-(%v,%v) outside unit square", x0, y0, x1, y1)
	}
	o.x0, o.y0, o.x1, o.y1 = x0, y0, x1, y1
	o.touch()
	return nil
}

// SetRotation sets the rotation angle in degrees. Only multiples of 90
// are accepted; the angle is normalized to [0, 360).
func (o *CropRotationOperation) SetRotation(degrees int) error {
	if degrees%90 != 0 {
		return fmt.Errorf("pixfx: rotation %d not a multiple of 90 degrees", degrees)
	}
	deg := ((degrees % 360) + 360) % 360
	if deg == o.degrees {
		return nil
	}
	o.degrees = deg
	o.touch()
	return nil
}

// Crop returns the normalized crop rectangle.
func (o *CropRotationOperation) Crop() (x0, y0, x1, y1 float64) {
	return o.x0, o.y0, o.x1, o.y1
}

// Rotation returns the rotation angle in degrees, normalized to [0, 360).
func (o *CropRotationOperation) Rotation() int { return o.degrees }

func (o *CropRotationOperation) IsIdentity() bool {
	return o.degrees == 0 && o.x0 == 0 && o.y0 == 0 && o.x1 == 1 && o.y1 == 1
}

func (o *CropRotationOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

func (o *CropRotationOperation) Apply(_ Renderer, src *Pixmap) (*Pixmap, error) {
	rotated := rotateQuarter(src, o.degrees)
	if o.x0 == 0 && o.y0 == 0 && o.x1 == 1 && o.y1 == 1 {
		if rotated == src {
			return src.Clone(), nil
		}
		return rotated, nil
	}

	w, h := rotated.Width(), rotated.Height()
	px0 := int(o.x0*float64(w) + 0.5)
	py0 := int(o.y0*float64(h) + 0.5)
	px1 := int(o.x1*float64(w) + 0.5)
	py1 := int(o.y1*float64(h) + 0.5)
	if px1 <= px0 {
		px1 = px0 + 1
	}
	if py1 <= py0 {
		py1 = py0 + 1
	}
	return rotated.SubPixmap(px0, py0, px1-px0, py1-py0), nil
}

// rotateQuarter rotates src clockwise by 0, 90, 180 or 270 degrees. For 0
// degrees it returns src unchanged.
func rotateQuarter(src *Pixmap, degrees int) *Pixmap {
	w, h := src.Width(), src.Height()
	switch degrees {
	case 90:
		dst := NewPixmap(h, w)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				copyPixel(dst, h-1-y, x, src, x, y)
			}
		}
		return dst
	case 180:
		dst := NewPixmap(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				copyPixel(dst, w-1-x, h-1-y, src, x, y)
			}
		}
		return dst
	case 270:
		dst := NewPixmap(h, w)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				copyPixel(dst, y, w-1-x, src, x, y)
			}
		}
		return dst
	default:
		return src
	}
}

func copyPixel(dst *Pixmap, dx, dy int, src *Pixmap, sx, sy int) {
	di := dst.PixOffset(dx, dy)
	si := src.PixOffset(sx, sy)
	copy(dst.Data()[di:di+4], src.Data()[si:si+4])
}

// FlipOperation mirrors the image horizontally and/or vertically.
type FlipOperation struct {
	operationBase
	horizontal bool
	vertical   bool
}

// NewFlipOperation returns a flip operation with both axes disabled.
func NewFlipOperation() *FlipOperation {
	return &FlipOperation{operationBase: operationBase{id: OpFlip}}
}

// SetHorizontal toggles mirroring across the vertical axis.
func (o *FlipOperation) SetHorizontal(on bool) {
	if on == o.horizontal {
		return
	}
	o.horizontal = on
	o.touch()
}

// SetVertical toggles mirroring across the horizontal axis.
func (o *FlipOperation) SetVertical(on bool) {
	if on == o.vertical {
		return
	}
	o.vertical = on
	o.touch()
}

// Horizontal reports whether horizontal mirroring is enabled.
func (o *FlipOperation) Horizontal() bool { return o.horizontal }

// Vertical reports whether vertical mirroring is enabled.
func (o *FlipOperation) Vertical() bool { return o.vertical }

func (o *FlipOperation) IsIdentity() bool { return !o.horizontal && !o.vertical }

func (o *FlipOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

func (o *FlipOperation) Apply(_ Renderer, src *Pixmap) (*Pixmap, error) {
	w, h := src.Width(), src.Height()
	dst := NewPixmap(w, h)
	for y := 0; y < h; y++ {
		sy := y
		if o.vertical {
			sy = h - 1 - y
		}
		for x := 0; x < w; x++ {
			sx := x
			if o.horizontal {
				sx = w - 1 - x
			}
			copyPixel(dst, x, y, src, sx, sy)
		}
	}
	return dst, nil
}

package pixfx

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// FramesOperation draws a solid border around the image. Thickness is
// normalized against the smaller image dimension.
type FramesOperation struct {
	operationBase
	touched   bool
	color     RGBA
	thickness float64
}

// NewFramesOperation returns a black frame with default thickness. The
// operation is an identity until a parameter is set.
func NewFramesOperation() *FramesOperation {
	return &FramesOperation{
		operationBase: operationBase{id: OpFrames},
		color:         Black,
		thickness:     0.05,
	}
}

// SetColor sets the frame color.
func (o *FramesOperation) SetColor(c RGBA) {
	o.color = c
	o.touched = true
	o.touch()
}

// SetThickness sets the normalized frame thickness in [0, 0.5].
func (o *FramesOperation) SetThickness(thickness float64) error {
	if thickness < 0 || thickness > 0.5 {
		return fmt.Errorf("pixfx: frame thickness %v outside [0,0.5]", thickness)
	}
	o.thickness = thickness
	o.touched = true
	o.touch()
	return nil
}

// IsIdentity reports true until the first parameter update, or whenever
// the thickness is zero.
func (o *FramesOperation) IsIdentity() bool { return !o.touched || o.thickness == 0 }

func (o *FramesOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

func (o *FramesOperation) Apply(r Renderer, src *Pixmap) (*Pixmap, error) {
	w, h := src.Width(), src.Height()
	t := int(o.thickness*float64(minInt(w, h)) + 0.5)
	if t < 1 {
		t = 1
	}
	border := NewPixmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < t || y < t || x >= w-t || y >= h-t {
				border.SetPixel(x, y, o.color)
			}
		}
	}
	dst := src.Clone()
	err := r.RenderPrimitive(dst, Overlay{
		Source:  border,
		Mode:    BlendNormal,
		Opacity: 1,
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// stickerPlacement is one sticker instance with its normalized target
// geometry.
type stickerPlacement struct {
	source  *Pixmap
	x, y    float64
	width   float64
	height  float64
	opacity float64
}

// StickersOperation composites scaled sticker images over the photo.
// Positions and sizes are normalized against the image dimensions.
type StickersOperation struct {
	operationBase
	stickers []stickerPlacement
}

// NewStickersOperation returns a sticker operation without stickers.
func NewStickersOperation() *StickersOperation {
	return &StickersOperation{operationBase: operationBase{id: OpStickers}}
}

// AddSticker appends a sticker. x and y are the normalized top-left
// corner, width the normalized target width. A height of 0 preserves the
// sticker's aspect ratio.
func (o *StickersOperation) AddSticker(source *Pixmap, x, y, width, height, opacity float64) error {
	if source == nil || source.Width() == 0 || source.Height() == 0 {
		return fmt.Errorf("pixfx: sticker source is empty")
	}
	if width <= 0 || width > 1 || height < 0 || height > 1 {
		return fmt.Errorf("pixfx: sticker size (%v,%v) outside (0,1]", width, height)
	}
	if opacity < 0 || opacity > 1 {
		return fmt.Errorf("pixfx: sticker opacity %v outside [0,1]", opacity)
	}
	o.stickers = append(o.stickers, stickerPlacement{
		source:  source,
		x:       x,
		y:       y,
		width:   width,
		height:  height,
		opacity: opacity,
	})
	o.touch()
	return nil
}

// Clear removes all stickers.
func (o *StickersOperation) Clear() {
	if len(o.stickers) == 0 {
		return
	}
	o.stickers = nil
	o.touch()
}

// Count returns the number of placed stickers.
func (o *StickersOperation) Count() int { return len(o.stickers) }

func (o *StickersOperation) IsIdentity() bool { return len(o.stickers) == 0 }

func (o *StickersOperation) freeze() Operation {
	c := *o
	c.notify = nil
	c.stickers = append([]stickerPlacement(nil), o.stickers...)
	return &c
}

func (o *StickersOperation) Apply(r Renderer, src *Pixmap) (*Pixmap, error) {
	dst := src.Clone()
	w, h := dst.Width(), dst.Height()
	for _, st := range o.stickers {
		tw := int(st.width*float64(w) + 0.5)
		if tw < 1 {
			tw = 1
		}
		var th int
		if st.height > 0 {
			th = int(st.height*float64(h) + 0.5)
		} else {
			th = int(float64(tw)*float64(st.source.Height())/float64(st.source.Width()) + 0.5)
		}
		if th < 1 {
			th = 1
		}
		scaled := scalePixmap(st.source, tw, th)
		err := r.RenderPrimitive(dst, Overlay{
			Source:  scaled,
			Mode:    BlendNormal,
			Opacity: st.opacity,
			X:       int(st.x*float64(w) + 0.5),
			Y:       int(st.y*float64(h) + 0.5),
		})
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// scalePixmap resamples src to the given size with Catmull-Rom
// interpolation.
func scalePixmap(src *Pixmap, width, height int) *Pixmap {
	if src.Width() == width && src.Height() == height {
		return src
	}
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), src.ToImage(), src.Bounds(), xdraw.Over, nil)
	return FromImage(out)
}

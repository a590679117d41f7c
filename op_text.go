package pixfx

import (
	"bytes"
	"fmt"
	"image"

	"github.com/go-text/typesetting/di"
	tsfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextAlignment positions the rendered string relative to its anchor.
type TextAlignment int

const (
	AlignLeft TextAlignment = iota
	AlignCenter
	AlignRight
)

// TextOperation draws a single line of text over the image. Without a
// font, a built-in bitmap face is used; SetFont installs a TTF/OTF font
// whose size scales with the image height.
type TextOperation struct {
	operationBase
	text     string
	x, y     float64
	size     float64
	color    RGBA
	align    TextAlignment
	fontData []byte
	shaped   *tsfont.Font
}

// NewTextOperation returns a text operation with an empty string, which
// renders nothing.
func NewTextOperation() *TextOperation {
	return &TextOperation{
		operationBase: operationBase{id: OpText},
		x:             0.5,
		y:             0.9,
		size:          0.05,
		color:         White,
		align:         AlignCenter,
	}
}

// SetText sets the string to draw. An empty string makes the operation an
// identity.
func (o *TextOperation) SetText(text string) {
	if text == o.text {
		return
	}
	o.text = text
	o.touch()
}

// SetPosition sets the normalized baseline anchor of the text.
func (o *TextOperation) SetPosition(x, y float64) error {
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return fmt.Errorf("pixfx: text position (%v,%v) outside unit square", x, y)
	}
	o.x, o.y = x, y
	o.touch()
	return nil
}

// SetSize sets the font size as a fraction of the image height.
func (o *TextOperation) SetSize(size float64) error {
	if size <= 0 || size > 1 {
		return fmt.Errorf("pixfx: text size %v outside (0,1]", size)
	}
	o.size = size
	o.touch()
	return nil
}

// SetColor sets the text color.
func (o *TextOperation) SetColor(c RGBA) {
	o.color = c
	o.touch()
}

// SetAlignment sets how the text hangs off its anchor point.
func (o *TextOperation) SetAlignment(a TextAlignment) {
	if a == o.align {
		return
	}
	o.align = a
	o.touch()
}

// SetFont installs a TTF or OTF font from raw bytes. The data is parsed
// eagerly so malformed fonts are rejected here rather than at render
// time.
func (o *TextOperation) SetFont(data []byte) error {
	face, err := tsfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("pixfx: parse font: %w", err)
	}
	if _, err := opentype.Parse(data); err != nil {
		return fmt.Errorf("pixfx: parse font: %w", err)
	}
	o.fontData = data
	o.shaped = face.Font
	o.touch()
	return nil
}

func (o *TextOperation) IsIdentity() bool { return o.text == "" }

func (o *TextOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

func (o *TextOperation) Apply(_ Renderer, src *Pixmap) (*Pixmap, error) {
	dst := src.Clone()
	w, h := dst.Width(), dst.Height()

	face, sizePx, err := o.face(h)
	if err != nil {
		return nil, err
	}

	// Draw straight into the clone's backing array.
	img := &image.NRGBA{
		Pix:    dst.Data(),
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}
	d := &xfont.Drawer{
		Dst:  img,
		Src:  image.NewUniform(o.color.Color()),
		Face: face,
	}

	width := o.measure(d, sizePx)
	x := o.x * float64(w)
	switch o.align {
	case AlignCenter:
		x -= width / 2
	case AlignRight:
		x -= width
	}
	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(x*64 + 0.5),
		Y: fixed.I(int(o.y*float64(h) + 0.5)),
	}
	d.DrawString(o.text)
	return dst, nil
}

// face builds the drawing face for the given image height. Without an
// installed font the built-in bitmap face is used at its fixed size.
func (o *TextOperation) face(height int) (xfont.Face, float64, error) {
	if o.fontData == nil {
		return basicfont.Face7x13, 0, nil
	}
	sizePx := o.size * float64(height)
	tt, err := opentype.Parse(o.fontData)
	if err != nil {
		return nil, 0, fmt.Errorf("pixfx: parse font: %w", err)
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("pixfx: build font face: %w", err)
	}
	return face, sizePx, nil
}

// measure returns the advance width of the text in pixels. With an
// installed font it shapes the string so kerning and ligatures are
// accounted for; the bitmap fallback uses the drawer's plain metrics.
func (o *TextOperation) measure(d *xfont.Drawer, sizePx float64) float64 {
	if o.shaped == nil {
		return float64(d.MeasureString(o.text)) / 64
	}
	return shapedAdvance(o.shaped, o.text, sizePx)
}

// shapedAdvance shapes the text with harfbuzz and sums the glyph
// advances.
func shapedAdvance(fnt *tsfont.Font, text string, sizePx float64) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      tsfont.NewFace(fnt),
		Size:      fixed.Int26_6(sizePx*64 + 0.5),
		Script:    language.LookupScript(runes[0]),
		Language:  language.NewLanguage("en"),
	}
	var shaper shaping.HarfbuzzShaper
	output := shaper.Shape(input)
	var advance fixed.Int26_6
	for _, g := range output.Glyphs {
		advance += g.Advance
	}
	return float64(advance) / 64
}

package pixfx

import (
	"math"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#fff", White},
		{"000", RGBA{0, 0, 0, 1}},
		{"#ff0000", RGBA{1, 0, 0, 1}},
		{"#00ff0080", RGBA{0, 1, 0, float64(0x80) / 255}},
		{"f00f", RGBA{1, 0, 0, 1}},
		{"garbage", RGBA{0, 0, 0, 1}},
	}
	for _, tt := range tests {
		got := Hex(tt.in)
		if math.Abs(got.R-tt.want.R) > 1e-9 ||
			math.Abs(got.G-tt.want.G) > 1e-9 ||
			math.Abs(got.B-tt.want.B) > 1e-9 ||
			math.Abs(got.A-tt.want.A) > 1e-9 {
			t.Errorf("Hex(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestLuma_Weights(t *testing.T) {
	if got := White.Luma(); math.Abs(got-1) > 1e-9 {
		t.Errorf("Luma(white) = %v, want 1", got)
	}
	if got := (RGBA{G: 1, A: 1}).Luma(); math.Abs(got-0.7154) > 1e-9 {
		t.Errorf("Luma(green) = %v, want 0.7154", got)
	}
}

func TestColorConversionRoundTrip(t *testing.T) {
	c := RGBA{R: 0.25, G: 0.5, B: 0.75, A: 1}
	back := FromColor(c.Color())
	if math.Abs(back.R-c.R) > 0.01 || math.Abs(back.G-c.G) > 0.01 || math.Abs(back.B-c.B) > 0.01 {
		t.Errorf("round trip = %+v, want ~%+v", back, c)
	}
}

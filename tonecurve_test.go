package pixfx

import (
	"errors"
	"testing"
)

func mustCurveT(t *testing.T, points ...CurvePoint) *ToneCurve {
	t.Helper()
	tc, err := NewToneCurve(points)
	if err != nil {
		t.Fatalf("NewToneCurve() error = %v", err)
	}
	return tc
}

func TestNewToneCurve_Validation(t *testing.T) {
	tests := []struct {
		name    string
		points  []CurvePoint
		wantErr error
	}{
		{
			name:    "no points",
			points:  nil,
			wantErr: ErrTooFewPoints,
		},
		{
			name:    "single point",
			points:  []CurvePoint{{In: 0, Out: 0}},
			wantErr: ErrTooFewPoints,
		},
		{
			name:    "duplicate input",
			points:  []CurvePoint{{In: 10, Out: 0}, {In: 10, Out: 50}},
			wantErr: ErrNonIncreasingPoints,
		},
		{
			name:    "decreasing input",
			points:  []CurvePoint{{In: 100, Out: 0}, {In: 50, Out: 50}},
			wantErr: ErrNonIncreasingPoints,
		},
		{
			name:   "two valid points",
			points: []CurvePoint{{In: 0, Out: 0}, {In: 255, Out: 255}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewToneCurve(tt.points)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewToneCurve() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewToneCurve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRGBToneCurve_ValidatesAllChannels(t *testing.T) {
	good := []CurvePoint{{In: 0, Out: 0}, {In: 255, Out: 255}}
	bad := []CurvePoint{{In: 50, Out: 0}, {In: 50, Out: 255}}

	if _, err := NewRGBToneCurve(good, good, bad); !errors.Is(err, ErrNonIncreasingPoints) {
		t.Errorf("NewRGBToneCurve() error = %v, want ErrNonIncreasingPoints", err)
	}
	if _, err := NewRGBToneCurve(good, good, good); err != nil {
		t.Errorf("NewRGBToneCurve() error = %v, want nil", err)
	}
}

func TestToneCurve_PassesThroughControlPoints(t *testing.T) {
	points := []CurvePoint{
		{In: 0, Out: 0},
		{In: 44, Out: 28},
		{In: 63, Out: 48},
		{In: 128, Out: 132},
		{In: 235, Out: 248},
		{In: 255, Out: 255},
	}
	tc := mustCurveT(t, points...)
	lut := tc.LUT()
	for _, pt := range points {
		if got := lut[0][pt.In]; got != pt.Out {
			t.Errorf("LUT[%d] = %d, want %d", pt.In, got, pt.Out)
		}
	}

	// 128 is itself a control point, so the mapping is exact.
	if r, _, _ := tc.Apply(128, 0, 0); r != 132 {
		t.Errorf("Apply(128) red = %d, want 132", r)
	}
}

func TestToneCurve_MonotoneLUT(t *testing.T) {
	tests := []struct {
		name   string
		points []CurvePoint
	}{
		{
			name:   "linear",
			points: []CurvePoint{{In: 0, Out: 0}, {In: 255, Out: 255}},
		},
		{
			name: "s-curve",
			points: []CurvePoint{
				{In: 0, Out: 0}, {In: 60, Out: 30}, {In: 190, Out: 220}, {In: 255, Out: 255},
			},
		},
		{
			name: "steep segment",
			points: []CurvePoint{
				{In: 0, Out: 0}, {In: 100, Out: 10}, {In: 110, Out: 200}, {In: 255, Out: 255},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lut := mustCurveT(t, tt.points...).LUT()
			for x := 1; x < 256; x++ {
				if lut[0][x] < lut[0][x-1] {
					t.Fatalf("LUT not monotone: lut[%d]=%d < lut[%d]=%d",
						x, lut[0][x], x-1, lut[0][x-1])
				}
			}
		})
	}
}

func TestToneCurve_EndpointHold(t *testing.T) {
	// Control points that do not cover the full 0..255 range.
	tc := mustCurveT(t, CurvePoint{In: 50, Out: 100}, CurvePoint{In: 200, Out: 150})
	lut := tc.LUT()
	for x := 0; x <= 50; x++ {
		if lut[0][x] != 100 {
			t.Fatalf("lut[%d] = %d, want held at 100", x, lut[0][x])
		}
	}
	for x := 200; x < 256; x++ {
		if lut[0][x] != 150 {
			t.Fatalf("lut[%d] = %d, want held at 150", x, lut[0][x])
		}
	}
}

func TestToneCurve_GrayscaleAppliesToAllChannels(t *testing.T) {
	tc := mustCurveT(t, CurvePoint{In: 0, Out: 10}, CurvePoint{In: 255, Out: 245})
	if !tc.Grayscale() {
		t.Fatal("Grayscale() = false, want true")
	}
	lut := tc.LUT()
	for x := 0; x < 256; x++ {
		if lut[0][x] != lut[1][x] || lut[1][x] != lut[2][x] {
			t.Fatalf("channel LUTs differ at %d: %d %d %d", x, lut[0][x], lut[1][x], lut[2][x])
		}
	}
}

func TestToneCurve_LUTCacheSharedAcrossInstances(t *testing.T) {
	points := []CurvePoint{{In: 0, Out: 5}, {In: 123, Out: 99}, {In: 255, Out: 250}}
	a := mustCurveT(t, points...)
	b := mustCurveT(t, points...)
	if a.LUT() != b.LUT() {
		t.Error("identical curves should share one cached LUT")
	}
}

package pixfx

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/pixfx/pixfx/cache"
)

// Tone curve configuration errors. Both are reported synchronously at
// construction; a curve is never silently clamped or reordered.
var (
	// ErrTooFewPoints is returned when a channel has fewer than two
	// control points.
	ErrTooFewPoints = errors.New("pixfx: tone curve needs at least 2 control points")

	// ErrNonIncreasingPoints is returned when a channel's control point
	// input levels are not strictly increasing.
	ErrNonIncreasingPoints = errors.New("pixfx: tone curve input levels must be strictly increasing")
)

// CurvePoint is a single tone curve control point mapping an 8-bit input
// level to an 8-bit output level.
type CurvePoint struct {
	In  uint8
	Out uint8
}

// ToneCurve remaps pixel levels through a smooth spline interpolated over
// control points. A curve is either a single grayscale curve applied to
// all three color channels identically, or three independent per-channel
// curves.
//
// ToneCurve is immutable after construction and safe for concurrent use.
type ToneCurve struct {
	// channels holds one point list (grayscale form) or three point
	// lists in R, G, B order (per-channel form).
	channels [][]CurvePoint

	once sync.Once
	lut  *[3][256]uint8
}

// lutCache shares lookup tables between identical curves process-wide,
// so repeated filter applications reuse the same tables.
var lutCache = cache.NewSharded[uint64, *[3][256]uint8](64, cache.Uint64Hasher)

// NewToneCurve creates a grayscale tone curve applied identically to the
// red, green and blue channels.
func NewToneCurve(points []CurvePoint) (*ToneCurve, error) {
	if err := validatePoints(points); err != nil {
		return nil, err
	}
	return &ToneCurve{channels: [][]CurvePoint{points}}, nil
}

// NewRGBToneCurve creates a tone curve with independent control points per
// color channel.
func NewRGBToneCurve(red, green, blue []CurvePoint) (*ToneCurve, error) {
	for _, ch := range [][]CurvePoint{red, green, blue} {
		if err := validatePoints(ch); err != nil {
			return nil, err
		}
	}
	return &ToneCurve{channels: [][]CurvePoint{red, green, blue}}, nil
}

// validatePoints checks the per-channel control point invariants.
func validatePoints(points []CurvePoint) error {
	if len(points) < 2 {
		return fmt.Errorf("%w (got %d)", ErrTooFewPoints, len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].In <= points[i-1].In {
			return fmt.Errorf("%w (point %d: %d after %d)",
				ErrNonIncreasingPoints, i, points[i].In, points[i-1].In)
		}
	}
	return nil
}

// Grayscale reports whether the curve is a single-channel curve applied to
// all three color channels.
func (tc *ToneCurve) Grayscale() bool {
	return len(tc.channels) == 1
}

// LUT returns the 256-entry per-channel lookup tables for the curve.
// Tables are built once on first use and shared process-wide between
// identical curves. The returned array must not be modified.
func (tc *ToneCurve) LUT() *[3][256]uint8 {
	tc.once.Do(func() {
		tc.lut = lutCache.GetOrCreate(tc.hash(), tc.buildLUT)
	})
	return tc.lut
}

// Apply remaps a single pixel's channels through the curve.
func (tc *ToneCurve) Apply(r, g, b uint8) (uint8, uint8, uint8) {
	lut := tc.LUT()
	return lut[0][r], lut[1][g], lut[2][b]
}

// hash computes an FNV-1a hash over the curve's control points, used as
// the LUT cache key.
func (tc *ToneCurve) hash() uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 64)
	buf = append(buf, byte(len(tc.channels)))
	for _, ch := range tc.channels {
		buf = append(buf, byte(len(ch)))
		for _, pt := range ch {
			buf = append(buf, pt.In, pt.Out)
		}
	}
	_, _ = h.Write(buf) // fnv.Write never returns an error
	return h.Sum64()
}

// buildLUT interpolates each channel's control points into a 256-entry
// table using a monotone cubic spline (Fritsch-Carlson). The spline passes
// exactly through every control point and never introduces oscillation
// where the control points are monotone. Inputs outside the control point
// range are held at the nearest endpoint's output level.
func (tc *ToneCurve) buildLUT() *[3][256]uint8 {
	var lut [3][256]uint8
	if tc.Grayscale() {
		table := interpolateChannel(tc.channels[0])
		lut[0], lut[1], lut[2] = table, table, table
	} else {
		for i := 0; i < 3; i++ {
			lut[i] = interpolateChannel(tc.channels[i])
		}
	}
	return &lut
}

// interpolateChannel evaluates the monotone cubic spline through points
// at every 8-bit input level.
func interpolateChannel(points []CurvePoint) [256]uint8 {
	n := len(points)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, pt := range points {
		xs[i] = float64(pt.In)
		ys[i] = float64(pt.Out)
	}

	// Secant slopes per segment.
	deltas := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		deltas[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}

	// Tangents: one-sided at the endpoints, averaged interior slopes where
	// the neighboring secants agree in direction, zero at local extrema.
	tangents := make([]float64, n)
	tangents[0] = deltas[0]
	tangents[n-1] = deltas[n-2]
	for i := 1; i < n-1; i++ {
		if deltas[i-1]*deltas[i] <= 0 {
			tangents[i] = 0
		} else {
			tangents[i] = (deltas[i-1] + deltas[i]) / 2
		}
	}

	// Fritsch-Carlson limiter: keep each segment's tangent vector inside
	// the circle of radius 3 around the secant so the spline stays
	// monotone on monotone data.
	for i := 0; i < n-1; i++ {
		if deltas[i] == 0 {
			tangents[i] = 0
			tangents[i+1] = 0
			continue
		}
		alpha := tangents[i] / deltas[i]
		beta := tangents[i+1] / deltas[i]
		s := alpha*alpha + beta*beta
		if s > 9 {
			tau := 3 / math.Sqrt(s)
			tangents[i] = tau * alpha * deltas[i]
			tangents[i+1] = tau * beta * deltas[i]
		}
	}

	var table [256]uint8
	seg := 0
	for x := 0; x < 256; x++ {
		fx := float64(x)
		switch {
		case fx <= xs[0]:
			table[x] = clamp8(ys[0])
		case fx >= xs[n-1]:
			table[x] = clamp8(ys[n-1])
		default:
			for seg < n-2 && fx > xs[seg+1] {
				seg++
			}
			h := xs[seg+1] - xs[seg]
			t := (fx - xs[seg]) / h
			t2 := t * t
			t3 := t2 * t
			// Cubic Hermite basis.
			h00 := 2*t3 - 3*t2 + 1
			h10 := t3 - 2*t2 + t
			h01 := -2*t3 + 3*t2
			h11 := t3 - t2
			v := h00*ys[seg] + h10*h*tangents[seg] + h01*ys[seg+1] + h11*h*tangents[seg+1]
			table[x] = clamp8(v)
		}
	}
	return table
}

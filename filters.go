package pixfx

// Built-in filter variants. Each variant is a fixed composition of
// primitives registered at package init time; the curve tables are the
// variant, so they are defined once and shared by every render.

// mustCurve builds a grayscale tone curve from fixed control points.
// Only used for the built-in tables, which are covered by tests.
func mustCurve(points ...CurvePoint) *ToneCurve {
	tc, err := NewToneCurve(points)
	if err != nil {
		panic(err)
	}
	return tc
}

// mustRGBCurve builds a per-channel tone curve from fixed control points.
func mustRGBCurve(red, green, blue []CurvePoint) *ToneCurve {
	tc, err := NewRGBToneCurve(red, green, blue)
	if err != nil {
		panic(err)
	}
	return tc
}

func pts(pairs ...uint8) []CurvePoint {
	points := make([]CurvePoint, len(pairs)/2)
	for i := range points {
		points[i] = CurvePoint{In: pairs[i*2], Out: pairs[i*2+1]}
	}
	return points
}

var (
	fixieCurve = mustRGBCurve(
		pts(0, 0, 44, 28, 63, 48, 128, 132, 235, 248, 255, 255),
		pts(0, 0, 20, 10, 60, 45, 190, 209, 255, 255),
		pts(0, 0, 29, 60, 45, 64, 64, 85, 170, 183, 255, 255),
	)

	orchidRGBCurve = mustRGBCurve(
		pts(0, 0, 65, 64, 150, 162, 255, 255),
		pts(0, 0, 68, 58, 180, 178, 255, 255),
		pts(0, 0, 80, 80, 165, 182, 255, 255),
	)
	orchidGrayCurve = mustCurve(pts(0, 0, 40, 35, 128, 128, 220, 228, 255, 255)...)

	bwhardCurve = mustCurve(pts(0, 0, 95, 60, 160, 195, 255, 255)...)

	breezeCurve = mustRGBCurve(
		pts(0, 0, 45, 50, 160, 172, 255, 255),
		pts(0, 0, 40, 45, 150, 159, 255, 255),
		pts(0, 0, 38, 48, 163, 168, 255, 255),
	)

	celsiusCurve = mustRGBCurve(
		pts(0, 40, 128, 155, 255, 255),
		pts(0, 10, 128, 120, 255, 235),
		pts(0, 0, 128, 98, 255, 180),
	)

	chestCurve = mustRGBCurve(
		pts(0, 0, 44, 60, 130, 151, 255, 255),
		pts(0, 0, 52, 47, 189, 205, 255, 255),
		pts(0, 0, 62, 51, 150, 142, 255, 255),
	)

	glamCurve = mustCurve(pts(0, 0, 94, 74, 181, 205, 255, 255)...)

	lomoCurve = mustCurve(pts(0, 0, 87, 20, 131, 156, 183, 205, 255, 183)...)

	mellowCurve = mustRGBCurve(
		pts(0, 0, 41, 84, 87, 134, 255, 255),
		pts(0, 0, 255, 216),
		pts(0, 0, 255, 131),
	)

	morningCurve = mustRGBCurve(
		pts(0, 40, 40, 70, 255, 255),
		pts(0, 10, 190, 200, 255, 250),
		pts(0, 20, 255, 181),
	)

	sunnyRGBCurve = mustRGBCurve(
		pts(0, 0, 62, 82, 141, 154, 255, 255),
		pts(0, 0, 62, 65, 141, 150, 255, 255),
		pts(0, 0, 141, 120, 255, 255),
	)
	sunnyGrayCurve = mustCurve(pts(0, 0, 55, 20, 158, 191, 255, 255)...)

	texasCurve = mustRGBCurve(
		pts(0, 72, 89, 99, 176, 212, 255, 237),
		pts(0, 49, 255, 192),
		pts(0, 72, 255, 151),
	)

	x400Curve = mustCurve(pts(0, 0, 42, 90, 150, 161, 255, 255)...)
)

func init() {
	RegisterFilter(FilterIdentity, "Original", func() PrimitivesStack {
		return nil
	})
	RegisterFilter("fixie", "Fixie", func() PrimitivesStack {
		return PrimitivesStack{ToneCurvePrimitive{Curve: fixieCurve}}
	})
	RegisterFilter("orchid", "Orchid", func() PrimitivesStack {
		return PrimitivesStack{
			ToneCurvePrimitive{Curve: orchidRGBCurve},
			ToneCurvePrimitive{Curve: orchidGrayCurve},
			Desaturation{Intensity: 0.65},
		}
	})
	RegisterFilter("bw", "B&W", func() PrimitivesStack {
		return PrimitivesStack{Grayscale()}
	})
	RegisterFilter("bwhard", "1920", func() PrimitivesStack {
		return PrimitivesStack{Grayscale(), ToneCurvePrimitive{Curve: bwhardCurve}}
	})
	RegisterFilter("breeze", "Breeze", func() PrimitivesStack {
		return PrimitivesStack{
			Desaturation{Intensity: 0.5},
			ToneCurvePrimitive{Curve: breezeCurve},
		}
	})
	RegisterFilter("celsius", "Celsius", func() PrimitivesStack {
		return PrimitivesStack{ToneCurvePrimitive{Curve: celsiusCurve}}
	})
	RegisterFilter("chest", "Chestnut", func() PrimitivesStack {
		return PrimitivesStack{ToneCurvePrimitive{Curve: chestCurve}}
	})
	RegisterFilter("food", "Food", func() PrimitivesStack {
		return PrimitivesStack{Saturation{Amount: 1.35}, Contrast{Amount: 1.1}}
	})
	RegisterFilter("glam", "Glam", func() PrimitivesStack {
		return PrimitivesStack{Contrast{Amount: 1.1}, ToneCurvePrimitive{Curve: glamCurve}}
	})
	RegisterFilter("lomo", "Lomo", func() PrimitivesStack {
		return PrimitivesStack{ToneCurvePrimitive{Curve: lomoCurve}}
	})
	RegisterFilter("mellow", "Mellow", func() PrimitivesStack {
		return PrimitivesStack{
			ToneCurvePrimitive{Curve: mellowCurve},
			Saturation{Amount: 0.9},
		}
	})
	RegisterFilter("morning", "Morning", func() PrimitivesStack {
		return PrimitivesStack{ToneCurvePrimitive{Curve: morningCurve}}
	})
	RegisterFilter("sunny", "Sunny", func() PrimitivesStack {
		return PrimitivesStack{
			ToneCurvePrimitive{Curve: sunnyRGBCurve},
			ToneCurvePrimitive{Curve: sunnyGrayCurve},
		}
	})
	RegisterFilter("texas", "Texas", func() PrimitivesStack {
		return PrimitivesStack{ToneCurvePrimitive{Curve: texasCurve}}
	})
	RegisterFilter("x400", "X400", func() PrimitivesStack {
		return PrimitivesStack{
			ToneCurvePrimitive{Curve: x400Curve},
			Desaturation{Intensity: 0.4},
		}
	})
}

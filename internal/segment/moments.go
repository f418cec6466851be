package segment

import "image"

// Moments holds the spatial moments of a closed polygon up to first order.
type Moments struct {
	M00 float64 `json:"m00"` // area
	M10 float64 `json:"m10"` // first moment about the Y axis
	M01 float64 `json:"m01"` // first moment about the X axis
}

// PolygonMoments computes the moments of the closed polygon pts using
// Green's theorem:
//
//	M00 = 1/2 Σ (x[i-1]*y[i] - x[i]*y[i-1])
//	M10 = 1/6 Σ (x[i-1]*y[i] - x[i]*y[i-1]) * (x[i-1] + x[i])
//	M01 = 1/6 Σ (x[i-1]*y[i] - x[i]*y[i-1]) * (y[i-1] + y[i])
//
// The result is normalised for orientation so that M00 >= 0. Polygons with
// fewer than three vertices have zero moments.
func PolygonMoments(pts []image.Point) Moments {
	if len(pts) < 3 {
		return Moments{}
	}

	var a00, a10, a01 float64
	prev := pts[len(pts)-1]
	for _, p := range pts {
		x0, y0 := float64(prev.X), float64(prev.Y)
		x1, y1 := float64(p.X), float64(p.Y)
		cross := x0*y1 - x1*y0
		a00 += cross
		a10 += cross * (x0 + x1)
		a01 += cross * (y0 + y1)
		prev = p
	}

	m := Moments{M00: a00 / 2, M10: a10 / 6, M01: a01 / 6}
	if m.M00 < 0 {
		m = Moments{M00: -m.M00, M10: -m.M10, M01: -m.M01}
	}
	return m
}

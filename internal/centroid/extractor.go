// Package centroid reduces contours to components: an integer centroid and a
// bounding box per detected region.
package centroid

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
	"github.com/ironsheep/object-graph-mcp/internal/segment"
)

// ErrDegenerateContour is returned for contours whose area is zero, where the
// centroid M10/M00, M01/M00 is undefined.
var ErrDegenerateContour = errors.New("degenerate contour")

// DegenerateContourError describes which contour could not be reduced.
type DegenerateContourError struct {
	// Index is the contour's position in discovery order, or -1 if unknown.
	Index int
	// Points is the number of boundary points in the contour.
	Points int
	// Bounds is the contour's bounding box.
	Bounds geometry.Rect
}

func (e *DegenerateContourError) Error() string {
	return fmt.Sprintf("contour %d (%d points at %d,%d %dx%d) has zero area",
		e.Index, e.Points, e.Bounds.X, e.Bounds.Y, e.Bounds.Width, e.Bounds.Height)
}

// Unwrap makes errors.Is(err, ErrDegenerateContour) hold.
func (e *DegenerateContourError) Unwrap() error {
	return ErrDegenerateContour
}

// Component summarises one contour.
type Component struct {
	// Centroid is M10/M00, M01/M00 truncated to whole pixels.
	Centroid Centroid `json:"centroid"`

	// Bounds is the contour's minimal axis-aligned bounding box.
	Bounds geometry.Rect `json:"bounds"`

	// Area is the contour's zeroth moment.
	Area float64 `json:"area"`
}

// Centroid is an integer pixel position.
type Centroid struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point returns the centroid as a Point2D.
func (c Centroid) Point() geometry.Point2D {
	return geometry.Pt(float64(c.X), float64(c.Y))
}

// Extract computes the Component of a single contour.
// It returns a *DegenerateContourError when the contour has zero area.
func Extract(c segment.Contour) (Component, error) {
	m := c.Moments
	if m.M00 == 0 || math.IsNaN(m.M00) {
		return Component{}, &DegenerateContourError{Index: -1, Points: len(c.Points), Bounds: c.Bounds}
	}
	return Component{
		Centroid: Centroid{
			X: int(m.M10 / m.M00),
			Y: int(m.M01 / m.M00),
		},
		Bounds: c.Bounds,
		Area:   m.M00,
	}, nil
}

// Options controls batch extraction.
type Options struct {
	// SkipDegenerate drops zero-area contours instead of failing.
	SkipDegenerate bool
}

// ExtractAll reduces contours in order. Component i of the result belongs to
// the i-th retained contour.
//
// With SkipDegenerate unset, the first zero-area contour aborts extraction and
// its index is reported in the returned error. Otherwise degenerate contours
// are logged at warn level and skipped; the second result counts them.
func ExtractAll(contours []segment.Contour, opts Options, log zerolog.Logger) ([]Component, int, error) {
	components := make([]Component, 0, len(contours))
	skipped := 0

	for i, c := range contours {
		comp, err := Extract(c)
		if err != nil {
			var dce *DegenerateContourError
			if errors.As(err, &dce) {
				dce.Index = i
			}
			if !opts.SkipDegenerate {
				return nil, skipped, err
			}
			skipped++
			log.Warn().
				Int("contour", i).
				Int("points", len(c.Points)).
				Msg("skipping zero-area contour")
			continue
		}
		components = append(components, comp)
	}

	return components, skipped, nil
}

// Points returns the centroids of components as real-valued points, in order.
func Points(components []Component) []geometry.Point2D {
	pts := make([]geometry.Point2D, len(components))
	for i, c := range components {
		pts[i] = c.Centroid.Point()
	}
	return pts
}

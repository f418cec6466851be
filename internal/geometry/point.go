package geometry

import (
	"fmt"
	"math"
)

// Point2D is a real-valued 2D coordinate in pixel space.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point2D{X: x, Y: y}.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p with both components multiplied by k.
func (p Point2D) Scale(k float64) Point2D {
	return Point2D{X: p.X * k, Y: p.Y * k}
}

// Div returns p with both components divided by n.
// Division by zero yields infinities, as with plain float division.
func (p Point2D) Div(n float64) Point2D {
	return Point2D{X: p.X / n, Y: p.Y / n}
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point2D) DistanceTo(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// SquaredDistanceTo returns the squared Euclidean distance between p and q.
func (p Point2D) SquaredDistanceTo(q Point2D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// String formats the point as "(x, y)".
func (p Point2D) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Mean returns the arithmetic mean of points.
// The second result is false when points is empty.
func Mean(points []Point2D) (Point2D, bool) {
	if len(points) == 0 {
		return Point2D{}, false
	}
	var sum Point2D
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Div(float64(len(points))), true
}

package proximity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
	"github.com/ironsheep/object-graph-mcp/internal/graph"
)

// ErrInvalidRadius is wrapped by every InvalidRadiusError.
var ErrInvalidRadius = errors.New("invalid radius")

// InvalidRadiusError reports a radius that cannot be used for a neighbour search.
type InvalidRadiusError struct {
	Radius float64
	Reason string
}

func (e *InvalidRadiusError) Error() string {
	return fmt.Sprintf("invalid radius %g: %s", e.Radius, e.Reason)
}

func (e *InvalidRadiusError) Unwrap() error {
	return ErrInvalidRadius
}

// ValidateRadius rejects negative, NaN and infinite radii.
func ValidateRadius(r float64) error {
	switch {
	case math.IsNaN(r):
		return &InvalidRadiusError{Radius: r, Reason: "not a number"}
	case math.IsInf(r, 0):
		return &InvalidRadiusError{Radius: r, Reason: "must be finite"}
	case r < 0:
		return &InvalidRadiusError{Radius: r, Reason: "must not be negative"}
	}
	return nil
}

// Pairs returns every unordered pair of distinct points no more than radius
// apart, sorted by (U, V).
func Pairs(points []geometry.Point2D, radius float64) ([]graph.Edge, error) {
	if err := ValidateRadius(radius); err != nil {
		return nil, err
	}
	if len(points) < 2 {
		return []graph.Edge{}, nil
	}

	tree := newTree(points)
	r2 := radius * radius

	seen := make(map[graph.Edge]struct{})
	for i, p := range points {
		for _, j := range within(tree, indexed{Point2D: p, id: i}, r2) {
			if j == i {
				continue
			}
			seen[graph.NewEdge(i, j)] = struct{}{}
		}
	}
	return sortedEdges(seen), nil
}

// BruteForcePairs computes the same result as Pairs by testing every pair.
func BruteForcePairs(points []geometry.Point2D, radius float64) ([]graph.Edge, error) {
	if err := ValidateRadius(radius); err != nil {
		return nil, err
	}
	r2 := radius * radius
	edges := []graph.Edge{}
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if points[i].SquaredDistanceTo(points[j]) <= r2 {
				edges = append(edges, graph.Edge{U: i, V: j})
			}
		}
	}
	return edges, nil
}

func sortedEdges(set map[graph.Edge]struct{}) []graph.Edge {
	edges := make([]graph.Edge, 0, len(set))
	for e := range set {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Less(edges[j]) })
	return edges
}

// Connect adds an edge between every pair of g's nodes within radius.
// Existing edges are kept. The radius is validated before any search.
func Connect(g *graph.Graph, radius float64) error {
	edges, err := Pairs(g.Positions(), radius)
	if err != nil {
		return err
	}
	for _, e := range edges {
		if err := g.SetEdge(e.U, e.V); err != nil {
			return fmt.Errorf("connect %d-%d: %w", e.U, e.V, err)
		}
	}
	return nil
}

// Build returns a new graph over points with proximity edges for radius.
func Build(points []geometry.Point2D, radius float64) (*graph.Graph, error) {
	if err := ValidateRadius(radius); err != nil {
		return nil, err
	}
	g := graph.FromPoints(points)
	if err := Connect(g, radius); err != nil {
		return nil, err
	}
	return g, nil
}

package proximity

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
	"github.com/ironsheep/object-graph-mcp/internal/graph"
)

// randomPoints returns n integer-valued points in [0, size) x [0, size).
func randomPoints(rng *rand.Rand, n, size int) []geometry.Point2D {
	pts := make([]geometry.Point2D, n)
	for i := range pts {
		pts[i] = geometry.Pt(float64(rng.Intn(size)), float64(rng.Intn(size)))
	}
	return pts
}

func TestPairs_Example(t *testing.T) {
	pts := []geometry.Point2D{
		geometry.Pt(0, 0),
		geometry.Pt(10, 10),
		geometry.Pt(200, 200),
		geometry.Pt(205, 205),
	}

	edges, err := Pairs(pts, 20)
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{U: 0, V: 1}, {U: 2, V: 3}}, edges)
}

func TestPairs_RadiusIsInclusive(t *testing.T) {
	pts := []geometry.Point2D{geometry.Pt(0, 0), geometry.Pt(3, 4), geometry.Pt(6, 8)}

	edges, err := Pairs(pts, 5)
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}}, edges)

	edges, err = Pairs(pts, 4.999)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestPairs_NoTransitiveEdges(t *testing.T) {
	// 0 and 2 share neighbour 1 but are 2r apart.
	pts := []geometry.Point2D{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(20, 0)}

	edges, err := Pairs(pts, 10)
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}}, edges)
}

func TestPairs_CoincidentPoints(t *testing.T) {
	pts := []geometry.Point2D{geometry.Pt(5, 5), geometry.Pt(5, 5), geometry.Pt(5, 5)}

	edges, err := Pairs(pts, 0)
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{U: 0, V: 1}, {U: 0, V: 2}, {U: 1, V: 2}}, edges)
}

func TestPairs_SmallInputs(t *testing.T) {
	edges, err := Pairs(nil, 10)
	require.NoError(t, err)
	assert.NotNil(t, edges)
	assert.Empty(t, edges)

	edges, err = Pairs([]geometry.Point2D{geometry.Pt(1, 1)}, 10)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestPairs_InvalidRadius(t *testing.T) {
	pts := []geometry.Point2D{geometry.Pt(0, 0), geometry.Pt(1, 1)}

	for _, r := range []float64{-1, math.NaN(), math.Inf(1)} {
		edges, err := Pairs(pts, r)
		assert.Nil(t, edges)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRadius))

		var ire *InvalidRadiusError
		require.True(t, errors.As(err, &ire))
		assert.NotEmpty(t, ire.Reason)
	}

	// An empty input still validates its radius.
	_, err := Pairs(nil, -5)
	assert.True(t, errors.Is(err, ErrInvalidRadius))
}

func TestPairs_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 25; trial++ {
		pts := randomPoints(rng, 1+rng.Intn(120), 400)
		radius := float64(rng.Intn(80))

		got, err := Pairs(pts, radius)
		require.NoError(t, err)
		want, err := BruteForcePairs(pts, radius)
		require.NoError(t, err)

		assert.Equal(t, want, got, "trial %d: %d points, radius %g", trial, len(pts), radius)
	}
}

func TestPairs_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := randomPoints(rng, 200, 500)
	const radius = 35.0

	edges, err := Pairs(pts, radius)
	require.NoError(t, err)

	seen := make(map[graph.Edge]bool)
	for _, e := range edges {
		assert.Less(t, e.U, e.V, "edge must be canonical and not a self-loop")
		assert.LessOrEqual(t, pts[e.U].DistanceTo(pts[e.V]), radius)
		assert.False(t, seen[e], "duplicate edge %v", e)
		seen[e] = true
	}

	again, err := Pairs(pts, radius)
	require.NoError(t, err)
	assert.Equal(t, edges, again)
}

func TestConnect(t *testing.T) {
	g := graph.FromPoints([]geometry.Point2D{geometry.Pt(0, 0), geometry.Pt(3, 0), geometry.Pt(50, 0)})

	require.NoError(t, Connect(g, 5))
	assert.Equal(t, []graph.Edge{{U: 0, V: 1}}, g.Edges())

	// Connecting again does not duplicate edges.
	require.NoError(t, Connect(g, 5))
	assert.Equal(t, 1, g.EdgeCount())

	err := Connect(g, -1)
	assert.True(t, errors.Is(err, ErrInvalidRadius))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestBuild(t *testing.T) {
	g, err := Build([]geometry.Point2D{geometry.Pt(5, 5), geometry.Pt(202.5, 202.5)}, 300)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []graph.Edge{{U: 0, V: 1}}, g.Edges())

	g, err = Build(nil, 10)
	require.NoError(t, err)
	assert.Zero(t, g.Len())

	_, err = Build(nil, math.NaN())
	assert.True(t, errors.Is(err, ErrInvalidRadius))
}

package graph

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
)

func samplePoints() []geometry.Point2D {
	return []geometry.Point2D{
		geometry.Pt(0, 0),
		geometry.Pt(10, 10),
		geometry.Pt(200, 200),
		geometry.Pt(205, 205),
	}
}

func TestGraph_Nodes(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.AddNode(geometry.Pt(1, 2)))
	assert.Equal(t, 1, g.AddNode(geometry.Pt(3, 4)))
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, geometry.Pt(3, 4), g.Position(1))

	positions := g.Positions()
	positions[0] = geometry.Pt(99, 99)
	assert.Equal(t, geometry.Pt(1, 2), g.Position(0), "Positions must return a copy")
}

func TestGraph_SetEdge(t *testing.T) {
	g := FromPoints(samplePoints())

	require.NoError(t, g.SetEdge(1, 0))
	require.NoError(t, g.SetEdge(0, 1)) // duplicate, no-op
	require.NoError(t, g.SetEdge(3, 2))

	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []Edge{{U: 0, V: 1}, {U: 2, V: 3}}, g.Edges())
	assert.True(t, g.HasEdge(1, 0))
	assert.False(t, g.HasEdge(1, 2))
	assert.Equal(t, []int{0}, g.Neighbors(1))
	assert.Equal(t, 1, g.Degree(3))
}

func TestGraph_SetEdgeErrors(t *testing.T) {
	g := FromPoints(samplePoints())

	err := g.SetEdge(2, 2)
	assert.True(t, errors.Is(err, ErrSelfLoop))

	err = g.SetEdge(0, 4)
	assert.True(t, errors.Is(err, ErrNodeNotFound))

	err = g.SetEdge(-1, 0)
	assert.True(t, errors.Is(err, ErrNodeNotFound))

	assert.Zero(t, g.EdgeCount())
}

func TestNewEdge_Canonical(t *testing.T) {
	assert.Equal(t, Edge{U: 2, V: 7}, NewEdge(7, 2))
	assert.Equal(t, NewEdge(3, 5), NewEdge(5, 3))
	assert.True(t, Edge{U: 0, V: 9}.Less(Edge{U: 1, V: 2}))
	assert.True(t, Edge{U: 1, V: 2}.Less(Edge{U: 1, V: 3}))
}

func TestGraph_AdjacencyMatrix(t *testing.T) {
	g := FromPoints(samplePoints())
	require.NoError(t, g.SetEdge(0, 1))
	require.NoError(t, g.SetEdge(2, 3))

	m := g.AdjacencyMatrix()
	require.NotNil(t, m)
	r, c := m.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 4, c)
	assert.Equal(t, 1.0, m.At(0, 1))
	assert.Equal(t, 1.0, m.At(1, 0))
	assert.Equal(t, 1.0, m.At(3, 2))
	assert.Equal(t, 0.0, m.At(0, 2))
	assert.Equal(t, 0.0, m.At(1, 1))

	assert.Nil(t, New().AdjacencyMatrix())
}

func TestGraph_JSON(t *testing.T) {
	g := FromPoints(samplePoints())
	require.NoError(t, g.SetEdge(2, 3))

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": [
			{"id": 0, "x": 0, "y": 0},
			{"id": 1, "x": 10, "y": 10},
			{"id": 2, "x": 200, "y": 200},
			{"id": 3, "x": 205, "y": 205}
		],
		"edges": [{"u": 2, "v": 3}]
	}`, string(data))

	var decoded Graph
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, g.Positions(), decoded.Positions())
	assert.Equal(t, g.Edges(), decoded.Edges())
}

func TestGraph_UnmarshalRejectsSparseIDs(t *testing.T) {
	var g Graph
	err := json.Unmarshal([]byte(`{"nodes":[{"id":1,"x":0,"y":0}],"edges":[]}`), &g)
	assert.Error(t, err)
}

func TestGraph_EmptyJSON(t *testing.T) {
	data, err := json.Marshal(New())
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes": [], "edges": []}`, string(data))
}

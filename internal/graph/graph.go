// Package graph provides the position-carrying undirected graph shared by the
// component and object levels of the pipeline.
//
// Nodes are dense integers 0..n-1 assigned in insertion order; each carries a
// geometry.Point2D. Edges are unordered and simple: self-loops are rejected
// and setting an existing edge again is a no-op. Adjacency is stored in a
// gonum simple.UndirectedGraph so gonum's graph algorithms apply directly.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
)

var (
	// ErrSelfLoop is returned when an edge would join a node to itself.
	ErrSelfLoop = errors.New("self-loop")

	// ErrNodeNotFound is returned for node indices outside 0..n-1.
	ErrNodeNotFound = errors.New("node not found")
)

// Edge is an unordered node pair stored with U < V.
type Edge struct {
	U int `json:"u"`
	V int `json:"v"`
}

// NewEdge returns the canonical form of the pair {a, b}.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{U: a, V: b}
}

// Less orders edges lexicographically by (U, V).
func (e Edge) Less(o Edge) bool {
	if e.U != o.U {
		return e.U < o.U
	}
	return e.V < o.V
}

// Graph is a simple undirected graph whose nodes carry 2D positions.
type Graph struct {
	g   *simple.UndirectedGraph
	pos []geometry.Point2D
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{g: simple.NewUndirectedGraph()}
}

// FromPoints returns an edgeless graph with one node per point, in order.
func FromPoints(points []geometry.Point2D) *Graph {
	g := New()
	for _, p := range points {
		g.AddNode(p)
	}
	return g
}

// AddNode appends a node at p and returns its index.
func (g *Graph) AddNode(p geometry.Point2D) int {
	id := len(g.pos)
	g.pos = append(g.pos, p)
	g.g.AddNode(simple.Node(id))
	return id
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.pos)
}

// Position returns the position of node i. It panics if i is out of range.
func (g *Graph) Position(i int) geometry.Point2D {
	return g.pos[i]
}

// Positions returns a copy of all node positions indexed by node.
func (g *Graph) Positions() []geometry.Point2D {
	out := make([]geometry.Point2D, len(g.pos))
	copy(out, g.pos)
	return out
}

func (g *Graph) checkNode(i int) error {
	if i < 0 || i >= len(g.pos) {
		return fmt.Errorf("%w: %d (graph has %d nodes)", ErrNodeNotFound, i, len(g.pos))
	}
	return nil
}

// SetEdge adds the undirected edge {a, b}. Adding an existing edge is a no-op.
func (g *Graph) SetEdge(a, b int) error {
	if err := g.checkNode(a); err != nil {
		return err
	}
	if err := g.checkNode(b); err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("%w on node %d", ErrSelfLoop, a)
	}
	g.g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
	return nil
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b int) bool {
	return g.g.HasEdgeBetween(int64(a), int64(b))
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return g.g.Edges().Len()
}

// Edges returns every edge once, sorted by (U, V).
func (g *Graph) Edges() []Edge {
	it := g.g.Edges()
	edges := make([]Edge, 0, it.Len())
	for it.Next() {
		e := it.Edge()
		edges = append(edges, NewEdge(int(e.From().ID()), int(e.To().ID())))
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Less(edges[j]) })
	return edges
}

// Neighbors returns the nodes adjacent to i in ascending order.
func (g *Graph) Neighbors(i int) []int {
	nodes := gonum.NodesOf(g.g.From(int64(i)))
	out := make([]int, len(nodes))
	for k, n := range nodes {
		out[k] = int(n.ID())
	}
	sort.Ints(out)
	return out
}

// Degree returns the number of neighbours of node i.
func (g *Graph) Degree(i int) int {
	return g.g.From(int64(i)).Len()
}

// Undirected exposes the adjacency structure to gonum algorithms.
// Node IDs equal node indices.
func (g *Graph) Undirected() gonum.Undirected {
	return g.g
}

// AdjacencyMatrix returns the symmetric 0/1 adjacency matrix of g.
// It returns nil for a graph without nodes.
func (g *Graph) AdjacencyMatrix() *mat.Dense {
	n := len(g.pos)
	if n == 0 {
		return nil
	}
	m := mat.NewDense(n, n, nil)
	for _, e := range g.Edges() {
		m.Set(e.U, e.V, 1)
		m.Set(e.V, e.U, 1)
	}
	return m
}

// Node is the serialised form of a graph node.
type Node struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type jsonGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// MarshalJSON encodes the graph as {"nodes": [...], "edges": [...]}.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := jsonGraph{
		Nodes: make([]Node, len(g.pos)),
		Edges: g.Edges(),
	}
	for i, p := range g.pos {
		out.Nodes[i] = Node{ID: i, X: p.X, Y: p.Y}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var in jsonGraph
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	fresh := New()
	for i, n := range in.Nodes {
		if n.ID != i {
			return fmt.Errorf("node %d listed at position %d: ids must be dense and ordered", n.ID, i)
		}
		fresh.AddNode(geometry.Pt(n.X, n.Y))
	}
	for _, e := range in.Edges {
		if err := fresh.SetEdge(e.U, e.V); err != nil {
			return err
		}
	}
	*g = *fresh
	return nil
}

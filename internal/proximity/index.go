package proximity

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
)

// indexed is a point that remembers its position in the caller's slice;
// building the tree reorders the backing collection.
type indexed struct {
	geometry.Point2D
	id int
}

var (
	_ kdtree.Comparable = indexed{}
	_ kdtree.Interface  = indexedPoints(nil)
)

// Compare returns the signed distance of p from the plane through c
// perpendicular to dimension d.
func (p indexed) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexed)
	if d == 0 {
		return p.X - q.X
	}
	return p.Y - q.Y
}

func (p indexed) Dims() int { return 2 }

// Distance returns the squared Euclidean distance.
func (p indexed) Distance(c kdtree.Comparable) float64 {
	return p.SquaredDistanceTo(c.(indexed).Point2D)
}

type indexedPoints []indexed

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Pivot(d kdtree.Dim) int                { return plane{Dim: d, indexedPoints: p}.Pivot() }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts a collection along one dimension for pivot selection.
type plane struct {
	kdtree.Dim
	indexedPoints
}

func (p plane) Less(i, j int) bool {
	a, b := p.indexedPoints[i], p.indexedPoints[j]
	if p.Dim == 0 {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.indexedPoints = p.indexedPoints[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}

// newTree indexes points. The returned tree has a nil root for empty input.
func newTree(points []geometry.Point2D) *kdtree.Tree {
	items := make(indexedPoints, len(points))
	for i, p := range points {
		items[i] = indexed{Point2D: p, id: i}
	}
	return kdtree.New(items, false)
}

// within returns the ids of every indexed point at squared distance at most
// r2 from q, including q itself when it is indexed.
func within(tree *kdtree.Tree, q indexed, r2 float64) []int {
	keep := kdtree.NewDistKeeper(r2)
	tree.NearestSet(keep, q)

	ids := make([]int, 0, keep.Len())
	for _, c := range keep.Heap {
		// The r² sentinel survives when a neighbour ties with it.
		if c.Comparable == nil {
			continue
		}
		ids = append(ids, c.Comparable.(indexed).id)
	}
	return ids
}

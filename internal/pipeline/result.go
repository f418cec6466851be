package pipeline

import (
	"github.com/ironsheep/object-graph-mcp/internal/centroid"
	"github.com/ironsheep/object-graph-mcp/internal/cluster"
	"github.com/ironsheep/object-graph-mcp/internal/geometry"
	"github.com/ironsheep/object-graph-mcp/internal/graph"
)

// Result is the output of one run.
type Result struct {
	RunID string `json:"run_id"`

	// Components are in contour discovery order; component i is node i of
	// ComponentGraph. Empty for runs built from points.
	Components []centroid.Component `json:"components"`

	ComponentGraph *graph.Graph      `json:"component_graph"`
	Clusters       []cluster.Cluster `json:"clusters"`

	// ObjectGraph has one node per cluster, in cluster order.
	ObjectGraph *graph.Graph `json:"object_graph"`

	// Membership[i] is the object containing component i.
	Membership []int `json:"membership"`

	// ObjectBounds[i] encloses every component of cluster i.
	ObjectBounds []geometry.Rect `json:"object_bounds"`

	ObjectCount     int `json:"object_count"`
	ContourCount    int `json:"contour_count"`
	SkippedContours int `json:"skipped_contours"`
}

// Empty reports whether the run found no components.
func (r *Result) Empty() bool {
	return r.ComponentGraph == nil || r.ComponentGraph.Len() == 0
}

// ComponentBounds returns the bounding box of every component in order.
func (r *Result) ComponentBounds() []geometry.Rect {
	out := make([]geometry.Rect, len(r.Components))
	for i, c := range r.Components {
		out[i] = c.Bounds
	}
	return out
}

// Object returns cluster i together with its bounding box, if known.
func (r *Result) Object(i int) (cluster.Cluster, geometry.Rect, bool) {
	if i < 0 || i >= len(r.Clusters) {
		return cluster.Cluster{}, geometry.Rect{}, false
	}
	var box geometry.Rect
	if i < len(r.ObjectBounds) {
		box = r.ObjectBounds[i]
	}
	return r.Clusters[i], box, true
}

// Package cluster groups the nodes of a proximity graph into connected
// components and reduces each to its mean position.
package cluster

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
	"github.com/ironsheep/object-graph-mcp/internal/graph"
)

// Cluster is one connected component of a graph.
type Cluster struct {
	// ID is the cluster's position in the sorted result.
	ID int `json:"id"`

	// Members are node indices in ascending order.
	Members []int `json:"members"`

	// Centroid is the mean position of the members.
	Centroid geometry.Point2D `json:"centroid"`
}

// Size returns the number of members.
func (c Cluster) Size() int {
	return len(c.Members)
}

// Aggregate returns the connected components of g, largest first. Clusters
// of equal size are ordered by their smallest member index.
func Aggregate(g *graph.Graph) []Cluster {
	if g.Len() == 0 {
		return []Cluster{}
	}

	components := topo.ConnectedComponents(g.Undirected())
	clusters := make([]Cluster, 0, len(components))
	for _, nodes := range components {
		members := make([]int, len(nodes))
		for i, n := range nodes {
			members[i] = int(n.ID())
		}
		sort.Ints(members)
		clusters = append(clusters, Cluster{Members: members})
	}

	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i].Members, clusters[j].Members
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a[0] < b[0]
	})

	for i := range clusters {
		clusters[i].ID = i
		clusters[i].Centroid = centroidOf(g, clusters[i].Members)
	}
	return clusters
}

func centroidOf(g *graph.Graph, members []int) geometry.Point2D {
	pts := make([]geometry.Point2D, len(members))
	for i, m := range members {
		pts[i] = g.Position(m)
	}
	c, _ := geometry.Mean(pts)
	return c
}

// Centroids returns the cluster centroids in cluster order.
func Centroids(clusters []Cluster) []geometry.Point2D {
	out := make([]geometry.Point2D, len(clusters))
	for i, c := range clusters {
		out[i] = c.Centroid
	}
	return out
}

// Membership maps each node index to the ID of the cluster containing it.
func Membership(clusters []Cluster, nodes int) []int {
	out := make([]int, nodes)
	for i := range out {
		out[i] = -1
	}
	for _, c := range clusters {
		for _, m := range c.Members {
			if m < nodes {
				out[m] = c.ID
			}
		}
	}
	return out
}

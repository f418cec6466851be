// Package proximity connects points that lie within a fixed Euclidean radius
// of each other.
//
// Pairs are found with a gonum k-d tree: every point is queried with a
// DistKeeper bounded at r², so a pair at exactly distance r is included.
// Each neighbour j of a query point i yields the unordered pair {i, j};
// self-matches and duplicates are discarded before edges are inserted in
// ascending order, so the result does not depend on traversal order.
//
// BruteForcePairs is an O(n²) reference with the same output.
package proximity

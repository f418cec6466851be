// Package render draws pipeline results over the source image.
//
// The canvas is a clone of the input (imaging.Clone), so the caller's image
// is never modified. Drawing goes through a gg context. Layers are painted
// in a fixed order:
//
//  1. Component bounding boxes
//  2. Component graph edges, then nodes
//  3. Object graph edges, then nodes
//
// Edges are one-pixel anti-aliased lines, nodes are filled discs, and node
// indices are printed with the basicfont 7x13 face. Colours are accepted as
// names ("blue", "white", ...) or hex strings ("#0000ff", "#0000ff80").
package render

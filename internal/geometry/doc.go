// Package geometry provides the value types shared by the graph pipeline.
//
// All coordinates use the image convention: origin (0, 0) at the top-left
// corner, X increasing rightward, Y increasing downward.
//
// Point2D is an immutable value. Arithmetic helpers return new values and
// never modify their receiver, so points can be copied freely between
// components, graphs and clusters without aliasing.
package geometry

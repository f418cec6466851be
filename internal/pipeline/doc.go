// Package pipeline turns an image into a two-level graph of components and
// objects.
//
// A run has six stages:
//
//  1. Segment the image into outer contours
//  2. Reduce each contour to a component (integer centroid, bounding box)
//  3. Connect components closer than the component radius
//  4. Group connected components into clusters and average their positions
//  5. Connect cluster centres closer than the object radius
//  6. Union member bounding boxes into one box per object
//
// Runs are synchronous and share no state, so one Builder may serve
// concurrent callers. A failed run returns no partial Result.
package pipeline

// Package imaging loads, caches, crops and encodes the images the tool
// server works on.
//
// Images are decoded with EXIF auto-orientation so that pixel coordinates
// match what a viewer shows. Decoded images are cached per cleaned path until
// evicted; the cache is safe for concurrent use.
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y downward. Regions are half-open: (x1,y1) inclusive,
// (x2,y2) exclusive.
package imaging

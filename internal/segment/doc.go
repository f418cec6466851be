// Package segment turns a raster image into the outer boundary contours of
// its bright regions.
//
// # Pipeline
//
//  1. Grayscale: luminance conversion of the source image
//  2. Blur: Gaussian smoothing to suppress speckle noise (optional)
//  3. Threshold: pixels brighter than the level become foreground (255)
//  4. Contours: the outer border of each 8-connected foreground region is
//     traced and compressed to its corner points
//
// Only outermost borders are reported. Holes inside a region, and regions
// lying inside such holes, produce no contour.
//
// # Moments
//
// Every Contour carries its polygon moments (M00, M10, M01) computed with
// Green's theorem over the traced boundary. M00 is the enclosed area and is
// always non-negative; it is zero for single pixels and one-pixel-wide
// strokes, which have no interior.
package segment

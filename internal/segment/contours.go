package segment

import (
	"image"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
)

// Neighbour directions in clockwise order (Y grows downward).
const (
	dirE = iota
	dirSE
	dirS
	dirSW
	dirW
	dirNW
	dirN
	dirNE
)

var directions = [8]image.Point{
	dirE:  {1, 0},
	dirSE: {1, 1},
	dirS:  {0, 1},
	dirSW: {-1, 1},
	dirW:  {-1, 0},
	dirNW: {-1, -1},
	dirN:  {0, -1},
	dirNE: {1, -1},
}

// binaryGrid is a zero-origin view of a mask. Pixels outside the grid are background.
type binaryGrid struct {
	width, height int
	pix           []bool
}

func newBinaryGrid(mask *image.Gray) *binaryGrid {
	b := mask.Bounds()
	g := &binaryGrid{
		width:  b.Dx(),
		height: b.Dy(),
		pix:    make([]bool, b.Dx()*b.Dy()),
	}
	for y := 0; y < g.height; y++ {
		row := mask.Pix[y*mask.Stride:]
		for x := 0; x < g.width; x++ {
			g.pix[y*g.width+x] = row[x] != 0
		}
	}
	return g
}

func (g *binaryGrid) at(p image.Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= g.width || p.Y >= g.height {
		return false
	}
	return g.pix[p.Y*g.width+p.X]
}

// FindContours returns the outer border of every outermost 8-connected
// foreground region in mask, in raster order of each region's top-left pixel.
//
// # Algorithm
//
//  1. Outside marking: flood-fill the background from the image frame using
//     4-connectivity. Background pixels not reached are holes.
//  2. Region scan: visit pixels in raster order; the first unvisited
//     foreground pixel of a region is its top-most, left-most pixel. The
//     whole region is then flood-filled (8-connectivity) and marked visited.
//  3. Nesting check: a region is outermost when the pixel above its first
//     pixel is frame-connected background (or off-image).
//  4. Border tracing: Moore-neighbour tracing with Jacob's stopping rule.
//  5. Compression: interior points of straight runs are dropped.
func FindContours(mask *image.Gray) []Contour {
	g := newBinaryGrid(mask)
	origin := mask.Bounds().Min

	outside := markOutside(g)
	visited := make([]bool, len(g.pix))
	contours := make([]Contour, 0)

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			idx := y*g.width + x
			if !g.pix[idx] || visited[idx] {
				continue
			}
			floodFillRegion(g, visited, x, y)

			if y > 0 && !outside[idx-g.width] {
				continue
			}

			border := compressChain(traceBorder(g, image.Point{X: x, Y: y}))
			for i := range border {
				border[i] = border[i].Add(origin)
			}
			contours = append(contours, Contour{
				Points:  border,
				Moments: PolygonMoments(border),
				Bounds:  geometry.BoundingRect(border),
			})
		}
	}

	return contours
}

// markOutside flags every background pixel 4-connected to the image frame.
func markOutside(g *binaryGrid) []bool {
	outside := make([]bool, len(g.pix))
	stack := make([]image.Point, 0, 2*(g.width+g.height))

	push := func(x, y int) {
		if x < 0 || y < 0 || x >= g.width || y >= g.height {
			return
		}
		idx := y*g.width + x
		if g.pix[idx] || outside[idx] {
			return
		}
		outside[idx] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < g.width; x++ {
		push(x, 0)
		push(x, g.height-1)
	}
	for y := 0; y < g.height; y++ {
		push(0, y)
		push(g.width-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}

	return outside
}

// floodFillRegion marks the 8-connected foreground region containing
// (startX, startY) as visited.
//
// Uses an explicit stack so large regions cannot overflow the call stack.
func floodFillRegion(g *binaryGrid, visited []bool, startX, startY int) {
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !g.at(p) {
			continue
		}
		idx := p.Y*g.width + p.X
		if visited[idx] {
			continue
		}
		visited[idx] = true

		for _, d := range directions {
			stack = append(stack, p.Add(d))
		}
	}
}

// traceBorder walks the outer border of the region whose top-left pixel is start.
//
// The walk keeps a background "backtrack" neighbour and sweeps clockwise
// around the current pixel from it until a foreground pixel is found. It
// stops on re-entering start when the following step would repeat the first
// move, so pixels visited twice (one-pixel necks) are handled.
func traceBorder(g *binaryGrid, start image.Point) []image.Point {
	pts := []image.Point{start}

	// Nothing lies west of or above the raster-first pixel.
	cur, back := start, dirW
	var second image.Point
	limit := 4*len(g.pix) + 8

	for steps := 0; steps < limit; steps++ {
		next, nextBack, ok := moore(g, cur, back)
		if !ok {
			break // isolated pixel
		}
		if steps == 0 {
			second = next
		} else if cur == start && next == second {
			break
		}
		pts = append(pts, next)
		cur, back = next, nextBack
	}

	if n := len(pts); n > 1 && pts[n-1] == start {
		pts = pts[:n-1]
	}
	return pts
}

// moore finds the next border pixel clockwise from the backtrack direction.
// It returns the pixel and the direction, seen from that pixel, of the last
// background neighbour examined.
func moore(g *binaryGrid, cur image.Point, back int) (image.Point, int, bool) {
	for k := 1; k <= 8; k++ {
		d := (back + k) % 8
		p := cur.Add(directions[d])
		if !g.at(p) {
			continue
		}
		prev := cur.Add(directions[(back+k-1)%8])
		return p, directionOf(prev.Sub(p)), true
	}
	return image.Point{}, 0, false
}

// directionOf maps a unit neighbour offset to its direction index.
func directionOf(delta image.Point) int {
	for i, d := range directions {
		if d == delta {
			return i
		}
	}
	panic("segment: offset is not a neighbour step")
}

// compressChain drops boundary points lying inside straight horizontal,
// vertical or diagonal runs, keeping only the corners of the closed polygon.
func compressChain(pts []image.Point) []image.Point {
	n := len(pts)
	if n < 3 {
		return pts
	}

	out := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		if pts[i].Sub(prev) == next.Sub(pts[i]) {
			continue
		}
		out = append(out, pts[i])
	}
	if len(out) == 0 {
		// A closed chain cannot be straight everywhere; keep the input.
		return pts
	}
	return out
}

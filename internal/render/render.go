package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
	"github.com/ironsheep/object-graph-mcp/internal/graph"
)

// Style controls how one graph layer is drawn.
type Style struct {
	NodeColor  color.Color
	EdgeColor  color.Color
	NodeRadius int
	Labels     bool
}

// Options holds the styles for every layer of an overlay.
type Options struct {
	Components   Style
	Objects      Style
	BoxColor     color.Color
	BoxThickness int
}

// DefaultOptions matches the classic overlay: blue components joined by
// black edges, red objects joined by white edges, green boxes.
func DefaultOptions() Options {
	return Options{
		Components: Style{
			NodeColor:  MustParseColor("blue"),
			EdgeColor:  MustParseColor("black"),
			NodeRadius: 6,
			Labels:     true,
		},
		Objects: Style{
			NodeColor:  MustParseColor("red"),
			EdgeColor:  MustParseColor("white"),
			NodeRadius: 8,
			Labels:     true,
		},
		BoxColor:     MustParseColor("green"),
		BoxThickness: 2,
	}
}

// Scene is everything an overlay can show.
type Scene struct {
	Components *graph.Graph
	Objects    *graph.Graph
	Boxes      []geometry.Rect
}

// Compose draws scene over a copy of img. Nil layers are skipped.
// The result has the bounds of img.
func Compose(img image.Image, scene Scene, opts Options) *image.RGBA {
	b := img.Bounds()
	dc := gg.NewContextForImage(imaging.Clone(img))
	dc.SetFontFace(labelFace)
	// The clone starts at the origin; draw in the source's coordinates.
	dc.Translate(float64(-b.Min.X), float64(-b.Min.Y))

	if opts.BoxThickness > 0 && opts.BoxColor != nil {
		DrawBoxes(dc, scene.Boxes, opts.BoxColor, opts.BoxThickness)
	}
	if scene.Components != nil {
		DrawGraphStyled(dc, scene.Components, opts.Components)
	}
	if scene.Objects != nil {
		DrawGraphStyled(dc, scene.Objects, opts.Objects)
	}

	canvas := dc.Image().(*image.RGBA)
	canvas.Rect = b
	return canvas
}

// DrawGraph draws g onto dc with default node size and labels.
func DrawGraph(dc *gg.Context, g *graph.Graph, nodeColor, edgeColor color.Color) {
	DrawGraphStyled(dc, g, Style{
		NodeColor:  nodeColor,
		EdgeColor:  edgeColor,
		NodeRadius: 6,
		Labels:     true,
	})
}

// DrawGraphStyled draws all edges of g, then all nodes on top of them.
// Node positions are pixel indices; shapes are centred on those pixels.
func DrawGraphStyled(dc *gg.Context, g *graph.Graph, s Style) {
	if s.EdgeColor != nil && g.EdgeCount() > 0 {
		dc.SetColor(s.EdgeColor)
		dc.SetLineWidth(1)
		for _, e := range g.Edges() {
			ux, uy := pixelCentre(g.Position(e.U))
			vx, vy := pixelCentre(g.Position(e.V))
			dc.DrawLine(ux, uy, vx, vy)
		}
		dc.Stroke()
	}
	if s.NodeColor == nil {
		return
	}

	labelBg := blend(s.NodeColor, contrasting(s.NodeColor), 0.25)
	labelFg := contrasting(labelBg)
	for i := 0; i < g.Len(); i++ {
		x, y := pixelCentre(g.Position(i))
		if s.NodeRadius > 0 {
			dc.SetColor(s.NodeColor)
			dc.DrawCircle(x, y, float64(s.NodeRadius))
			dc.Fill()
		}
		if s.Labels {
			drawIndex(dc, x, y, i, labelFg, labelBg)
		}
	}
}

// DrawBoxes outlines each rectangle with bands of the given thickness
// lying inside the rectangle.
func DrawBoxes(dc *gg.Context, boxes []geometry.Rect, c color.Color, thickness int) {
	if thickness <= 0 {
		return
	}
	dc.SetColor(c)
	for _, b := range boxes {
		if b.Empty() {
			continue
		}
		t := float64(min(thickness, b.Width, b.Height))
		x, y := float64(b.X), float64(b.Y)
		w, h := float64(b.Width), float64(b.Height)

		dc.DrawRectangle(x, y, w, t)
		dc.DrawRectangle(x, y+h-t, w, t)
		dc.DrawRectangle(x, y, t, h)
		dc.DrawRectangle(x+w-t, y, t, h)
	}
	dc.Fill()
}

func pixelCentre(p geometry.Point2D) (float64, float64) {
	return math.Floor(p.X+0.5) + 0.5, math.Floor(p.Y+0.5) + 0.5
}

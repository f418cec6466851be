package render

import (
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// labelFace is the fixed 7x13 bitmap face node indices are drawn with.
var labelFace = basicfont.Face7x13

// drawIndex prints n centred on (x, y) over a one-pixel padded background box.
func drawIndex(dc *gg.Context, x, y float64, n int, fg, bg color.Color) {
	text := strconv.Itoa(n)
	w, h := dc.MeasureString(text)

	dc.SetColor(bg)
	dc.DrawRectangle(x-w/2-1, y-h/2-1, w+2, h+2)
	dc.Fill()

	// Digits sit on the baseline, above the descent; 0.35 centres them.
	dc.SetColor(fg)
	dc.DrawStringAnchored(text, x, y, 0.5, 0.35)
}

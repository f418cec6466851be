package segment

import (
	"image"

	bildseg "github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Binarize converts img to a binary mask.
//
// The image is converted to grayscale, blurred with a Gaussian of the given
// sigma (skipped when sigma <= 0), and thresholded: pixels with intensity
// strictly greater than level become 255, all others 0.
//
// The returned mask has the same bounds as img.
func Binarize(img image.Image, level int, sigma float64) *image.Gray {
	gray := imaging.Grayscale(img)
	if sigma > 0 {
		gray = imaging.Blur(gray, sigma)
	}

	// bild keeps pixels >= its level; shift by one for "strictly greater".
	mask := bildseg.Threshold(gray, uint8(clampLevel(level)+1))

	// imaging and bild both rebase to a zero origin.
	if b := img.Bounds(); b.Min != (image.Point{}) {
		mask.Rect = b
	}
	return mask
}

// ForegroundCount returns the number of non-zero pixels in mask.
func ForegroundCount(mask *image.Gray) int {
	b := mask.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := mask.Pix[(y-b.Min.Y)*mask.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if row[x] != 0 {
				n++
			}
		}
	}
	return n
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 254 {
		return 254
	}
	return level
}

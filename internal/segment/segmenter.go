package segment

import (
	"fmt"
	"image"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
)

// Contour is the outer boundary of one connected foreground region.
type Contour struct {
	// Points is the closed boundary polygon in image coordinates. Runs of
	// collinear boundary pixels are reduced to their end points.
	Points []image.Point `json:"points"`

	// Moments are the polygon moments of Points.
	Moments Moments `json:"moments"`

	// Bounds is the minimal box enclosing the traced boundary.
	Bounds geometry.Rect `json:"bounds"`
}

// Segmenter converts an image into a binary mask and extracts contours from it.
type Segmenter interface {
	Binarize(img image.Image) *image.Gray
	FindContours(mask *image.Gray) []Contour
}

// Threshold is the default Segmenter: blur, then global threshold.
type Threshold struct {
	// Level is the intensity a pixel must exceed to become foreground (0-254).
	Level int

	// BlurSigma is the Gaussian blur sigma applied before thresholding.
	// Zero disables blurring.
	BlurSigma float64
}

// DefaultThreshold returns the segmenter settings used when none are configured.
func DefaultThreshold() Threshold {
	return Threshold{Level: 60, BlurSigma: 1.1}
}

// Validate checks the threshold settings.
func (t Threshold) Validate() error {
	if t.Level < 0 || t.Level > 254 {
		return fmt.Errorf("threshold level %d outside 0-254", t.Level)
	}
	if t.BlurSigma < 0 {
		return fmt.Errorf("blur sigma %g is negative", t.BlurSigma)
	}
	return nil
}

// Binarize implements Segmenter.
func (t Threshold) Binarize(img image.Image) *image.Gray {
	return Binarize(img, t.Level, t.BlurSigma)
}

// FindContours implements Segmenter.
func (t Threshold) FindContours(mask *image.Gray) []Contour {
	return FindContours(mask)
}

package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/object-graph-mcp/internal/geometry"
)

// EncodedImage is a PNG ready to embed in a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes img to path in the format implied by its extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// CropRegion cuts r, grown by padding on every side and clipped to the
// image, out of img. A scale other than 1 resizes the crop with Lanczos.
func CropRegion(img image.Image, r geometry.Rect, padding int, scale float64) (image.Image, error) {
	if r.Empty() {
		return nil, fmt.Errorf("empty crop region %dx%d", r.Width, r.Height)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %g: must be positive", scale)
	}

	region := r.Pad(padding).ImageRect().Intersect(img.Bounds())
	if region.Empty() {
		b := img.Bounds()
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X, r.Y, r.X+r.Width, r.Y+r.Height, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}

	cropped := imaging.Crop(img, region)
	if scale != 1.0 {
		w := max(1, int(float64(cropped.Bounds().Dx())*scale))
		h := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}
	return cropped, nil
}

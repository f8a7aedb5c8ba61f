package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
)

// ErrRegionOutOfBounds is returned when a region does not fit the image.
var ErrRegionOutOfBounds = errors.New("region outside image bounds")

// CropResult contains the cropped image data
type CropResult struct {
	Rect        coords.ImageRect `json:"rect"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	ImageBase64 string           `json:"image_base64"`
	MimeType    string           `json:"mime_type"`
}

// checkRegion verifies r lies inside img and returns it in img's own
// coordinate space (offset by img.Bounds().Min).
func checkRegion(img image.Image, r coords.ImageRect) (image.Rectangle, error) {
	bounds := img.Bounds()
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %+v", coords.ErrEmptyRegion, r)
	}
	if r.Left < 0 || r.Top < 0 || r.Right() > bounds.Dx() || r.Bottom() > bounds.Dy() {
		return image.Rectangle{}, fmt.Errorf("%w: (%d,%d)-(%d,%d) in %dx%d image",
			ErrRegionOutOfBounds, r.Left, r.Top, r.Right(), r.Bottom(), bounds.Dx(), bounds.Dy())
	}
	return r.Bounds().Add(bounds.Min), nil
}

// CropGray extracts r from img as an 8-bit grayscale buffer.
//
// Luminance uses the ITU-R BT.601 weights of color.GrayModel. The returned
// buffer is a copy with origin (0, 0); img is left untouched.
func CropGray(img image.Image, r coords.ImageRect) (*image.Gray, error) {
	rect, err := checkRegion(img, r)
	if err != nil {
		return nil, err
	}

	cropped := imaging.Crop(img, rect)
	gray := image.NewGray(cropped.Bounds())
	draw.Draw(gray, gray.Bounds(), cropped, cropped.Bounds().Min, draw.Src)
	return gray, nil
}

// Crop extracts r from img and returns it as a base64 PNG, optionally resized
// by scale.
func Crop(img image.Image, r coords.ImageRect, scale float64) (*CropResult, error) {
	rect, err := checkRegion(img, r)
	if err != nil {
		return nil, err
	}

	cropped := imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	encoded, err := EncodePNGBase64(cropped)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		Rect:        r,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNGBase64 encodes img as PNG and returns it base64 encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

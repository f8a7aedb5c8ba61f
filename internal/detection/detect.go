package detection

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
)

// Detect finds circles in a grayscale buffer.
//
// Parameters:
//   - gray: Region to analyze. Its Rect.Min may be non-zero (e.g. a SubImage);
//     returned coordinates are always relative to its top-left pixel.
//   - p: Detection parameters. Validated before any work is done.
//
// Returns:
//   - []coords.CropCircle: Detected circles in the crop-local frame, strongest
//     first. Empty, not nil, when nothing passes the thresholds.
//   - error: ErrInvalidParams for bad parameters, ErrEmptyImage for a nil or
//     zero-area buffer. A valid buffer never produces an error with the
//     default backend.
//
// # Preprocessing
//
// When p.BlurRadius > 0 the buffer is smoothed with a Gaussian kernel of side
// 2*BlurRadius+1 before edge detection. Otherwise the pixels are used as-is.
// The input image is never modified.
func Detect(gray *image.Gray, p Params) ([]coords.CropCircle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if gray == nil || gray.Bounds().Empty() {
		return nil, fmt.Errorf("%w: detection needs a non-empty region", ErrEmptyImage)
	}

	plane := newGrayPlane(Preprocess(gray, p))
	return houghCircles(plane, p)
}

// Preprocess applies the configured pre-blur. With BlurRadius == 0 it returns
// gray unchanged; otherwise a new buffer with origin (0, 0).
func Preprocess(gray *image.Gray, p Params) *image.Gray {
	if p.BlurRadius <= 0 {
		return gray
	}

	// blur.Gaussian returns RGBA with equal channels; GrayModel maps each
	// pixel back to the same 8-bit value.
	blurred := blur.Gaussian(gray, p.BlurRadius)
	out := image.NewGray(blurred.Bounds())
	draw.Draw(out, out.Bounds(), blurred, blurred.Bounds().Min, draw.Src)
	return out
}

package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
)

// ScaleToWidth resizes img to the given display width, keeping the aspect
// ratio, and returns the display/original scale that coords functions use to
// map preview coordinates back to the original.
//
// The returned scale is computed from the widths alone so it matches what a
// client computes from the same two numbers.
func ScaleToWidth(img image.Image, width int) (image.Image, coords.Scale, error) {
	scale, err := coords.ComputeScale(img.Bounds().Dx(), width)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scale preview: %w", err)
	}
	return imaging.Resize(img, width, 0, imaging.Linear), scale, nil
}

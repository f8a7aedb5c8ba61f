//go:build gocv

package detection

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
)

// houghCircles delegates to OpenCV's HOUGH_GRADIENT. Built only with the
// gocv tag, which needs OpenCV 4 and cgo.
//
// OpenCV resolves MaxRadius == 0 on its own, so the parameters pass through
// unchanged.
func houghCircles(g grayPlane, p Params) ([]coords.CropCircle, error) {
	circles := make([]coords.CropCircle, 0)

	src, err := gocv.ImageGrayToMatGray(g.image())
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	out := gocv.NewMat()
	defer out.Close()

	gocv.HoughCirclesWithParams(src, &out, gocv.HoughGradient,
		p.DP, p.MinDist, p.Param1, p.Param2, p.MinRadius, p.MaxRadius)

	if out.Empty() || out.Cols() == 0 {
		return circles, nil
	}

	for i := 0; i < out.Cols(); i++ {
		circles = append(circles, coords.CropCircle{
			X: int(math.Round(float64(out.GetFloatAt(0, i*3)))),
			Y: int(math.Round(float64(out.GetFloatAt(0, i*3+1)))),
			R: int(math.Round(float64(out.GetFloatAt(0, i*3+2)))),
		})
	}
	return circles, nil
}

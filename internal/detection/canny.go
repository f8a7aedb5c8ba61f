package detection

import (
	"image"
	"math"
)

// grayPlane is a tightly packed 8-bit luminance buffer with origin (0, 0).
type grayPlane struct {
	width, height int
	pix           []uint8
}

// newGrayPlane copies img into a plane whose origin is (0, 0), regardless of
// img.Rect.Min. The caller's buffer is never modified.
func newGrayPlane(img *image.Gray) grayPlane {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*w:(y+1)*w], img.Pix[off:off+w])
	}
	return grayPlane{width: w, height: h, pix: pix}
}

func (g grayPlane) at(x, y int) int {
	return int(g.pix[y*g.width+x])
}

// image returns the plane as an *image.Gray sharing its pixels.
func (g grayPlane) image() *image.Gray {
	return &image.Gray{Pix: g.pix, Stride: g.width, Rect: image.Rect(0, 0, g.width, g.height)}
}

// edgeMap holds Canny output together with the Sobel gradients the voting
// stage needs for each edge pixel.
type edgeMap struct {
	width, height int
	dx, dy        []int
	edge          []bool

	// points lists edge pixels in raster order.
	points []image.Point
}

// cannyEdges runs Sobel, non-maximum suppression and hysteresis on g.
//
// Gradient magnitude is the L1 norm |Gx| + |Gy| of 3x3 Sobel responses, so
// thresholds are in the same units as OpenCV's default Canny. Pixels on the
// outer border are never edges.
func cannyEdges(g grayPlane, low, high float64) edgeMap {
	w, h := g.width, g.height
	n := w * h
	e := edgeMap{
		width:  w,
		height: h,
		dx:     make([]int, n),
		dy:     make([]int, n),
		edge:   make([]bool, n),
	}
	mag := make([]float64, n)

	// Sobel with replicated borders
	for y := 0; y < h; y++ {
		ym, yp := clamp(y-1, 0, h-1), clamp(y+1, 0, h-1)
		for x := 0; x < w; x++ {
			xm, xp := clamp(x-1, 0, w-1), clamp(x+1, 0, w-1)

			gx := (g.at(xp, ym) + 2*g.at(xp, y) + g.at(xp, yp)) -
				(g.at(xm, ym) + 2*g.at(xm, y) + g.at(xm, yp))
			gy := (g.at(xm, yp) + 2*g.at(x, yp) + g.at(xp, yp)) -
				(g.at(xm, ym) + 2*g.at(x, ym) + g.at(xp, ym))

			i := y*w + x
			e.dx[i] = gx
			e.dy[i] = gy
			mag[i] = math.Abs(float64(gx)) + math.Abs(float64(gy))
		}
	}

	// Non-maximum suppression along the quantized gradient direction.
	// 0 = not an edge, 1 = weak, 2 = strong.
	class := make([]uint8, n)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			var n1, n2 float64
			angle := math.Atan2(float64(e.dy[i]), float64(e.dx[i]))
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = mag[i-1], mag[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = mag[i-w-1], mag[i+w+1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = mag[i-w], mag[i+w]
			default:
				n1, n2 = mag[i-w+1], mag[i+w-1]
			}

			// Strict on one side so flat ridges keep exactly one pixel.
			if m > n1 && m >= n2 {
				if m > high {
					class[i] = 2
				} else {
					class[i] = 1
				}
			}
		}
	}

	// Hysteresis: grow strong edges through connected weak pixels.
	stack := make([]int, 0, 64)
	for i, c := range class {
		if c == 2 && !e.edge[i] {
			e.edge[i] = true
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jx, jy := j%w, j/w
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					nx, ny := jx+kx, jy+ky
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					k := ny*w + nx
					if class[k] != 0 && !e.edge[k] {
						e.edge[k] = true
						stack = append(stack, k)
					}
				}
			}
		}
	}

	for i, on := range e.edge {
		if on {
			e.points = append(e.points, image.Point{X: i % w, Y: i / w})
		}
	}
	return e
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

//go:build !gocv

package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
)

// radiusSlack widens the voting and support windows so that the inner and
// outer boundaries of a thick ring both count toward the same circle.
const radiusSlack = 2

// center is an accumulator peak in image coordinates.
type center struct {
	x, y  float64
	votes int
	index int
}

// houghCircles is the pure-Go gradient Hough transform.
//
//  1. Canny edges with thresholds Param1/2 and Param1
//  2. Each edge pixel votes along both directions of its gradient for
//     distances in [MinRadius-2, MaxRadius+2], in an accumulator scaled by 1/DP
//  3. Cells that are local maxima with more than Param2 votes become
//     candidate centers, strongest first
//  4. Candidates within MinDist of an accepted circle are dropped
//  5. The radius is the distance band with the best edge support per pixel of
//     radius; support must exceed Param2
//
// Every step iterates in a fixed order, so identical input yields identical
// output.
func houghCircles(g grayPlane, p Params) ([]coords.CropCircle, error) {
	circles := make([]coords.CropCircle, 0)

	minR, maxR := p.radiusRange(g.width, g.height)
	if maxR < minR {
		return circles, nil
	}

	edges := cannyEdges(g, p.Param1/2, p.Param1)
	if len(edges.points) == 0 {
		return circles, nil
	}

	acc := newAccumulator(g.width, g.height, p.DP)
	acc.vote(edges, max(1, minR-radiusSlack), maxR+radiusSlack)

	minDist2 := p.MinDist * p.MinDist
	accepted := make([]center, 0)

	for _, c := range acc.centers(p.Param2) {
		tooClose := false
		for _, a := range accepted {
			dx, dy := c.x-a.x, c.y-a.y
			if dx*dx+dy*dy < minDist2 {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		r, ok := estimateRadius(edges, c, minR, maxR, p.Param2)
		if !ok {
			continue
		}

		accepted = append(accepted, c)
		circles = append(circles, coords.CropCircle{
			X: int(math.Round(c.x)),
			Y: int(math.Round(c.y)),
			R: int(math.Round(r)),
		})
	}

	return circles, nil
}

// accumulator counts center votes on a grid of cells DP pixels wide.
type accumulator struct {
	width, height int
	dp            float64
	cells         []int
}

func newAccumulator(imgWidth, imgHeight int, dp float64) *accumulator {
	w := int(math.Ceil(float64(imgWidth) / dp))
	h := int(math.Ceil(float64(imgHeight) / dp))
	return &accumulator{width: w, height: h, dp: dp, cells: make([]int, w*h)}
}

// vote casts, for every edge pixel, one vote per accumulator step along the
// gradient and one along its opposite, for distances lo..hi image pixels.
// A ray never votes twice for the same cell.
func (a *accumulator) vote(e edgeMap, lo, hi int) {
	idp := 1 / a.dp
	kLo := float64(lo) * idp
	kHi := float64(hi) * idp

	for _, pt := range e.points {
		i := pt.Y*e.width + pt.X
		gx, gy := float64(e.dx[i]), float64(e.dy[i])
		norm := math.Hypot(gx, gy)
		if norm == 0 {
			continue
		}
		ux, uy := gx/norm, gy/norm

		// pixel centers sit at +0.5 in continuous coordinates
		x0 := (float64(pt.X) + 0.5) * idp
		y0 := (float64(pt.Y) + 0.5) * idp

		for _, sign := range [2]float64{1, -1} {
			last := -1
			for k := kLo; k <= kHi; k++ {
				fx := x0 + sign*ux*k
				fy := y0 + sign*uy*k
				if fx < 0 || fy < 0 {
					break
				}
				cx, cy := int(fx), int(fy)
				if cx >= a.width || cy >= a.height {
					break
				}
				idx := cy*a.width + cx
				if idx == last {
					continue
				}
				last = idx
				a.cells[idx]++
			}
		}
	}
}

// centers returns local maxima above threshold, strongest first. Ties keep
// raster order. Centers are refined to the vote-weighted centroid of their
// 3x3 neighbourhood and expressed in image pixel coordinates.
func (a *accumulator) centers(threshold float64) []center {
	w := a.width
	found := make([]center, 0)

	for y := 1; y < a.height-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			v := a.cells[i]
			if float64(v) <= threshold {
				continue
			}
			if v > a.cells[i-1] && v >= a.cells[i+1] && v > a.cells[i-w] && v >= a.cells[i+w] {
				cx, cy := a.centroid(x, y)
				found = append(found, center{x: cx, y: cy, votes: v, index: i})
			}
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].votes != found[j].votes {
			return found[i].votes > found[j].votes
		}
		return found[i].index < found[j].index
	})
	return found
}

// centroid returns the vote-weighted center of the 3x3 cells around (x, y)
// in image pixel coordinates.
func (a *accumulator) centroid(x, y int) (float64, float64) {
	var sum, sx, sy float64
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			v := float64(a.cells[(y+ky)*a.width+x+kx])
			sum += v
			sx += v * (float64(x+kx) + 0.5)
			sy += v * (float64(y+ky) + 0.5)
		}
	}
	return sx/sum*a.dp - 0.5, sy/sum*a.dp - 0.5
}

// estimateRadius picks the radius in [minR, maxR] whose ±radiusSlack band
// holds the most edge pixels per pixel of radius, then refines it to the mean
// distance of the pixels in that band.
func estimateRadius(e edgeMap, c center, minR, maxR int, threshold float64) (float64, bool) {
	limit := maxR + radiusSlack
	hist := make([]int, limit+1)
	for _, pt := range e.points {
		d := math.Hypot(float64(pt.X)-c.x, float64(pt.Y)-c.y)
		b := int(d + 0.5)
		if b > limit {
			continue
		}
		hist[b]++
	}

	best, bestSupport := -1, 0
	bestScore := 0.0
	for r := minR; r <= maxR; r++ {
		support := 0
		for b := max(0, r-radiusSlack); b <= r+radiusSlack; b++ {
			support += hist[b]
		}
		score := float64(support) / float64(max(r, 1))
		if score > bestScore {
			best, bestSupport, bestScore = r, support, score
		}
	}
	if best < 0 || float64(bestSupport) <= threshold {
		return 0, false
	}

	var sum float64
	var count int
	for _, pt := range e.points {
		d := math.Hypot(float64(pt.X)-c.x, float64(pt.Y)-c.y)
		b := int(d + 0.5)
		if b >= best-radiusSlack && b <= best+radiusSlack {
			sum += d
			count++
		}
	}
	return sum / float64(count), true
}

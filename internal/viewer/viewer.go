package viewer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
)

// Trackbar ranges. Pan positions are centred on PanCenter so the slider
// covers -PanCenter..+PanCenter pixels.
const (
	ZoomMax     = 30
	ZoomDefault = 10
	PanMax      = 200
	PanCenter   = 100

	// MinScale keeps the zoom strictly positive when the slider is at 0.
	MinScale = 0.1
)

// Trackbars holds raw slider positions.
type Trackbars struct {
	Zoom int `json:"zoom"`
	PanX int `json:"pan_x"`
	PanY int `json:"pan_y"`
}

// DefaultTrackbars is scale 1 with no pan.
func DefaultTrackbars() Trackbars {
	return Trackbars{Zoom: ZoomDefault, PanX: PanCenter, PanY: PanCenter}
}

// Clamp limits every position to its slider range.
func (t Trackbars) Clamp() Trackbars {
	return Trackbars{
		Zoom: min(max(t.Zoom, 0), ZoomMax),
		PanX: min(max(t.PanX, 0), PanMax),
		PanY: min(max(t.PanY, 0), PanMax),
	}
}

// ViewState is the zoom and pan applied to the displayed image. It is a
// value: updates return a new state and the caller keeps the current one.
type ViewState struct {
	Bars  Trackbars    `json:"trackbars"`
	Scale coords.Scale `json:"scale"`
	Pan   coords.Pan   `json:"pan"`
}

// FromTrackbars derives a view from slider positions: scale = zoom/10,
// floored at MinScale, and pan = position - PanCenter.
func FromTrackbars(zoom, panX, panY int) ViewState {
	bars := Trackbars{Zoom: zoom, PanX: panX, PanY: panY}.Clamp()

	scale := float64(bars.Zoom) / 10.0
	if scale < MinScale {
		scale = MinScale
	}

	return ViewState{
		Bars:  bars,
		Scale: coords.Scale(scale),
		Pan:   coords.Pan{DX: bars.PanX - PanCenter, DY: bars.PanY - PanCenter},
	}
}

// Initial returns the view shown when an image is first opened.
func Initial() ViewState {
	d := DefaultTrackbars()
	return FromTrackbars(d.Zoom, d.PanX, d.PanY)
}

// Update carries changed slider positions. Nil fields keep their value.
type Update struct {
	Zoom *int `json:"zoom,omitempty"`
	PanX *int `json:"pan_x,omitempty"`
	PanY *int `json:"pan_y,omitempty"`
}

// Apply returns the state after u.
func (v ViewState) Apply(u Update) ViewState {
	bars := v.Bars
	if u.Zoom != nil {
		bars.Zoom = *u.Zoom
	}
	if u.PanX != nil {
		bars.PanX = *u.PanX
	}
	if u.PanY != nil {
		bars.PanY = *u.PanY
	}
	return FromTrackbars(bars.Zoom, bars.PanX, bars.PanY)
}

// Click maps a click on the rendered canvas to original image coordinates.
// The point is not clamped; use ImagePoint.Contains to test it.
func (v ViewState) Click(p coords.DisplayPoint) (coords.ImagePoint, error) {
	return coords.ToOriginalPoint(p, v.Scale, v.Pan)
}

// Overlay computes which part of a resized image is visible on a canvas
// after panning.
//
// src is the visible rectangle in resized-image coordinates and dst is where
// its top-left corner lands on the canvas. src is empty when the image is
// panned completely out of view.
func Overlay(canvas, resized image.Point, pan coords.Pan) (src image.Rectangle, dst image.Point) {
	x0 := max(-pan.DX, 0)
	y0 := max(-pan.DY, 0)
	x1 := min(canvas.X-pan.DX, resized.X)
	y1 := min(canvas.Y-pan.DY, resized.Y)

	src = image.Rect(x0, y0, max(x1, x0), max(y1, y0))
	dst = image.Pt(max(pan.DX, 0), max(pan.DY, 0))
	return src, dst
}

// ResizedSize is the size of img after zooming by s, rounded to the nearest
// pixel and never smaller than 1x1.
func ResizedSize(img image.Image, s coords.Scale) image.Point {
	b := img.Bounds()
	return image.Pt(
		max(1, int(math.Round(float64(b.Dx())*float64(s)))),
		max(1, int(math.Round(float64(b.Dy())*float64(s)))),
	)
}

// Render draws img as the viewer shows it: zoomed by v.Scale with bilinear
// filtering, shifted by v.Pan, on a white canvas the size of the original.
func Render(img image.Image, v ViewState) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)

	size := ResizedSize(img, v.Scale)
	resized := imaging.Resize(img, size.X, size.Y, imaging.Linear)

	src, dst := Overlay(canvas.Bounds().Size(), size, v.Pan)
	if src.Empty() {
		return canvas
	}

	draw.Draw(canvas, image.Rectangle{Min: dst, Max: dst.Add(src.Size())}, resized, src.Min, draw.Src)
	return canvas
}

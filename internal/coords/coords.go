package coords

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrInvalidScale is returned when a scale factor is zero or negative.
	ErrInvalidScale = errors.New("scale factor must be positive")

	// ErrInvalidDimension is returned for non-positive source or display sizes.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrEmptyRegion is returned when a selection clamps to zero width or height.
	ErrEmptyRegion = errors.New("empty region")
)

// Scale is the ratio display_dimension / original_dimension.
type Scale float64

// Validate reports ErrInvalidScale unless s > 0.
func (s Scale) Validate() error {
	if !(s > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, float64(s))
	}
	return nil
}

// Pan is a translation of the display canvas in display pixels.
type Pan struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// DisplayRect is a selection rectangle in display space. Values come straight
// from the drawing canvas and may be fractional or out of range.
type DisplayRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ImageRect is a rectangle in original image space.
//
// Rectangles produced by ToOriginalRect satisfy Left+Width <= image width and
// Top+Height <= image height, with Width and Height strictly positive.
type ImageRect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the exclusive right edge.
func (r ImageRect) Right() int { return r.Left + r.Width }

// Bottom returns the exclusive bottom edge.
func (r ImageRect) Bottom() int { return r.Top + r.Height }

// Empty reports whether the rectangle has no area.
func (r ImageRect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Bounds converts the rectangle to an image.Rectangle (Min inclusive, Max exclusive).
func (r ImageRect) Bounds() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right(), r.Bottom())
}

// DisplayPoint is a click position on the display canvas.
type DisplayPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ImagePoint is a pixel position in original image space.
type ImagePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CropCircle is a detected circle in the local frame of the cropped region
// that was passed to the detector.
type CropCircle struct {
	X int `json:"x"`
	Y int `json:"y"`
	R int `json:"r"`
}

// ImageCircle is a detected circle in original image space.
type ImageCircle struct {
	X int `json:"x"`
	Y int `json:"y"`
	R int `json:"r"`
}

// ComputeScale returns display/original.
func ComputeScale(original, display int) (Scale, error) {
	if original <= 0 {
		return 0, fmt.Errorf("%w: original dimension %d", ErrInvalidDimension, original)
	}
	if display <= 0 {
		return 0, fmt.Errorf("%w: display dimension %d", ErrInvalidDimension, display)
	}
	return Scale(float64(display) / float64(original)), nil
}

// ToOriginalRect converts a display-space selection to original space and
// clamps it to an imgWidth x imgHeight image.
//
// Each field is divided by s and truncated. The right and bottom edges are
// taken from the truncated left+width and top+height before the left/top
// clamp, so a selection hanging off the top-left corner loses the part that
// lies outside the image rather than being shifted inward.
//
// Returns ErrEmptyRegion and a zero ImageRect when the clamped rectangle has
// no area. Callers must not run detection in that case.
func ToOriginalRect(r DisplayRect, s Scale, imgWidth, imgHeight int) (ImageRect, error) {
	if err := s.Validate(); err != nil {
		return ImageRect{}, err
	}
	if imgWidth < 0 || imgHeight < 0 {
		return ImageRect{}, fmt.Errorf("%w: image %dx%d", ErrInvalidDimension, imgWidth, imgHeight)
	}

	// Edges stay in float64 until they are inside the image, so selections
	// far larger than the image clamp instead of overflowing int.
	f := float64(s)
	left := math.Trunc(r.Left / f)
	top := math.Trunc(r.Top / f)
	right := math.Min(float64(imgWidth), left+math.Trunc(r.Width/f))
	bottom := math.Min(float64(imgHeight), top+math.Trunc(r.Height/f))
	left = math.Max(0, left)
	top = math.Max(0, top)

	// NaN fails both comparisons, so non-finite selections are empty too.
	if !(right > left && bottom > top) {
		return ImageRect{}, fmt.Errorf("%w: (%g,%g)-(%g,%g)", ErrEmptyRegion, left, top, right, bottom)
	}
	return ImageRect{
		Left:   int(left),
		Top:    int(top),
		Width:  int(right - left),
		Height: int(bottom - top),
	}, nil
}

// ToDisplayRect converts an original-space rectangle back to display space.
// It is the inverse of ToOriginalRect up to truncation.
func ToDisplayRect(r ImageRect, s Scale) DisplayRect {
	f := float64(s)
	return DisplayRect{
		Left:   float64(r.Left) * f,
		Top:    float64(r.Top) * f,
		Width:  float64(r.Width) * f,
		Height: float64(r.Height) * f,
	}
}

// ToOriginalPoint undoes a pan followed by a zoom:
// x = (p.X - pan.DX) / s, y = (p.Y - pan.DY) / s, truncated.
//
// The result is not clamped.
func ToOriginalPoint(p DisplayPoint, s Scale, pan Pan) (ImagePoint, error) {
	if err := s.Validate(); err != nil {
		return ImagePoint{}, err
	}
	f := float64(s)
	return ImagePoint{
		X: int(float64(p.X-pan.DX) / f),
		Y: int(float64(p.Y-pan.DY) / f),
	}, nil
}

// OffsetCircle moves a crop-local circle into original space by adding the
// crop's origin. The radius is unchanged.
func OffsetCircle(c CropCircle, origin ImageRect) ImageCircle {
	return ImageCircle{X: c.X + origin.Left, Y: c.Y + origin.Top, R: c.R}
}

// Contains reports whether p lies inside an image of the given size.
func (p ImagePoint) Contains(width, height int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < width && p.Y < height
}

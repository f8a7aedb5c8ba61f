package detection

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned by Validate and Detect for unusable parameters.
var ErrInvalidParams = errors.New("invalid detection parameters")

// ErrEmptyImage is returned when Detect is given a zero-area buffer.
var ErrEmptyImage = errors.New("empty image")

// AutoRadius as MaxRadius lets the detector bound the radius search by the
// larger image dimension.
const AutoRadius = 0

// Params configures a single Hough circle detection pass. The first six fields
// carry the same meaning as OpenCV's HOUGH_GRADIENT parameters.
type Params struct {
	// DP is the inverse accumulator resolution. 1 gives an accumulator the size
	// of the image; 2 gives half the width and height.
	DP float64 `json:"dp" yaml:"dp"`

	// MinDist is the minimum distance in pixels between reported centers.
	MinDist float64 `json:"min_dist" yaml:"min_dist"`

	// Param1 is the upper Canny threshold. The lower threshold is Param1/2.
	Param1 float64 `json:"param1" yaml:"param1"`

	// Param2 is the accumulator vote threshold for centers, and the minimum
	// edge support for an accepted radius. Lower values find more (and more
	// false) circles.
	Param2 float64 `json:"param2" yaml:"param2"`

	// MinRadius and MaxRadius bound the radius search. MaxRadius == AutoRadius
	// resolves to max(width, height) of the image.
	MinRadius int `json:"min_radius" yaml:"min_radius"`
	MaxRadius int `json:"max_radius" yaml:"max_radius"`

	// BlurRadius enables a Gaussian pre-blur with a (2*BlurRadius+1) square
	// kernel. Zero detects directly on the input pixels.
	BlurRadius float64 `json:"blur_radius" yaml:"blur_radius"`
}

// MarkerParams returns parameters tuned for a single known bubble size:
// radius fixed at 17 pixels and no pre-blur.
func MarkerParams() Params {
	return Params{
		DP:        1.2,
		MinDist:   20,
		Param1:    50,
		Param2:    30,
		MinRadius: 17,
		MaxRadius: 17,
	}
}

// AutoParams returns parameters that search every radius after a 9x9
// Gaussian pre-blur.
func AutoParams() Params {
	return Params{
		DP:         1,
		MinDist:    20,
		Param1:     50,
		Param2:     30,
		MinRadius:  0,
		MaxRadius:  AutoRadius,
		BlurRadius: 4,
	}
}

// Preset names accepted by PresetParams.
const (
	PresetMarker = "marker"
	PresetAuto   = "auto"
)

// PresetNames lists the built-in presets in a stable order.
func PresetNames() []string {
	return []string{PresetMarker, PresetAuto}
}

// PresetParams returns the named preset.
func PresetParams(name string) (Params, error) {
	switch name {
	case PresetMarker:
		return MarkerParams(), nil
	case PresetAuto:
		return AutoParams(), nil
	default:
		return Params{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidParams, name)
	}
}

// Validate checks that every parameter is in range.
func (p Params) Validate() error {
	switch {
	case !(p.DP > 0):
		return fmt.Errorf("%w: dp must be > 0, got %v", ErrInvalidParams, p.DP)
	case !(p.MinDist > 0):
		return fmt.Errorf("%w: min_dist must be > 0, got %v", ErrInvalidParams, p.MinDist)
	case !(p.Param1 > 0):
		return fmt.Errorf("%w: param1 must be > 0, got %v", ErrInvalidParams, p.Param1)
	case !(p.Param2 > 0):
		return fmt.Errorf("%w: param2 must be > 0, got %v", ErrInvalidParams, p.Param2)
	case p.MinRadius < 0:
		return fmt.Errorf("%w: min_radius must be >= 0, got %d", ErrInvalidParams, p.MinRadius)
	case p.MaxRadius < 0:
		return fmt.Errorf("%w: max_radius must be >= 0, got %d", ErrInvalidParams, p.MaxRadius)
	case p.MaxRadius != AutoRadius && p.MaxRadius < p.MinRadius:
		return fmt.Errorf("%w: max_radius %d < min_radius %d", ErrInvalidParams, p.MaxRadius, p.MinRadius)
	case p.BlurRadius < 0:
		return fmt.Errorf("%w: blur_radius must be >= 0, got %v", ErrInvalidParams, p.BlurRadius)
	}
	return nil
}

// radiusRange resolves AutoRadius against the image size.
func (p Params) radiusRange(width, height int) (int, int) {
	maxR := p.MaxRadius
	if maxR == AutoRadius {
		maxR = max(width, height)
	}
	return p.MinRadius, maxR
}

// Overrides replaces individual fields of a Params. Nil fields are left
// alone, so a zero value changes nothing.
type Overrides struct {
	DP         *float64 `json:"dp,omitempty" yaml:"dp,omitempty"`
	MinDist    *float64 `json:"min_dist,omitempty" yaml:"min_dist,omitempty"`
	Param1     *float64 `json:"param1,omitempty" yaml:"param1,omitempty"`
	Param2     *float64 `json:"param2,omitempty" yaml:"param2,omitempty"`
	MinRadius  *int     `json:"min_radius,omitempty" yaml:"min_radius,omitempty"`
	MaxRadius  *int     `json:"max_radius,omitempty" yaml:"max_radius,omitempty"`
	BlurRadius *float64 `json:"blur_radius,omitempty" yaml:"blur_radius,omitempty"`
}

// Apply returns p with every non-nil override set. The result is not
// validated.
func (o Overrides) Apply(p Params) Params {
	if o.DP != nil {
		p.DP = *o.DP
	}
	if o.MinDist != nil {
		p.MinDist = *o.MinDist
	}
	if o.Param1 != nil {
		p.Param1 = *o.Param1
	}
	if o.Param2 != nil {
		p.Param2 = *o.Param2
	}
	if o.MinRadius != nil {
		p.MinRadius = *o.MinRadius
	}
	if o.MaxRadius != nil {
		p.MaxRadius = *o.MaxRadius
	}
	if o.BlurRadius != nil {
		p.BlurRadius = *o.BlurRadius
	}
	return p
}

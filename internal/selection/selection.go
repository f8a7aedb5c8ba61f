// Package selection runs the region-to-circles pipeline: a display-space
// selection is mapped to original space, cropped to grayscale, passed to the
// circle detector and the results are moved back into original space.
package selection

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
	"github.com/ironsheep/bubble-region-mcp/internal/detection"
	"github.com/ironsheep/bubble-region-mcp/internal/imaging"
)

// Status summarizes the outcome of a pipeline run.
type Status string

const (
	// StatusDetected means at least one circle was found.
	StatusDetected Status = "detected"

	// StatusNoCircles means the region was valid but nothing passed the
	// detector thresholds.
	StatusNoCircles Status = "no_circles"

	// StatusMapped means the selection mapped to a non-empty rectangle and
	// detection was not requested.
	StatusMapped Status = "mapped"

	// StatusInvalidRegion means the selection clamped to an empty rectangle.
	// The detector was not run.
	StatusInvalidRegion Status = "invalid_region"
)

// Request is one user selection.
type Request struct {
	// Rect is the selection in display (preview) coordinates.
	Rect coords.DisplayRect `json:"rect"`

	// Scale is display width / original width.
	Scale coords.Scale `json:"scale"`

	// Params configures the detector.
	Params detection.Params `json:"params"`
}

// Report is one detected circle, numbered from 1 in detector order.
type Report struct {
	Index int `json:"index"`
	X     int `json:"x"`
	Y     int `json:"y"`
	R     int `json:"r"`
}

// Circle returns the report's circle in original space.
func (r Report) Circle() coords.ImageCircle {
	return coords.ImageCircle{X: r.X, Y: r.Y, R: r.R}
}

// Result is the outcome of a pipeline run.
type Result struct {
	// Rect is the clamped selection in original space. For
	// StatusInvalidRegion it holds the empty clamped rectangle.
	Rect coords.ImageRect `json:"rect"`

	// Circles are in original image coordinates. Never nil.
	Circles []Report `json:"circles"`

	Status Status `json:"status"`
}

// ImageCircles returns the detected circles as plain original-space values.
func (r *Result) ImageCircles() []coords.ImageCircle {
	out := make([]coords.ImageCircle, len(r.Circles))
	for i, c := range r.Circles {
		out[i] = c.Circle()
	}
	return out
}

// DetectFunc finds circles in a grayscale crop, in crop-local coordinates.
type DetectFunc func(gray *image.Gray, p detection.Params) ([]coords.CropCircle, error)

// Pipeline runs selections against a detector.
type Pipeline struct {
	Detect DetectFunc
}

// New returns a pipeline backed by detection.Detect.
func New() *Pipeline {
	return &Pipeline{Detect: detection.Detect}
}

// Run executes req against img with the default detector.
func Run(img image.Image, req Request) (*Result, error) {
	return New().Run(img, req)
}

// Run maps req.Rect into img, detects circles in that region and returns
// them in original image coordinates.
//
// Invalid scale or detection parameters are configuration errors and are
// returned as errors. A selection that clamps to nothing is not an error: the
// result carries StatusInvalidRegion and the detector is never called.
func (p *Pipeline) Run(img image.Image, req Request) (*Result, error) {
	if err := req.Scale.Validate(); err != nil {
		return nil, err
	}
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rect, err := coords.ToOriginalRect(req.Rect, req.Scale, bounds.Dx(), bounds.Dy())
	if errors.Is(err, coords.ErrEmptyRegion) {
		return &Result{Rect: rect, Circles: []Report{}, Status: StatusInvalidRegion}, nil
	}
	if err != nil {
		return nil, err
	}

	gray, err := imaging.CropGray(img, rect)
	if err != nil {
		return nil, fmt.Errorf("failed to crop selection: %w", err)
	}

	found, err := p.Detect(gray, req.Params)
	if err != nil {
		return nil, fmt.Errorf("circle detection failed: %w", err)
	}

	result := &Result{Rect: rect, Circles: make([]Report, 0, len(found)), Status: StatusNoCircles}
	for i, c := range found {
		ic := coords.OffsetCircle(c, rect)
		result.Circles = append(result.Circles, Report{Index: i + 1, X: ic.X, Y: ic.Y, R: ic.R})
	}
	if len(result.Circles) > 0 {
		result.Status = StatusDetected
	}
	return result, nil
}

package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
	"github.com/ironsheep/bubble-region-mcp/internal/detection"
	"github.com/ironsheep/bubble-region-mcp/internal/imaging"
	"github.com/ironsheep/bubble-region-mcp/internal/selection"
	"github.com/ironsheep/bubble-region-mcp/internal/viewer"
)

var (
	// errInvalidArgs marks malformed or missing tool arguments. It is
	// reported as JSON-RPC -32602 rather than a tool failure.
	errInvalidArgs = errors.New("invalid arguments")

	// errViewerClosed is returned by viewer tools called before viewer_open.
	errViewerClosed = errors.New("no image open in the viewer; call viewer_open first")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "selection_detect_circles").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return JSON-RPC error -32602; any other tool failure -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	s.debugf("tools/call %s %s", params.Name, truncate(params.Arguments, 200))

	result, err := s.executeTool(params.Name, params.Arguments)
	if errors.Is(err, errInvalidArgs) {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if err != nil {
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Input
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_preview":
		return s.handleImagePreview(args)
	case "image_unload":
		return s.handleImageUnload(args)

	// Selection
	case "selection_map_region":
		return s.handleSelectionMapRegion(args)
	case "selection_detect_circles":
		return s.handleSelectionDetectCircles(args)
	case "image_detect_circles":
		return s.handleImageDetectCircles(args)
	case "detection_presets":
		return s.handleDetectionPresets(args)

	// Viewer
	case "viewer_open":
		return s.handleViewerOpen(args)
	case "viewer_update":
		return s.handleViewerUpdate(args)
	case "viewer_click":
		return s.handleViewerClick(args)
	case "viewer_render":
		return s.handleViewerRender(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Absent arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

func requirePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// === Image Input Handlers ===

type imageLoadArgs struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	if a.ImageBase64 != "" {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: name is required with image_base64", errInvalidArgs)
		}
		data, err := base64.StdEncoding.DecodeString(a.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: image_base64: %v", errInvalidArgs, err)
		}
		return imaging.PutBytes(s.cache, a.Name, data)
	}

	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageCropArgs struct {
	Path   string  `json:"path"`
	Left   int     `json:"left"`
	Top    int     `json:"top"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	r := coords.ImageRect{Left: a.Left, Top: a.Top, Width: a.Width, Height: a.Height}
	return imaging.Crop(img, r, a.Scale)
}

type imagePreviewArgs struct {
	Path         string `json:"path"`
	DisplayWidth int    `json:"display_width"`
}

type previewResult struct {
	Scale       float64 `json:"scale"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
}

func (s *Server) handleImagePreview(args json.RawMessage) (interface{}, error) {
	var a imagePreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	width := a.DisplayWidth
	if width == 0 {
		width = s.cfg.DisplayWidth
	}

	preview, scale, err := imaging.ScaleToWidth(img, width)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNGBase64(preview)
	if err != nil {
		return nil, err
	}
	b := preview.Bounds()
	return &previewResult{
		Scale:       float64(scale),
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

type imageUnloadArgs struct {
	Path string `json:"path"`
	All  bool   `json:"all"`
}

func (s *Server) handleImageUnload(args json.RawMessage) (interface{}, error) {
	var a imageUnloadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	if a.All {
		count := s.cache.Len()
		s.cache.Clear()
		viewerClosed := s.view != nil
		s.view = nil
		return map[string]interface{}{
			"unloaded":      count,
			"viewer_closed": viewerClosed,
		}, nil
	}

	if err := requirePath(a.Path); err != nil {
		return nil, err
	}

	s.cache.Evict(a.Path)
	viewerClosed := false
	if s.view != nil && s.view.path == a.Path {
		s.view = nil
		viewerClosed = true
	}
	return map[string]interface{}{
		"path":          a.Path,
		"unloaded":      true,
		"viewer_closed": viewerClosed,
	}, nil
}

// === Selection Handlers ===

// displayRectArgs is a selection drawn on a preview of the image.
type displayRectArgs struct {
	Path         string   `json:"path"`
	Left         float64  `json:"left"`
	Top          float64  `json:"top"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	DisplayWidth int      `json:"display_width"`
	Scale        *float64 `json:"scale"`
}

func (a displayRectArgs) rect() coords.DisplayRect {
	return coords.DisplayRect{Left: a.Left, Top: a.Top, Width: a.Width, Height: a.Height}
}

// scaleFor returns the explicit scale if given, otherwise the ratio of the
// preview width to the image width.
func (s *Server) scaleFor(img image.Image, a displayRectArgs) (coords.Scale, error) {
	if a.Scale != nil {
		scale := coords.Scale(*a.Scale)
		return scale, scale.Validate()
	}
	width := a.DisplayWidth
	if width == 0 {
		width = s.cfg.DisplayWidth
	}
	return coords.ComputeScale(img.Bounds().Dx(), width)
}

type mapRegionResult struct {
	Scale       float64            `json:"scale"`
	DisplayRect coords.DisplayRect `json:"display_rect"`
	Rect        coords.ImageRect   `json:"rect"`
	Status      selection.Status   `json:"status"`

	// PreviewRect is Rect drawn back on the preview, i.e. the selection after
	// clamping. Omitted for an invalid region.
	PreviewRect *coords.DisplayRect `json:"preview_rect,omitempty"`
}

func (s *Server) handleSelectionMapRegion(args json.RawMessage) (interface{}, error) {
	var a displayRectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	scale, err := s.scaleFor(img, a)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	rect, err := coords.ToOriginalRect(a.rect(), scale, b.Dx(), b.Dy())
	status := selection.StatusMapped
	if errors.Is(err, coords.ErrEmptyRegion) {
		status = selection.StatusInvalidRegion
	} else if err != nil {
		return nil, err
	}

	out := &mapRegionResult{
		Scale:       float64(scale),
		DisplayRect: a.rect(),
		Rect:        rect,
		Status:      status,
	}
	if status == selection.StatusMapped {
		pr := coords.ToDisplayRect(rect, scale)
		out.PreviewRect = &pr
	}
	return out, nil
}

// detectArgs selects and adjusts detection parameters.
type detectArgs struct {
	Preset string `json:"preset"`
	detection.Overrides
	Annotate bool `json:"annotate"`
}

// params resolves the preset (or the configured default) plus overrides.
func (s *Server) params(a detectArgs) (detection.Params, error) {
	base, err := s.cfg.Params()
	if a.Preset != "" {
		base, err = detection.PresetParams(a.Preset)
	}
	if err != nil {
		return detection.Params{}, err
	}
	p := a.Overrides.Apply(base)
	return p, p.Validate()
}

type detectResult struct {
	*selection.Result
	Scale     float64             `json:"scale"`
	Params    detection.Params    `json:"params"`
	Annotated *imaging.CropResult `json:"annotated,omitempty"`
}

// detect runs the pipeline and optionally renders the annotated region.
func (s *Server) detect(img image.Image, req selection.Request, annotate bool) (*detectResult, error) {
	result, err := s.pipeline.Run(img, req)
	if err != nil {
		return nil, err
	}
	s.debugf("selection %+v -> %s, %d circles", result.Rect, result.Status, len(result.Circles))

	out := &detectResult{Result: result, Scale: float64(req.Scale), Params: req.Params}
	if annotate && result.Status != selection.StatusInvalidRegion {
		drawn, err := imaging.Annotate(img, result.ImageCircles(), s.cfg.Overlay)
		if err != nil {
			return nil, err
		}
		out.Annotated, err = imaging.Crop(drawn, result.Rect, 1.0)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type selectionDetectArgs struct {
	displayRectArgs
	detectArgs
}

func (s *Server) handleSelectionDetectCircles(args json.RawMessage) (interface{}, error) {
	var a selectionDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	scale, err := s.scaleFor(img, a.displayRectArgs)
	if err != nil {
		return nil, err
	}
	p, err := s.params(a.detectArgs)
	if err != nil {
		return nil, err
	}

	return s.detect(img, selection.Request{Rect: a.rect(), Scale: scale, Params: p}, a.Annotate)
}

type imageDetectArgs struct {
	Path string `json:"path"`
	detectArgs
}

func (s *Server) handleImageDetectCircles(args json.RawMessage) (interface{}, error) {
	var a imageDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	p, err := s.params(a.detectArgs)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	whole := coords.DisplayRect{Width: float64(b.Dx()), Height: float64(b.Dy())}
	return s.detect(img, selection.Request{Rect: whole, Scale: 1, Params: p}, a.Annotate)
}

type presetInfo struct {
	Name   string           `json:"name"`
	Params detection.Params `json:"params"`
}

type presetsResult struct {
	Default string       `json:"default"`
	Presets []presetInfo `json:"presets"`
}

func (s *Server) handleDetectionPresets(args json.RawMessage) (interface{}, error) {
	var a struct{}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	out := &presetsResult{Default: s.cfg.Preset}
	for _, name := range detection.PresetNames() {
		p, err := detection.PresetParams(name)
		if err != nil {
			return nil, err
		}
		out.Presets = append(out.Presets, presetInfo{Name: name, Params: p})
	}
	return out, nil
}

// === Viewer Handlers ===

type viewerResult struct {
	Path   string           `json:"path"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
	State  viewer.ViewState `json:"state"`
}

func (s *Server) viewerResult() (*viewerResult, error) {
	img, err := s.cache.Load(s.view.path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &viewerResult{Path: s.view.path, Width: b.Dx(), Height: b.Dy(), State: s.view.state}, nil
}

type viewerOpenArgs struct {
	Path string `json:"path"`
	viewer.Update
}

func (s *Server) handleViewerOpen(args json.RawMessage) (interface{}, error) {
	var a viewerOpenArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	if _, err := s.cache.Load(a.Path); err != nil {
		return nil, err
	}

	s.view = &viewSession{path: a.Path, state: viewer.Initial().Apply(a.Update)}
	return s.viewerResult()
}

func (s *Server) handleViewerUpdate(args json.RawMessage) (interface{}, error) {
	var a viewer.Update
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.view == nil {
		return nil, errViewerClosed
	}

	s.view.state = s.view.state.Apply(a)
	return s.viewerResult()
}

type viewerClickArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type viewerClickResult struct {
	Display coords.DisplayPoint `json:"display"`
	Image   coords.ImagePoint   `json:"image"`
	Inside  bool                `json:"inside"`
	State   viewer.ViewState    `json:"state"`
}

func (s *Server) handleViewerClick(args json.RawMessage) (interface{}, error) {
	var a viewerClickArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.view == nil {
		return nil, errViewerClosed
	}
	img, err := s.cache.Load(s.view.path)
	if err != nil {
		return nil, err
	}

	click := coords.DisplayPoint{X: a.X, Y: a.Y}
	p, err := s.view.state.Click(click)
	if err != nil {
		return nil, err
	}
	s.debugf("viewer click %+v -> %+v", click, p)

	b := img.Bounds()
	return &viewerClickResult{
		Display: click,
		Image:   p,
		Inside:  p.Contains(b.Dx(), b.Dy()),
		State:   s.view.state,
	}, nil
}

type viewerRenderResult struct {
	State       viewer.ViewState `json:"state"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	ImageBase64 string           `json:"image_base64"`
	MimeType    string           `json:"mime_type"`
}

func (s *Server) handleViewerRender(args json.RawMessage) (interface{}, error) {
	var a struct{}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.view == nil {
		return nil, errViewerClosed
	}
	img, err := s.cache.Load(s.view.path)
	if err != nil {
		return nil, err
	}

	canvas := viewer.Render(img, s.view.state)
	encoded, err := imaging.EncodePNGBase64(canvas)
	if err != nil {
		return nil, err
	}
	return &viewerRenderResult{
		State:       s.view.state,
		Width:       canvas.Bounds().Dx(),
		Height:      canvas.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file, or the name given to an uploaded image",
	}
}

func intProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func numberProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

// displayRectProperties describes a selection drawn on the preview.
func displayRectProperties() map[string]interface{} {
	return map[string]interface{}{
		"path":          pathProperty(),
		"left":          numberProperty("Selection left edge in preview pixels"),
		"top":           numberProperty("Selection top edge in preview pixels"),
		"width":         numberProperty("Selection width in preview pixels"),
		"height":        numberProperty("Selection height in preview pixels"),
		"display_width": intProperty("Width of the preview the selection was drawn on (default from config, 800)"),
		"scale":         numberProperty("Explicit preview/original scale factor. Overrides display_width"),
	}
}

// detectionProperties describes the optional detector overrides.
func detectionProperties() map[string]interface{} {
	return map[string]interface{}{
		"preset": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"marker", "auto"},
			"description": "Base parameter set: marker (radius fixed at 17px) or auto (any radius, pre-blurred). Default from config",
		},
		"dp":          numberProperty("Inverse accumulator resolution"),
		"min_dist":    numberProperty("Minimum distance between circle centers in pixels"),
		"param1":      numberProperty("Upper Canny edge threshold"),
		"param2":      numberProperty("Accumulator vote threshold; lower finds more circles"),
		"min_radius":  intProperty("Minimum circle radius in pixels"),
		"max_radius":  intProperty("Maximum circle radius in pixels; 0 means no upper bound"),
		"blur_radius": numberProperty("Gaussian pre-blur radius; 0 disables"),
		"annotate": map[string]interface{}{
			"type":        "boolean",
			"description": "Also return a PNG of the region with the circles drawn on it",
			"default":     false,
		},
	}
}

func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Input
		{
			Name:        "image_load",
			Description: "Load an image from disk, or decode an uploaded base64 image and keep it under a name. Returns dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Name for an uploaded image; later tools pass it as path",
					},
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64 encoded image bytes (PNG, JPEG, GIF, TIFF or BMP)",
					},
				},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangle given in original image pixels and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"left":   intProperty("Left edge X coordinate (0-based)"),
					"top":    intProperty("Top edge Y coordinate (0-based)"),
					"width":  intProperty("Width in pixels"),
					"height": intProperty("Height in pixels"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "left", "top", "width", "height"},
			},
		},
		{
			Name:        "image_preview",
			Description: "Scale an image to the preview width the selection tools assume and return it as base64-encoded PNG with the scale factor.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":          pathProperty(),
					"display_width": intProperty("Preview width in pixels (default from config, 800)"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_unload",
			Description: "Drop a loaded or uploaded image from memory. Closes the viewer if it shows that image. With all=true every image is dropped and the viewer is closed; path is then not needed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"all": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop every cached image instead of one path",
						"default":     false,
					},
				},
			},
		},

		// Selection
		{
			Name:        "selection_map_region",
			Description: "Convert a rectangle drawn on a scaled-down preview into original image pixels, clamped to the image. Reports invalid_region when nothing of the selection lies inside the image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": displayRectProperties(),
				"required":   []string{"path", "left", "top", "width", "height"},
			},
		},
		{
			Name:        "selection_detect_circles",
			Description: "Detect bubble markers inside a rectangle drawn on the preview. Returns each circle's center and radius in original image pixels, numbered from 1.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": merge(displayRectProperties(), detectionProperties()),
				"required":   []string{"path", "left", "top", "width", "height"},
			},
		},
		{
			Name:        "image_detect_circles",
			Description: "Detect bubble markers over the whole image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": merge(map[string]interface{}{"path": pathProperty()}, detectionProperties()),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "detection_presets",
			Description: "List the built-in detection parameter presets and the configured default.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Viewer
		{
			Name:        "viewer_open",
			Description: "Open an image in the zoom/pan viewer. Zoom is 0-30 (scale = zoom/10, minimum 0.1); pan_x and pan_y are 0-200 (offset = value - 100).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"zoom":  intProperty("Zoom slider position (default 10)"),
					"pan_x": intProperty("Horizontal pan slider position (default 100)"),
					"pan_y": intProperty("Vertical pan slider position (default 100)"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "viewer_update",
			Description: "Move the viewer's zoom or pan sliders. Omitted sliders keep their position.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"zoom":  intProperty("Zoom slider position (0-30)"),
					"pan_x": intProperty("Horizontal pan slider position (0-200)"),
					"pan_y": intProperty("Vertical pan slider position (0-200)"),
				},
			},
		},
		{
			Name:        "viewer_click",
			Description: "Convert a click on the viewer canvas into original image pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": intProperty("Click X on the viewer canvas"),
					"y": intProperty("Click Y on the viewer canvas"),
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "viewer_render",
			Description: "Return the viewer canvas as it is currently zoomed and panned, as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

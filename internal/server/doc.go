// Package server implements the MCP (Model Context Protocol) server for
// bubble-marker region selection.
//
// A client shows the user a scaled-down preview of a scanned form, the user
// drags a rectangle over part of it, and the server maps that rectangle back
// to original pixels, finds the circular bubble markers inside it and
// reports their centers and radii in original image coordinates.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0, one request per
// line on stdin and one response per line on stdout. Supported methods are
// initialize, tools/list, tools/call and ping.
//
// # Available Tools
//
// Image Input:
//   - image_load: Load a file, or register an uploaded base64 image under a name
//   - image_dimensions: Get width and height
//   - image_crop: Extract a rectangle given in original pixels
//   - image_preview: Scale to the preview width and report the scale factor
//   - image_unload: Drop one image, or all of them, from memory
//
// Selection:
//   - selection_map_region: Map a preview rectangle to original pixels
//   - selection_detect_circles: Detect markers inside a preview rectangle
//   - image_detect_circles: Detect markers over the whole image
//   - detection_presets: List the marker and auto parameter sets
//
// Viewer:
//   - viewer_open: Open an image with zoom and pan sliders
//   - viewer_update: Move the sliders
//   - viewer_click: Map a canvas click to original pixels
//   - viewer_render: Return the zoomed and panned canvas
//
// # Errors
//
// Missing or malformed tool arguments return JSON-RPC -32602. Any other tool
// failure returns -32000 with the Go error string in data. A selection that
// falls outside the image is not an error: it is reported with status
// invalid_region and no circles.
//
// # Configuration
//
// NewWithConfig takes the preview width, default detection preset, parameter
// overrides and overlay style from a config.Config. New uses the defaults.
package server

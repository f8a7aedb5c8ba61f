// Package viewer models the zoom/pan inspection view used to read exact
// pixel coordinates off an image.
//
// Three sliders drive the view: Zoom (0..30, scale = zoom/10, at least 0.1)
// and Pan X / Pan Y (0..200, offset = position - 100). The image is scaled,
// shifted by the pan offset and drawn onto a white canvas the size of the
// original image. A click on that canvas at (x, y) corresponds to the
// original pixel ((x - dx) / scale, (y - dy) / scale), truncated.
//
// # State
//
// There is no package-level state. ViewState is a plain value; callers hold
// the current one and replace it with the result of Apply on every slider
// change.
package viewer

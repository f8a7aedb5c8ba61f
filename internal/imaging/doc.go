// Package imaging loads, crops, scales and annotates images for the bubble
// detection pipeline.
//
// All operations work with standard Go image.Image types and never modify the
// image they are given. Pixel coordinates are 0-based with (0,0) at the
// top-left pixel of the image, whatever its Bounds().Min.
//
// # Regions
//
// Regions are coords.ImageRect values in original image space. A region must
// lie fully inside the image; clamping a user selection is the job of
// coords.ToOriginalRect, not of this package.
//
// # Grayscale
//
// CropGray converts with the ITU-R BT.601 luma weights used by
// color.GrayModel (0.299 R + 0.587 G + 0.114 B), the same weights OpenCV
// applies when reading a colour image as grayscale.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently.
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads. Consider using Evict() or Clear() to manage memory for
// long-running processes.
package imaging

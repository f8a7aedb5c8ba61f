// Package coords maps rectangles, points and circles between the display
// space a user interacts with and the original image's pixel space.
//
// # Coordinate Frames
//
// Every value in this package carries its frame in its type:
//
//   - DisplayRect, DisplayPoint: coordinates on a scaled preview canvas
//     (and, for points, after the viewer's pan offset).
//   - ImageRect, ImagePoint, ImageCircle: pixels of the unscaled source image.
//   - CropCircle: pixels of a cropped region, origin at the crop's top-left.
//
// Crossing a frame always goes through a conversion function, so a display
// rectangle cannot be used to crop the original image by accident.
//
// # Scale
//
// Scale is display/original. Converting to original space divides by it, so
// a zero or negative Scale is a configuration error and is rejected before any
// arithmetic happens.
//
// # Rounding
//
// Conversions truncate toward zero, the same as an int() cast. Rectangles are
// clamped to the image bounds after truncation; points are not clamped because
// a click outside the frame is reported as-is for the caller to reject.
package coords

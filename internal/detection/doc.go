// Package detection finds circular markers, such as the bubbles on a scanned
// answer sheet, in a grayscale image region.
//
// # Algorithm
//
// Detect runs a gradient-based circular Hough transform in the style of
// OpenCV's HOUGH_GRADIENT:
//
//  1. Optional Gaussian pre-blur (Params.BlurRadius)
//  2. Canny edge detection with thresholds Param1/2 and Param1
//  3. Each edge pixel votes for centers along its gradient line, over the
//     configured radius range, into an accumulator DP pixels per cell
//  4. Accumulator peaks above Param2 become candidate centers
//  5. Candidates closer than MinDist to a stronger circle are dropped
//  6. The radius with the best edge support is picked per center
//
// # Coordinate System
//
// Results are coords.CropCircle values: relative to the top-left pixel of the
// buffer passed to Detect, whatever its Rect.Min. Use coords.OffsetCircle to
// move them into original image space.
//
// # Radius Modes
//
// A fixed marker size is detected with MinRadius == MaxRadius (see
// MarkerParams). MaxRadius == AutoRadius searches up to the larger image
// dimension (see AutoParams). Both go through the same code path.
//
// AutoParams blurs before edge detection. On a thin outline ring the blur
// spreads the stroke so its inner edge collects the most support per pixel of
// circumference, and the reported radius comes out low by up to BlurRadius.
// Filled bubbles are not affected. For outline markers use MarkerParams or
// set BlurRadius to 0.
//
// # Determinism
//
// The pure-Go backend has no randomized steps; identical pixels and
// parameters produce identical, identically ordered results.
//
// # Backends
//
// Building with -tags gocv replaces the pure-Go transform with OpenCV's
// HoughCircles through gocv.io/x/gocv. That build requires cgo and an OpenCV 4
// installation.
package detection

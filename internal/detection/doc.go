// Package detection holds the canonical detection types and turns raw detector
// output, including optional instance masks, into them.
//
// # Detections
//
// A Detection is a bounding box, a confidence score, a class label and an
// optional closed polygon outline. Detectors produce RawDetection values with
// optional fields left empty; a Normalizer fills defaults (score 1.0, label
// "sample_object") and, when segmentation is enabled, traces the mask.
//
// # Contour Extraction
//
// Tracer converts a Mask into a polygon:
//
//  1. Threshold: samples above 0.5 are foreground
//  2. Components: 8-connected labelling, the largest component is kept
//  3. Boundary: Moore-neighbour tracing through boundary pixel indices
//  4. Holes: enclosed background is discarded with one warning per hole
//  5. Simplification: optional Douglas-Peucker (off by default)
//
// Every vertex of the returned ring lies inside the mask's foreground, and the
// ring encloses all foreground pixels of the traced component.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes are [x_min, y_min, x_max, y_max]
//
// Masks may be box-local; their Origin field offsets traced vertices into
// raster coordinates.
//
// # Thread Safety
//
// Tracer and Normalizer hold configuration only and may be shared between
// goroutines. Masks must not be modified while being traced.
package detection

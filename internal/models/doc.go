// Package models provides the detectors behind the inference endpoint.
//
// Two stub generators produce synthetic detections from the raster size
// alone:
//
//   - CenterpointGenerator: one box centred on the raster, deterministic
//   - FloodGenerator: many randomly placed boxes with random scores
//
// RemoteDetector forwards the raster to an external inference service and
// normalizes what it returns, tracing instance masks into polygons.
//
// New selects a Model by name from the process configuration, and Pipeline
// ties a Decoder, a Model and an Encoder together for one request.
package models

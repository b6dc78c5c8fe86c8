// Package imaging decodes image tiles into the canonical Raster used by the
// detection pipeline.
//
// Payloads arrive as opaque bytes. The Decoder recognises PNG, JPEG, GIF, TIFF,
// BMP and WebP and always produces an 8-bit, three-channel, row-major Raster
// regardless of the source layout.
//
// # Channel Normalization
//
// Source channels are normalized in this order (first matching rule wins):
//   - 4 channels: the alpha channel is dropped
//   - 1 channel: the gray value is replicated to R, G and B
//   - 2-D sample arrays without a channel axis: treated as 1 channel
//   - 3 channels: passed through unchanged
//
// Floating point samples in [0,1] are scaled by 255 and truncated; see
// FromSamples.
//
// # Coordinate System
//
// Pixel (0,0) is the top-left corner, X increases rightward and Y increases
// downward.
//
// # Resources
//
// Each decode stages the payload in a pooled scratch buffer that is released
// before Decode returns, including on failure. BuffersInUse exposes the number
// of outstanding buffers.
//
// # Thread Safety
//
// Decoder and Raster are safe for concurrent use; Rasters are never mutated
// after construction.
package imaging

// Package server exposes a model over HTTP.
//
// # Endpoints
//
//   - GET /ping: liveness check, always 200 with a newline body
//   - POST /invocations: raw image bytes in, FeatureCollection JSON out
//
// The optional image_id query parameter on /invocations pins the image id of
// every returned feature; without it each feature gets a fresh random id.
//
// # Errors
//
// Failures map to plain-text responses:
//
//   - 400 "Unable to parse image from request!": empty or undecodable payload
//   - FAULT_RESPONSE_STATUS: fault detection rejected an all-zero raster
//   - 429 "Too many requests": per-client rate limit exceeded
//   - 500 "Unable to process request.": anything else, including panics
//
// # Middleware
//
// Every request gets an X-Request-ID (a ULID unless the client sent one) and
// an access log entry whose level follows the response status.
package server

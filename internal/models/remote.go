package models

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/stub-model-server/internal/detection"
	"github.com/ironsheep/stub-model-server/internal/imaging"
)

// ErrInference is returned when the inference service cannot be reached or
// answers with something other than a detection list.
var ErrInference = errors.New("inference request failed")

// DefaultRemoteLabel is the label assigned to remote detections that carry
// none.
const DefaultRemoteLabel = "airplane"

// maxResponseBytes bounds the inference response body.
const maxResponseBytes = 64 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// remoteResponse is the inference service's reply.
//
//	{"detections": [{"bbox": [x0, y0, x1, y1], "score": 0.93, "label": "airplane",
//	                 "mask": "<base64 PNG>", "mask_origin": [x, y]}]}
//
// score, label, mask and mask_origin are optional. A mask without origin
// covers the whole raster; with an origin it is box-local.
type remoteResponse struct {
	Detections []remoteDetection `json:"detections"`
}

type remoteDetection struct {
	BBox       [4]float64 `json:"bbox"`
	Score      *float64   `json:"score"`
	Label      string     `json:"label"`
	Mask       string     `json:"mask"`
	MaskOrigin *[2]int    `json:"mask_origin"`
}

// RemoteDetector forwards rasters to an external inference service and
// normalizes its detections, tracing masks into polygons when segmentation
// is enabled on the Normalizer.
type RemoteDetector struct {
	// URL receives a POST with the raster encoded as PNG.
	URL string

	// Client performs the request; nil uses a client with Timeout.
	Client *http.Client

	// Timeout applies when Client is nil. Zero means 30s.
	Timeout time.Duration

	// Label replaces missing labels; empty uses DefaultRemoteLabel.
	Label string

	Normalizer detection.Normalizer
	Log        logrus.FieldLogger
}

// Name implements Model.
func (d *RemoteDetector) Name() string { return NameAircraft }

// Detect implements Model. The request honours ctx cancellation.
func (d *RemoteDetector) Detect(ctx context.Context, r *imaging.Raster) ([]detection.Detection, error) {
	var body bytes.Buffer
	if err := imaging.EncodePNG(&body, r.Image()); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	req.Header.Set("Content-Type", "image/png")

	start := time.Now()
	resp, err := d.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrInference, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrInference, resp.StatusCode)
	}

	var parsed remoteResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrInference, err)
	}

	raws := make([]detection.RawDetection, 0, len(parsed.Detections))
	for i, rd := range parsed.Detections {
		raws = append(raws, d.rawDetection(i, rd))
	}

	if d.Log != nil {
		d.Log.WithFields(logrus.Fields{
			"detections": len(raws),
			"latency":    time.Since(start).String(),
		}).Debug("Inference service responded")
	}

	return d.Normalizer.NormalizeAll(raws), nil
}

// rawDetection converts one service detection. Masks are only decoded when
// segmentation is enabled; a mask that fails to decode is logged and dropped
// so the detection still comes through without a polygon.
func (d *RemoteDetector) rawDetection(i int, rd remoteDetection) detection.RawDetection {
	raw := detection.RawDetection{
		Box:   rd.BBox,
		Score: rd.Score,
		Label: rd.Label,
	}
	if raw.Label == "" {
		raw.Label = d.Label
		if raw.Label == "" {
			raw.Label = DefaultRemoteLabel
		}
	}

	if rd.Mask == "" || !d.Normalizer.Segmentation {
		return raw
	}
	img, err := decodeMask(rd.Mask)
	if err != nil {
		if d.Log != nil {
			d.Log.WithFields(logrus.Fields{
				"detection": i,
				"label":     raw.Label,
				"bbox":      raw.Box,
			}).WithError(err).Warn("Discarded undecodable mask")
		}
		return raw
	}

	var origin image.Point
	if rd.MaskOrigin != nil {
		origin = image.Pt(rd.MaskOrigin[0], rd.MaskOrigin[1])
	}
	raw.Mask = detection.MaskFromImage(img, 128, origin)
	return raw
}

func decodeMask(encoded string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	return img, nil
}

func (d *RemoteDetector) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

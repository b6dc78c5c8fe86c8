package models

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/stub-model-server/internal/geojson"
	"github.com/ironsheep/stub-model-server/internal/imaging"
)

// Pipeline runs one inference: decode, detect, encode.
//
// A Pipeline is safe for concurrent use as long as its Model is; every call
// works on its own raster and detections.
type Pipeline struct {
	Decoder imaging.Decoder
	Model   Model
	Encoder geojson.Encoder
	Log     logrus.FieldLogger
}

// Invoke decodes payload, runs the model and encodes the detections. An
// empty imageID gives every feature a fresh image id.
//
// Decoder errors (imaging.ErrDecode, imaging.ErrAllZeroRaster) are returned
// unwrapped so callers can map them with errors.Is.
func (p *Pipeline) Invoke(ctx context.Context, payload []byte, imageID string) (geojson.FeatureCollection, error) {
	start := time.Now()

	raster, err := p.Decoder.Decode(payload)
	if err != nil {
		return geojson.FeatureCollection{}, err
	}

	dets, err := p.Model.Detect(ctx, raster)
	if err != nil {
		return geojson.FeatureCollection{}, fmt.Errorf("%s model: %w", p.Model.Name(), err)
	}

	fc := p.Encoder.EncodeAll(dets, imageID)

	if p.Log != nil {
		p.Log.WithFields(logrus.Fields{
			"model":    p.Model.Name(),
			"width":    raster.Width,
			"height":   raster.Height,
			"features": len(fc.Features),
			"elapsed":  time.Since(start).String(),
		}).Debug("Processed image")
	}

	return fc, nil
}

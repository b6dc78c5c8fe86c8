package models

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/stub-model-server/internal/config"
	"github.com/ironsheep/stub-model-server/internal/detection"
	"github.com/ironsheep/stub-model-server/internal/imaging"
)

// Model names.
const (
	NameCenterpoint = config.ModelCenterpoint
	NameFlood       = config.ModelFlood
	NameAircraft    = config.ModelAircraft
)

// Model produces detections for a decoded raster.
type Model interface {
	Name() string
	Detect(ctx context.Context, r *imaging.Raster) ([]detection.Detection, error)
}

var (
	_ Model = (*CenterpointGenerator)(nil)
	_ Model = (*FloodGenerator)(nil)
	_ Model = (*RemoteDetector)(nil)
)

// New builds the model selected by cfg.ModelName.
func New(cfg config.Config, log logrus.FieldLogger) (Model, error) {
	switch cfg.ModelName {
	case NameCenterpoint:
		return &CenterpointGenerator{
			BBoxPercentage: cfg.BBoxPercentage,
			NumVertices:    cfg.NumVertices,
			Segmentation:   cfg.EnableSegmentation,
		}, nil

	case NameFlood:
		return &FloodGenerator{
			Volume:         cfg.FloodVolume,
			BBoxPercentage: cfg.BBoxPercentage,
			NumVertices:    cfg.NumVertices,
			Segmentation:   cfg.EnableSegmentation,
			Rand:           GlobalSource(),
		}, nil

	case NameAircraft:
		if cfg.InferenceURL == "" {
			return nil, fmt.Errorf("model %q requires an inference URL", NameAircraft)
		}
		return &RemoteDetector{
			URL:     cfg.InferenceURL,
			Timeout: cfg.InferenceTimeout,
			Normalizer: detection.Normalizer{
				Segmentation: cfg.EnableSegmentation,
				Tracer: detection.Tracer{
					Tolerance: cfg.SimplifyTolerance,
					Log:       log,
				},
				Log: log,
			},
			Log: log,
		}, nil
	}

	return nil, fmt.Errorf("unknown model %q", cfg.ModelName)
}

package detection

import (
	"github.com/sirupsen/logrus"
)

// Normalizer turns detector output into canonical detections.
//
// Missing scores become DefaultScore and missing labels become DefaultLabel.
// When Segmentation is enabled and a mask is present the mask is traced into
// a polygon; otherwise the detection carries no polygon, even if the detector
// produced a mask.
type Normalizer struct {
	Segmentation bool
	Tracer       Tracer

	// Log receives contour failures. May be nil.
	Log logrus.FieldLogger
}

// Normalize fills defaults and traces the optional mask.
//
// A mask that yields no usable contour (ErrNoContour, ErrDegenerateContour)
// is logged at warning level and the detection is returned without polygon.
func (n *Normalizer) Normalize(raw RawDetection) Detection {
	det := Detection{
		BBox:  raw.Box,
		Score: DefaultScore,
		Label: raw.Label,
	}
	if raw.Score != nil {
		det.Score = *raw.Score
	}
	if det.Label == "" {
		det.Label = DefaultLabel
	}

	if !n.Segmentation || raw.Mask == nil {
		return det
	}

	contour, err := n.Tracer.Trace(raw.Mask)
	if err != nil {
		if n.Log != nil {
			n.Log.WithFields(logrus.Fields{
				"label": det.Label,
				"bbox":  det.BBox,
			}).WithError(err).Warn("Mask produced no polygon")
		}
		return det
	}

	det.Polygon = contour.Polygon
	return det
}

// NormalizeAll normalizes raws in order.
func (n *Normalizer) NormalizeAll(raws []RawDetection) []Detection {
	out := make([]Detection, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Normalize(raw))
	}
	return out
}

package geojson

import (
	"sort"

	"github.com/ironsheep/stub-model-server/internal/detection"
)

// Feature type names.
const (
	TypeFeature           = "Feature"
	TypeFeatureCollection = "FeatureCollection"
	TypePoint             = "Point"
)

// Geometry is the feature geometry. Detections are not georeferenced, so it
// is always a Point at (0, 0).
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Properties carries the detection in image coordinates.
type Properties struct {
	// BoundsImcoords is [x_min, y_min, x_max, y_max] in pixels.
	BoundsImcoords [4]float64 `json:"bounds_imcoords"`

	// PolygonImcoords is the closed outline as [x, y] pairs. Omitted when the
	// detection has no polygon.
	PolygonImcoords [][2]float64 `json:"polygon_imcoords,omitempty"`

	DetectionScore float64            `json:"detection_score"`
	FeatureTypes   map[string]float64 `json:"feature_types"`
	ImageID        string             `json:"image_id"`
}

// Feature is one encoded detection.
type Feature struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// FeatureCollection is the response body of an inference call. Features keep
// the order in which detections were produced.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Detection converts the feature back into a detection. When several feature
// types are present the highest-scoring one becomes the label.
func (f Feature) Detection() detection.Detection {
	det := detection.Detection{
		BBox:  f.Properties.BoundsImcoords,
		Score: f.Properties.DetectionScore,
	}

	labels := make([]string, 0, len(f.Properties.FeatureTypes))
	for label := range f.Properties.FeatureTypes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if det.Label == "" || f.Properties.FeatureTypes[label] > f.Properties.FeatureTypes[det.Label] {
			det.Label = label
		}
	}

	if len(f.Properties.PolygonImcoords) > 0 {
		det.Polygon = make(detection.Polygon, len(f.Properties.PolygonImcoords))
		for i, p := range f.Properties.PolygonImcoords {
			det.Polygon[i] = detection.Point{X: p[0], Y: p[1]}
		}
	}
	return det
}

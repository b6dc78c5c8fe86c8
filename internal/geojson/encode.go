package geojson

import (
	"encoding/hex"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/stub-model-server/internal/detection"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewToken returns a version 4 UUID as 32 lowercase hex characters without
// dashes, 122 of its 128 bits random.
func NewToken() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Encoder converts detections into features.
//
// The zero value is ready to use and draws identifiers from NewToken.
type Encoder struct {
	// Tokens generates feature ids and default image ids. Nil means NewToken.
	Tokens func() string
}

func (e *Encoder) token() string {
	if e.Tokens != nil {
		return e.Tokens()
	}
	return NewToken()
}

// Encode converts one detection. An empty imageID gets a fresh token, so
// every feature of an unpinned request carries its own image id.
func (e *Encoder) Encode(det detection.Detection, imageID string) Feature {
	if imageID == "" {
		imageID = e.token()
	}

	f := Feature{
		Type: TypeFeature,
		ID:   e.token(),
		Geometry: Geometry{
			Type:        TypePoint,
			Coordinates: [2]float64{0, 0},
		},
		Properties: Properties{
			BoundsImcoords: det.BBox,
			DetectionScore: det.Score,
			FeatureTypes:   map[string]float64{det.Label: det.Score},
			ImageID:        imageID,
		},
	}
	if len(det.Polygon) > 0 {
		f.Properties.PolygonImcoords = det.Polygon.Pairs()
	}
	return f
}

// EncodeAll converts dets in order. The result always has a non-nil feature
// list so it serializes as [] when there are no detections.
func (e *Encoder) EncodeAll(dets []detection.Detection, imageID string) FeatureCollection {
	fc := FeatureCollection{
		Type:     TypeFeatureCollection,
		Features: make([]Feature, 0, len(dets)),
	}
	for _, det := range dets {
		fc.Features = append(fc.Features, e.Encode(det, imageID))
	}
	return fc
}

// Marshal serializes a feature collection.
func Marshal(fc FeatureCollection) ([]byte, error) {
	return json.Marshal(fc)
}

// Unmarshal parses a feature collection.
func Unmarshal(data []byte) (FeatureCollection, error) {
	var fc FeatureCollection
	err := json.Unmarshal(data, &fc)
	return fc, err
}

package models

import (
	"context"
	"math"

	"github.com/ironsheep/stub-model-server/internal/detection"
	"github.com/ironsheep/stub-model-server/internal/imaging"
)

// DefaultFloodVolume is the number of detections generated per request.
const DefaultFloodVolume = 500

// FloodGenerator emits Volume randomly placed fixed-size detections, for
// load-testing downstream consumers.
//
// Each box is 2·ceil(dim·BBoxPercentage) wide in each dimension with its
// centre drawn uniformly from [size, dim-size), so it never crosses the
// raster edge. Scores are drawn independently from Rand.Float64. When the
// raster is too small for that range the box is centred and clipped to the
// raster.
type FloodGenerator struct {
	Volume         int
	BBoxPercentage float64
	NumVertices    int
	Segmentation   bool

	// Rand is the random source; nil uses GlobalSource.
	Rand Source
}

// Name implements Model.
func (g *FloodGenerator) Name() string { return NameFlood }

// Generate returns Volume detections for a width×height raster.
func (g *FloodGenerator) Generate(width, height int) []detection.Detection {
	src := g.Rand
	if src == nil {
		src = GlobalSource()
	}

	sizeX := int(math.Ceil(float64(width) * g.BBoxPercentage))
	sizeY := int(math.Ceil(float64(height) * g.BBoxPercentage))

	dets := make([]detection.Detection, 0, max(g.Volume, 0))
	for i := 0; i < g.Volume; i++ {
		x0, x1 := floodSpan(src, width, sizeX)
		y0, y1 := floodSpan(src, height, sizeY)

		det := detection.Detection{
			BBox:  detection.BoundingBox{x0, y0, x1, y1},
			Score: src.Float64(),
			Label: detection.DefaultLabel,
		}
		if g.Segmentation {
			det.Polygon = regularPolygon(det.BBox, g.NumVertices)
		}
		dets = append(dets, det)
	}
	return dets
}

// floodSpan places a span of half-width size inside [0, dim].
func floodSpan(src Source, dim, size int) (float64, float64) {
	if span := dim - 2*size; span > 0 {
		c := size + src.Intn(span)
		return float64(c - size), float64(c + size)
	}
	c := dim / 2
	return float64(max(c-size, 0)), float64(min(c+size, dim))
}

// Detect implements Model.
func (g *FloodGenerator) Detect(_ context.Context, r *imaging.Raster) ([]detection.Detection, error) {
	return g.Generate(r.Width, r.Height), nil
}

package models

import (
	"context"

	"github.com/ironsheep/stub-model-server/internal/detection"
	"github.com/ironsheep/stub-model-server/internal/imaging"
)

// CenterpointGenerator emits a single detection centred on the raster.
//
// The box extends BBoxPercentage of each dimension either side of the centre,
// so a 1000×800 raster at 0.1 yields [400, 320, 600, 480]. Output depends
// only on the raster dimensions and the generator's fields.
type CenterpointGenerator struct {
	BBoxPercentage float64

	// NumVertices is the vertex count of the outline; values < 3 use
	// DefaultVertices.
	NumVertices int

	// Segmentation adds a regular polygon outline inscribed in the box.
	Segmentation bool
}

// Name implements Model.
func (g *CenterpointGenerator) Name() string { return NameCenterpoint }

// Generate returns the centred detection for a width×height raster.
func (g *CenterpointGenerator) Generate(width, height int) []detection.Detection {
	cx, cy := float64(width)/2, float64(height)/2
	dx, dy := float64(width)*g.BBoxPercentage, float64(height)*g.BBoxPercentage

	det := detection.Detection{
		BBox:  detection.BoundingBox{cx - dx, cy - dy, cx + dx, cy + dy},
		Score: detection.DefaultScore,
		Label: detection.DefaultLabel,
	}
	if g.Segmentation {
		det.Polygon = regularPolygon(det.BBox, g.NumVertices)
	}
	return []detection.Detection{det}
}

// Detect implements Model.
func (g *CenterpointGenerator) Detect(_ context.Context, r *imaging.Raster) ([]detection.Detection, error) {
	return g.Generate(r.Width, r.Height), nil
}

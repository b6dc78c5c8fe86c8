package models

import (
	"math"

	"github.com/ironsheep/stub-model-server/internal/detection"
)

// DefaultVertices is the vertex count of generated outlines (a hexagon).
const DefaultVertices = 6

// regularPolygon returns a closed n-gon inscribed in box.
//
// Vertex k sits at angle 2πk/n + π/2 on the unit circle. Unit coordinates are
// mapped into [0,1]² via (v+1)/2, scaled by the box size and offset by the box
// origin, so the outline is centred on the box. The result depends only on
// its inputs.
func regularPolygon(box detection.BoundingBox, n int) detection.Polygon {
	if n < 3 {
		n = DefaultVertices
	}

	w, h := box.Width(), box.Height()
	poly := make(detection.Polygon, 0, n+1)
	for k := 0; k < n; k++ {
		theta := 2*math.Pi*float64(k)/float64(n) + math.Pi/2
		u := (math.Cos(theta) + 1) / 2
		v := (math.Sin(theta) + 1) / 2
		poly = append(poly, detection.Point{
			X: box[0] + u*w,
			Y: box[1] + v*h,
		})
	}
	return append(poly, poly[0])
}

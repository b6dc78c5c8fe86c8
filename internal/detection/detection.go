package detection

// DefaultLabel is the class label assigned when a detector reports none.
const DefaultLabel = "sample_object"

// DefaultScore is the confidence assigned when a detector reports none.
const DefaultScore = 1.0

// BoundingBox is an axis-aligned box in pixel coordinates laid out as
// [x_min, y_min, x_max, y_max].
type BoundingBox [4]float64

// Width returns x_max - x_min.
func (b BoundingBox) Width() float64 { return b[2] - b[0] }

// Height returns y_max - y_min.
func (b BoundingBox) Height() float64 { return b[3] - b[1] }

// Within reports whether the box lies inside [0,width]×[0,height].
func (b BoundingBox) Within(width, height float64) bool {
	return b[0] >= 0 && b[1] >= 0 && b[2] <= width && b[3] <= height &&
		b[0] <= b[2] && b[1] <= b[3]
}

// Point is a 2D coordinate in pixel space.
type Point struct {
	X float64 `json:"x"` // Horizontal position (0 = leftmost)
	Y float64 `json:"y"` // Vertical position (0 = topmost)
}

// Polygon is an ordered ring of pixel coordinates. Polygons produced by this
// package are closed (first point == last point) and have at least four
// points.
type Polygon []Point

// Closed reports whether the ring is closed and has at least 3 distinct
// vertices plus the closing repeat.
func (p Polygon) Closed() bool {
	return len(p) >= 4 && p[0] == p[len(p)-1]
}

// Pairs returns the ring as [x, y] pairs, the layout used by the feature
// encoding.
func (p Polygon) Pairs() [][2]float64 {
	out := make([][2]float64, len(p))
	for i, pt := range p {
		out[i] = [2]float64{pt.X, pt.Y}
	}
	return out
}

// close appends the first vertex if the ring is not already closed.
func (p Polygon) close() Polygon {
	if len(p) == 0 || p[0] == p[len(p)-1] {
		return p
	}
	return append(p, p[0])
}

// Detection is one detected object in canonical form.
//
// A nil Polygon means the detection carries no outline; encoders omit the
// polygon field entirely in that case.
type Detection struct {
	// BBox is the bounding box in pixel coordinates.
	BBox BoundingBox

	// Score is the confidence in [0,1].
	Score float64

	// Label is the class label.
	Label string

	// Polygon is the optional closed outline in pixel coordinates.
	Polygon Polygon
}

// RawDetection is detector output before normalization. Zero-valued optional
// fields are replaced by defaults.
type RawDetection struct {
	// Box is [x_min, y_min, x_max, y_max].
	Box BoundingBox

	// Score is nil when the detector reports no confidence.
	Score *float64

	// Label is empty when the detector reports no class.
	Label string

	// Mask is the optional instance mask; nil means none.
	Mask *Mask
}

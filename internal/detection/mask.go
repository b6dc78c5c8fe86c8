package detection

import (
	"image"

	"github.com/anthonynsimon/bild/segment"
)

// ForegroundThreshold is the value a mask sample must exceed to count as
// foreground.
const ForegroundThreshold = 0.5

// Mask is a single-channel instance mask.
//
// Values are row-major. Origin places the mask's (0,0) sample in raster
// coordinates, so box-local masks trace into full-raster polygons; a
// full-raster mask has the zero Origin.
type Mask struct {
	Width  int
	Height int
	Origin image.Point
	Values []float32
}

// NewMask allocates an empty width×height mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Values: make([]float32, width*height),
	}
}

// Set stores v at (x, y). Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v float32) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Values[y*m.Width+x] = v
}

// At returns the sample at (x, y), or 0 outside the mask.
func (m *Mask) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Values[y*m.Width+x]
}

// FillRect sets every sample in r (mask coordinates) to v.
func (m *Mask) FillRect(r image.Rectangle, v float32) {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Values[y*m.Width+x] = v
		}
	}
}

// binary thresholds the mask into a row-major foreground grid.
func (m *Mask) binary() []bool {
	fg := make([]bool, len(m.Values))
	for i, v := range m.Values {
		fg[i] = v > ForegroundThreshold
	}
	return fg
}

// MaskFromImage converts a mask image into a Mask. Pixels whose luminance is
// at least level become 1, all others 0. Detectors that return masks as
// grayscale PNGs use level 128. Fully transparent pixels count as foreground,
// so alpha-only masks must be flattened onto black first.
func MaskFromImage(img image.Image, level uint8, origin image.Point) *Mask {
	gray := segment.Threshold(img, level)
	b := gray.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	m.Origin = origin
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x] != 0 {
				m.Values[y*m.Width+x] = 1
			}
		}
	}
	return m
}

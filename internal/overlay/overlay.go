// Package overlay draws detections onto their source tile for visual checks.
package overlay

import (
	"hash/fnv"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"

	"github.com/ironsheep/stub-model-server/internal/detection"
)

// Options controls rendering.
type Options struct {
	// LineWidth is the box outline width in pixels. Zero means 2.
	LineWidth float32

	// FillAlpha is the opacity of polygon fills. Zero means 96.
	FillAlpha uint8
}

// LabelColor returns the colour used for label. Each label hashes to a fixed
// hue, so the same class always has the same colour.
func LabelColor(label string) colorful.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	return colorful.Hsv(float64(h.Sum32()%360), 0.9, 0.95)
}

// Render returns a copy of img with every detection's polygon filled and its
// bounding box outlined in the label's colour.
func Render(img image.Image, dets []detection.Detection, opts Options) *image.NRGBA {
	if opts.LineWidth <= 0 {
		opts.LineWidth = 2
	}
	if opts.FillAlpha == 0 {
		opts.FillAlpha = 96
	}

	dst := imaging.Clone(img)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	z := vector.NewRasterizer(w, h)

	for _, det := range dets {
		r, g, b := LabelColor(det.Label).RGB255()

		if len(det.Polygon) >= 3 {
			z.Reset(w, h)
			z.MoveTo(float32(det.Polygon[0].X), float32(det.Polygon[0].Y))
			for _, p := range det.Polygon[1:] {
				z.LineTo(float32(p.X), float32(p.Y))
			}
			z.ClosePath()
			fill := image.NewUniform(color.NRGBA{R: r, G: g, B: b, A: opts.FillAlpha})
			z.Draw(dst, dst.Bounds(), fill, image.Point{})
		}

		z.Reset(w, h)
		outline(z, det.BBox, opts.LineWidth)
		stroke := image.NewUniform(color.NRGBA{R: r, G: g, B: b, A: 255})
		z.Draw(dst, dst.Bounds(), stroke, image.Point{})
	}

	return dst
}

// outline adds the four edges of box to z as filled rectangles centred on the
// box edges.
func outline(z *vector.Rasterizer, box detection.BoundingBox, width float32) {
	x0, y0, x1, y1 := float32(box[0]), float32(box[1]), float32(box[2]), float32(box[3])
	half := width / 2

	rect(z, x0-half, y0-half, x1+half, y0+half) // top
	rect(z, x0-half, y1-half, x1+half, y1+half) // bottom
	rect(z, x0-half, y0+half, x0+half, y1-half) // left
	rect(z, x1-half, y0+half, x1+half, y1-half) // right
}

func rect(z *vector.Rasterizer, x0, y0, x1, y1 float32) {
	if x1 <= x0 || y1 <= y0 {
		return
	}
	z.MoveTo(x0, y0)
	z.LineTo(x1, y0)
	z.LineTo(x1, y1)
	z.LineTo(x0, y1)
	z.ClosePath()
}

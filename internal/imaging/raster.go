package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Raster is the canonical in-memory form of a decoded image tile.
//
// Pixels are stored row-major with channels interleaved, so the sample for
// channel c of pixel (x, y) lives at Pixels[(y*Width+x)*Channels+c]. A Raster
// built by this package always has Channels == 3 and
// len(Pixels) == Width*Height*Channels. Rasters are never modified after
// construction.
type Raster struct {
	// Width is the raster width in pixels.
	Width int

	// Height is the raster height in pixels.
	Height int

	// Channels is the number of interleaved samples per pixel.
	Channels int

	// Pixels holds the 8-bit samples.
	Pixels []byte
}

// Bounds returns the raster extent as an image rectangle anchored at (0,0).
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// At returns the samples of pixel (x, y). The returned slice aliases the raster
// and must not be modified.
func (r *Raster) At(x, y int) []byte {
	i := (y*r.Width + x) * r.Channels
	return r.Pixels[i : i+r.Channels]
}

// Image converts the raster into an opaque *image.NRGBA, which is the form the
// rest of the imaging stack (encoders, overlays) consumes.
func (r *Raster) Image() *image.NRGBA {
	img := imaging.New(r.Width, r.Height, color.Black)
	for i, j := 0, 0; i < len(r.Pixels); i, j = i+r.Channels, j+4 {
		img.Pix[j] = r.Pixels[i]
		img.Pix[j+1] = r.Pixels[i+1]
		img.Pix[j+2] = r.Pixels[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// AllBelow reports whether every sample in the raster is <= threshold. With a
// threshold of zero this detects a completely black (all-zero) tile.
func (r *Raster) AllBelow(threshold uint8) bool {
	for _, v := range r.Pixels {
		if v > threshold {
			return false
		}
	}
	return true
}

// FromImage builds a Raster from a decoded image, applying the channel
// normalization policy.
//
// The number of source channels is derived from the concrete image type:
//   - *image.Gray, *image.Gray16: 1 channel (replicated to 3)
//   - *image.YCbCr, *image.CMYK: 3 channels (passed through as RGB)
//   - everything else (RGBA, NRGBA, Paletted, 16-bit variants): 4 channels
//     (alpha dropped)
//
// 16-bit sources keep the high byte of each sample. Colour conversion of
// non-gray sources goes through imaging.Clone, which yields non-premultiplied
// 8-bit RGBA so dropping alpha leaves the original colour values intact.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		samples := make([]byte, 0, w*h)
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			samples = append(samples, src.Pix[off:off+w]...)
		}
		return &Raster{Width: w, Height: h, Channels: 3, Pixels: normalizeChannels(samples, w*h, 1)}

	case *image.Gray16:
		samples := make([]byte, 0, w*h)
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				samples = append(samples, src.Pix[off+x*2]) // big-endian, high byte first
			}
		}
		return &Raster{Width: w, Height: h, Channels: 3, Pixels: normalizeChannels(samples, w*h, 1)}
	}

	nrgba := imaging.Clone(img)
	channels := sourceChannels(img)
	samples := make([]byte, 0, w*h*channels)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			samples = append(samples, row[x*4:x*4+channels]...)
		}
	}
	return &Raster{Width: w, Height: h, Channels: 3, Pixels: normalizeChannels(samples, w*h, channels)}
}

// FromSamples builds a Raster from floating point samples laid out row-major
// and channel-interleaved.
//
// A channels value of 0 denotes a 2-D array without a channel axis and is
// treated as a single channel. When every sample lies in [0,1] the values are
// scaled by 255 and truncated; otherwise samples are clamped to [0,255] and
// truncated. The result always has three channels.
func FromSamples(width, height, channels int, samples []float32) (*Raster, error) {
	if channels == 0 {
		channels = 1
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid raster size %dx%d", ErrDecode, width, height)
	}
	if channels != 1 && channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrDecode, channels)
	}
	if len(samples) != width*height*channels {
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrDecode, len(samples), width*height*channels)
	}

	unit := true
	for _, v := range samples {
		if v < 0 || v > 1 {
			unit = false
			break
		}
	}

	scaled := make([]byte, len(samples))
	for i, v := range samples {
		if unit {
			v *= 255
		}
		switch {
		case v <= 0:
			scaled[i] = 0
		case v >= 255:
			scaled[i] = 255
		default:
			scaled[i] = uint8(v)
		}
	}

	return &Raster{
		Width:    width,
		Height:   height,
		Channels: 3,
		Pixels:   normalizeChannels(scaled, width*height, channels),
	}, nil
}

// normalizeChannels converts n pixels of interleaved samples with the given
// channel count into three-channel RGB. Rules apply in order:
//
//  1. 4 channels: drop the 4th (alpha) channel
//  2. 1 channel: replicate to 3
//  3. otherwise (3 channels): pass through unchanged
//
// 2-D sources are mapped to one channel by the caller before reaching here.
func normalizeChannels(samples []byte, n, channels int) []byte {
	switch channels {
	case 4:
		out := make([]byte, n*3)
		for i := 0; i < n; i++ {
			copy(out[i*3:i*3+3], samples[i*4:i*4+3])
		}
		return out
	case 1:
		out := make([]byte, n*3)
		for i, v := range samples[:n] {
			out[i*3] = v
			out[i*3+1] = v
			out[i*3+2] = v
		}
		return out
	default:
		return samples
	}
}

// sourceChannels reports how many channels the decoder produced for img,
// before normalization.
func sourceChannels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr, *image.CMYK:
		return 3
	default:
		return 4
	}
}

package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

var (
	// ErrDecode is returned when a payload is empty or cannot be parsed as any
	// registered raster format. It is a client error.
	ErrDecode = errors.New("unable to decode raster")

	// ErrAllZeroRaster is returned when fault detection is enabled and every
	// sample of the decoded raster is zero (or below the fault threshold).
	ErrAllZeroRaster = errors.New("raster contains only zero samples")
)

// Decoder turns opaque image payloads into Rasters.
//
// The zero value decodes any registered format with fault detection off.
// A Decoder holds no per-request state and is safe for concurrent use.
type Decoder struct {
	// FaultDetection rejects rasters whose samples are all <= FaultThreshold
	// with ErrAllZeroRaster instead of returning them.
	FaultDetection bool

	// FaultThreshold is the largest sample value still treated as zero.
	FaultThreshold uint8

	// MaxPixels rejects payloads whose declared dimensions exceed this many
	// pixels before the full decode. Zero means unlimited.
	MaxPixels int

	// Log receives debug output. May be nil.
	Log logrus.FieldLogger
}

// Decode parses data into a three-channel Raster.
//
// Returns an error wrapping ErrDecode when data is empty or not a recognised
// image, and ErrAllZeroRaster when fault detection rejects the result.
func (d *Decoder) Decode(data []byte) (*Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	return d.DecodeReader(bytes.NewReader(data))
}

// DecodeReader stages the payload read from r in a pooled scratch buffer and
// decodes it. The scratch buffer is released on every return path.
func (d *Decoder) DecodeReader(r io.Reader) (*Raster, error) {
	buf := acquireScratch()
	defer releaseScratch(buf)

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: read payload: %v", ErrDecode, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	if d.MaxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(buf.B))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if cfg.Width*cfg.Height > d.MaxPixels {
			return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, d.MaxPixels)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(buf.B))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}

	raster := FromImage(img)
	d.debug(logrus.Fields{
		"format":          format,
		"width":           raster.Width,
		"height":          raster.Height,
		"source_channels": sourceChannels(img),
	}, "Decoded raster")

	if d.FaultDetection && raster.AllBelow(d.FaultThreshold) {
		return nil, ErrAllZeroRaster
	}

	return raster, nil
}

func (d *Decoder) debug(fields logrus.Fields, msg string) {
	if d.Log != nil {
		d.Log.WithFields(fields).Debug(msg)
	}
}

package models

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ironsheep/stub-model-server/internal/config"
	"github.com/ironsheep/stub-model-server/internal/geojson"
	"github.com/ironsheep/stub-model-server/internal/imaging"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		url      string
		wantName string
		wantErr  bool
	}{
		{"centerpoint", config.ModelCenterpoint, "", NameCenterpoint, false},
		{"flood", config.ModelFlood, "", NameFlood, false},
		{"aircraft", config.ModelAircraft, "http://localhost:5000/predict", NameAircraft, false},
		{"aircraft without url", config.ModelAircraft, "", "", true},
		{"unknown", "yolo", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.ModelName = tt.model
			cfg.InferenceURL = tt.url

			m, err := New(cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if m.Name() != tt.wantName {
				t.Errorf("name: got %q, want %q", m.Name(), tt.wantName)
			}
		})
	}
}

func pngPayload(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPipeline_Invoke(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := Pipeline{
		Model: &CenterpointGenerator{BBoxPercentage: 0.1, NumVertices: 6, Segmentation: true},
		Log:   logger,
	}

	fc, err := p.Invoke(context.Background(), pngPayload(t, 1000, 800, color.White), "tile-1")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("got %d features, want 1", len(fc.Features))
	}
	props := fc.Features[0].Properties
	if props.BoundsImcoords != [4]float64{400, 320, 600, 480} {
		t.Errorf("bounds: got %v", props.BoundsImcoords)
	}
	if len(props.PolygonImcoords) != 7 {
		t.Errorf("polygon: got %d points, want 7", len(props.PolygonImcoords))
	}
	if props.ImageID != "tile-1" {
		t.Errorf("image_id: got %q", props.ImageID)
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("unexpected log entries: %v", hook.AllEntries())
	}
}

func TestPipeline_Invoke_Errors(t *testing.T) {
	black := pngPayload(t, 8, 8, color.Black)

	t.Run("empty payload", func(t *testing.T) {
		p := Pipeline{Model: &CenterpointGenerator{BBoxPercentage: 0.1}}
		if _, err := p.Invoke(context.Background(), nil, ""); !errors.Is(err, imaging.ErrDecode) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("all-zero raster with fault detection", func(t *testing.T) {
		p := Pipeline{
			Decoder: imaging.Decoder{FaultDetection: true},
			Model:   &CenterpointGenerator{BBoxPercentage: 0.1},
		}
		fc, err := p.Invoke(context.Background(), black, "")
		if !errors.Is(err, imaging.ErrAllZeroRaster) {
			t.Fatalf("expected ErrAllZeroRaster, got %v", err)
		}
		if len(fc.Features) != 0 {
			t.Error("expected no features on failure")
		}
	})

	t.Run("all-zero raster without fault detection", func(t *testing.T) {
		p := Pipeline{Model: &CenterpointGenerator{BBoxPercentage: 0.1}}
		fc, err := p.Invoke(context.Background(), black, "")
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if len(fc.Features) != 1 {
			t.Errorf("got %d features, want 1", len(fc.Features))
		}
	})
}

func TestPipeline_SegmentationRoundTrip(t *testing.T) {
	payload := pngPayload(t, 100, 100, color.White)

	for _, seg := range []bool{false, true} {
		p := Pipeline{Model: &CenterpointGenerator{BBoxPercentage: 0.1, NumVertices: 6, Segmentation: seg}}
		fc, err := p.Invoke(context.Background(), payload, "")
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		data, err := geojson.Marshal(fc)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		has := bytes.Contains(data, []byte(`"polygon_imcoords"`))
		if has != seg {
			t.Errorf("segmentation=%v: polygon_imcoords present=%v", seg, has)
		}
	}
}

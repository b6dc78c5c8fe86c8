package detection

import (
	"image"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func squareMask() *Mask {
	m := NewMask(8, 8)
	m.FillRect(image.Rect(2, 2, 6, 6), 1)
	return m
}

func TestNormalizer_Normalize_Defaults(t *testing.T) {
	score := 0.42
	tests := []struct {
		name      string
		raw       RawDetection
		wantScore float64
		wantLabel string
	}{
		{"all defaults", RawDetection{Box: BoundingBox{1, 2, 3, 4}}, DefaultScore, DefaultLabel},
		{"explicit score", RawDetection{Score: &score}, 0.42, DefaultLabel},
		{"explicit label", RawDetection{Label: "airplane"}, DefaultScore, "airplane"},
	}

	var n Normalizer
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := n.Normalize(tt.raw)
			if det.Score != tt.wantScore {
				t.Errorf("score: got %v, want %v", det.Score, tt.wantScore)
			}
			if det.Label != tt.wantLabel {
				t.Errorf("label: got %q, want %q", det.Label, tt.wantLabel)
			}
			if det.BBox != tt.raw.Box {
				t.Errorf("bbox: got %v, want %v", det.BBox, tt.raw.Box)
			}
			if det.Polygon != nil {
				t.Errorf("expected no polygon, got %v", det.Polygon)
			}
		})
	}
}

func TestNormalizer_Normalize_Segmentation(t *testing.T) {
	raw := RawDetection{Box: BoundingBox{2, 2, 6, 6}, Mask: squareMask()}

	t.Run("disabled suppresses polygon", func(t *testing.T) {
		n := Normalizer{Segmentation: false}
		if det := n.Normalize(raw); det.Polygon != nil {
			t.Errorf("expected no polygon, got %v", det.Polygon)
		}
	})

	t.Run("enabled traces mask", func(t *testing.T) {
		n := Normalizer{Segmentation: true}
		det := n.Normalize(raw)
		if !det.Polygon.Closed() {
			t.Fatalf("expected closed polygon, got %v", det.Polygon)
		}
		if det.Polygon[0] != (Point{X: 2, Y: 2}) {
			t.Errorf("first vertex: got %v, want {2 2}", det.Polygon[0])
		}
	})

	t.Run("enabled without mask", func(t *testing.T) {
		n := Normalizer{Segmentation: true}
		if det := n.Normalize(RawDetection{}); det.Polygon != nil {
			t.Errorf("expected no polygon, got %v", det.Polygon)
		}
	})

	t.Run("empty mask logs and drops polygon", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		n := Normalizer{Segmentation: true, Log: logger}

		det := n.Normalize(RawDetection{Mask: NewMask(4, 4)})
		if det.Polygon != nil {
			t.Errorf("expected no polygon, got %v", det.Polygon)
		}
		if got := countWarnings(hook); got != 1 {
			t.Errorf("warnings: got %d, want 1", got)
		}
	})
}

func TestNormalizer_NormalizeAll(t *testing.T) {
	raws := []RawDetection{
		{Label: "a"},
		{Label: "b", Mask: squareMask()},
		{Label: "c"},
	}

	n := Normalizer{Segmentation: true}
	dets := n.NormalizeAll(raws)
	if len(dets) != 3 {
		t.Fatalf("got %d detections, want 3", len(dets))
	}
	for i, want := range []string{"a", "b", "c"} {
		if dets[i].Label != want {
			t.Errorf("detection %d: got label %q, want %q", i, dets[i].Label, want)
		}
	}
	if dets[1].Polygon == nil || dets[0].Polygon != nil {
		t.Error("polygon should be set only for the masked detection")
	}

	if got := n.NormalizeAll(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

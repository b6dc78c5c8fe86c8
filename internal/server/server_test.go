package server

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ironsheep/stub-model-server/internal/config"
	"github.com/ironsheep/stub-model-server/internal/detection"
	"github.com/ironsheep/stub-model-server/internal/geojson"
	"github.com/ironsheep/stub-model-server/internal/imaging"
	"github.com/ironsheep/stub-model-server/internal/models"
)

// panicModel fails every detection with a panic.
type panicModel struct{}

func (panicModel) Name() string { return "panic" }

func (panicModel) Detect(context.Context, *imaging.Raster) ([]detection.Detection, error) {
	panic("model exploded")
}

func newTestServer(t *testing.T, cfg config.Config, model models.Model) (*Server, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	s, err := New(
		WithConfig(cfg),
		WithLogger(logger),
		WithPipeline(&models.Pipeline{
			Decoder: imaging.Decoder{
				FaultDetection: cfg.FaultDetection,
				FaultThreshold: uint8(cfg.FaultThreshold),
			},
			Model: model,
		}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, hook
}

func pngBody(t *testing.T, width, height int, c color.Color) []byte {
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

func do(t *testing.T, s *Server, req *http.Request) (int, string, http.Header) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, string(body), resp.Header
}

func centerpoint() models.Model {
	return &models.CenterpointGenerator{BBoxPercentage: 0.1, NumVertices: 6}
}

func TestNew_RequiresDependencies(t *testing.T) {
	logger, _ := test.NewNullLogger()

	if _, err := New(WithPipeline(&models.Pipeline{Model: centerpoint()})); err == nil {
		t.Error("expected error without logger")
	}
	if _, err := New(WithLogger(logger)); err == nil {
		t.Error("expected error without pipeline")
	}
	if _, err := New(WithLogger(logger), WithPipeline(&models.Pipeline{})); err == nil {
		t.Error("expected error without model")
	}
}

func TestPing(t *testing.T) {
	s, _ := newTestServer(t, config.Default(), centerpoint())

	status, body, header := do(t, s, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if status != http.StatusOK || body != "\n" {
		t.Errorf("got %d %q, want 200 %q", status, body, "\n")
	}
	if header.Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestInvocations(t *testing.T) {
	s, _ := newTestServer(t, config.Default(), centerpoint())

	req := httptest.NewRequest(http.MethodPost, "/invocations?image_id=tile-9", bytes.NewReader(pngBody(t, 1000, 800, color.White)))
	status, body, header := do(t, s, req)
	if status != http.StatusOK {
		t.Fatalf("status: got %d, body %q", status, body)
	}
	if ct := header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	fc, err := geojson.Unmarshal([]byte(body))
	if err != nil {
		t.Fatalf("response is not a feature collection: %v", err)
	}
	if fc.Type != geojson.TypeFeatureCollection || len(fc.Features) != 1 {
		t.Fatalf("got %+v", fc)
	}
	props := fc.Features[0].Properties
	if props.BoundsImcoords != [4]float64{400, 320, 600, 480} {
		t.Errorf("bounds: got %v", props.BoundsImcoords)
	}
	if props.ImageID != "tile-9" {
		t.Errorf("image_id: got %q", props.ImageID)
	}
}

func TestInvocations_Errors(t *testing.T) {
	faultCfg := config.Default()
	faultCfg.FaultDetection = true

	fault500 := faultCfg
	fault500.FaultResponseStatus = http.StatusInternalServerError

	black := pngBody(t, 8, 8, color.Black)

	tests := []struct {
		name       string
		cfg        config.Config
		model      models.Model
		body       []byte
		wantStatus int
		wantBody   string
	}{
		{"empty body", config.Default(), centerpoint(), nil, http.StatusBadRequest, MsgDecodeError},
		{"garbage body", config.Default(), centerpoint(), []byte("not an image"), http.StatusBadRequest, MsgDecodeError},
		{"all-zero with fault detection", faultCfg, centerpoint(), black, http.StatusBadRequest, MsgAllZeroRaster},
		{"all-zero with fault status 500", fault500, centerpoint(), black, http.StatusInternalServerError, MsgAllZeroRaster},
		{"model panic", config.Default(), panicModel{}, pngBody(t, 4, 4, color.White), http.StatusInternalServerError, MsgInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, hook := newTestServer(t, tt.cfg, tt.model)

			req := httptest.NewRequest(http.MethodPost, "/invocations", bytes.NewReader(tt.body))
			status, body, _ := do(t, s, req)
			if status != tt.wantStatus || body != tt.wantBody {
				t.Errorf("got %d %q, want %d %q", status, body, tt.wantStatus, tt.wantBody)
			}

			last := hook.LastEntry()
			if last == nil || last.Data["status"] != tt.wantStatus {
				t.Errorf("access log entry missing or wrong: %+v", last)
			}
		})
	}
}

func TestInvocations_AllZeroAcceptedWithoutFaultDetection(t *testing.T) {
	s, _ := newTestServer(t, config.Default(), centerpoint())

	req := httptest.NewRequest(http.MethodPost, "/invocations", bytes.NewReader(pngBody(t, 8, 8, color.Black)))
	if status, body, _ := do(t, s, req); status != http.StatusOK {
		t.Errorf("got %d %q, want 200", status, body)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	s, hook := newTestServer(t, config.Default(), centerpoint())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "client-42")
	_, _, header := do(t, s, req)

	if got := header.Get(RequestIDHeader); got != "client-42" {
		t.Errorf("request id: got %q, want client-42", got)
	}
	if last := hook.LastEntry(); last == nil || last.Data["request_id"] != "client-42" {
		t.Errorf("access log request_id: got %+v", last)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	s, _ := newTestServer(t, cfg, centerpoint())

	payload := pngBody(t, 4, 4, color.White)
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/invocations", bytes.NewReader(payload))
		status, _, _ := do(t, s, req)
		return status
	}

	if got := send(); got != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", got)
	}
	if got := send(); got != http.StatusTooManyRequests {
		t.Errorf("second request: got %d, want 429", got)
	}

	// /ping is never limited
	if status, _, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/ping", nil)); status != http.StatusOK {
		t.Errorf("ping: got %d, want 200", status)
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, config.Default(), centerpoint())

	status, _, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if status != http.StatusNotFound {
		t.Errorf("got %d, want 404", status)
	}
}

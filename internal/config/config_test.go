package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"MODEL_NAME", "PORT", "VERBOSE", "LOG_FILE",
	"BBOX_PERCENTAGE", "NUM_VERTICES", "FLOOD_VOLUME", "ENABLE_SEGMENTATION", "SIMPLIFY_TOLERANCE",
	"FAULT_DETECTION", "FAULT_THRESHOLD", "FAULT_RESPONSE_STATUS",
	"MAX_PIXELS", "BODY_LIMIT_MB", "RATE_LIMIT", "RATE_BURST",
	"INFERENCE_URL", "INFERENCE_TIMEOUT",
}

// clearEnv unsets every configuration variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want %+v", cfg, Default())
	}
	if cfg.FloodVolume != 500 || cfg.NumVertices != 6 || cfg.BBoxPercentage != 0.1 {
		t.Errorf("unexpected model defaults: %+v", cfg)
	}
	if cfg.Addr() != ":8080" || cfg.BodyLimit() != 100<<20 {
		t.Errorf("got addr %q body limit %d", cfg.Addr(), cfg.BodyLimit())
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_NAME", "Flood")
	t.Setenv("PORT", "9090")
	t.Setenv("ENABLE_SEGMENTATION", "true")
	t.Setenv("FAULT_DETECTION", "1")
	t.Setenv("FAULT_RESPONSE_STATUS", "500")
	t.Setenv("BBOX_PERCENTAGE", "0.25")
	t.Setenv("FLOOD_VOLUME", "12")
	t.Setenv("INFERENCE_TIMEOUT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ModelName != ModelFlood || cfg.Port != 9090 {
		t.Errorf("got model %q port %d", cfg.ModelName, cfg.Port)
	}
	if !cfg.EnableSegmentation || !cfg.FaultDetection || cfg.FaultResponseStatus != 500 {
		t.Errorf("toggles not applied: %+v", cfg)
	}
	if cfg.BBoxPercentage != 0.25 || cfg.FloodVolume != 12 {
		t.Errorf("got pct %v volume %d", cfg.BBoxPercentage, cfg.FloodVolume)
	}
	if cfg.InferenceTimeout != 5*time.Second {
		t.Errorf("timeout: got %v, want 5s", cfg.InferenceTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown model", map[string]string{"MODEL_NAME": "yolo"}},
		{"bad integer", map[string]string{"PORT": "http"}},
		{"bad bool", map[string]string{"VERBOSE": "maybe"}},
		{"percentage too large", map[string]string{"BBOX_PERCENTAGE": "0.75"}},
		{"percentage zero", map[string]string{"BBOX_PERCENTAGE": "0"}},
		{"too few vertices", map[string]string{"NUM_VERTICES": "2"}},
		{"unsupported fault status", map[string]string{"FAULT_RESPONSE_STATUS": "418"}},
		{"threshold out of range", map[string]string{"FAULT_THRESHOLD": "256"}},
		{"aircraft without url", map[string]string{"MODEL_NAME": "aircraft"}},
		{"malformed url", map[string]string{"INFERENCE_URL": "not a url"}},
		{"bad duration", map[string]string{"INFERENCE_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "MODEL_NAME=aircraft\nINFERENCE_URL=http://localhost:5000/predict\nPORT=1234\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ModelName != ModelAircraft || cfg.InferenceURL != "http://localhost:5000/predict" {
		t.Errorf("env file not applied: %+v", cfg)
	}
	if cfg.Port != 7000 {
		t.Errorf("environment must win over env file: got port %d", cfg.Port)
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Model names accepted by MODEL_NAME.
const (
	ModelCenterpoint = "centerpoint"
	ModelFlood       = "flood"
	ModelAircraft    = "aircraft"
)

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the process-wide configuration, built once at start-up and passed
// by value into the components that need it.
type Config struct {
	ModelName string `validate:"oneof=centerpoint flood aircraft"`
	Port      int    `validate:"gt=0,lte=65535"`
	Verbose   bool
	LogFile   string

	BBoxPercentage     float64 `validate:"gt=0,lte=0.5"`
	NumVertices        int     `validate:"gte=3"`
	FloodVolume        int     `validate:"gte=0"`
	EnableSegmentation bool
	SimplifyTolerance  float64 `validate:"gte=0"`

	FaultDetection      bool
	FaultThreshold      int `validate:"gte=0,lte=255"`
	FaultResponseStatus int `validate:"oneof=400 500"`

	MaxPixels   int     `validate:"gte=0"`
	BodyLimitMB int     `validate:"gt=0"`
	RateLimit   float64 `validate:"gte=0"`
	RateBurst   int     `validate:"gte=0"`

	InferenceURL     string        `validate:"omitempty,url"`
	InferenceTimeout time.Duration `validate:"gt=0"`
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		ModelName:           ModelCenterpoint,
		Port:                8080,
		BBoxPercentage:      0.1,
		NumVertices:         6,
		FloodVolume:         500,
		FaultResponseStatus: 400,
		BodyLimitMB:         100,
		RateBurst:           20,
		InferenceTimeout:    30 * time.Second,
	}
}

// Load reads the configuration from the environment. Each env file that
// exists is loaded first with godotenv; variables already set in the
// environment take precedence. Missing files are skipped.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: load %s: %v", ErrInvalid, file, err)
		}
	}

	cfg := Default()
	p := parser{}

	cfg.ModelName = strings.ToLower(p.str("MODEL_NAME", cfg.ModelName))
	cfg.Port = p.integer("PORT", cfg.Port)
	cfg.Verbose = p.boolean("VERBOSE", cfg.Verbose)
	cfg.LogFile = p.str("LOG_FILE", cfg.LogFile)

	cfg.BBoxPercentage = p.number("BBOX_PERCENTAGE", cfg.BBoxPercentage)
	cfg.NumVertices = p.integer("NUM_VERTICES", cfg.NumVertices)
	cfg.FloodVolume = p.integer("FLOOD_VOLUME", cfg.FloodVolume)
	cfg.EnableSegmentation = p.boolean("ENABLE_SEGMENTATION", cfg.EnableSegmentation)
	cfg.SimplifyTolerance = p.number("SIMPLIFY_TOLERANCE", cfg.SimplifyTolerance)

	cfg.FaultDetection = p.boolean("FAULT_DETECTION", cfg.FaultDetection)
	cfg.FaultThreshold = p.integer("FAULT_THRESHOLD", cfg.FaultThreshold)
	cfg.FaultResponseStatus = p.integer("FAULT_RESPONSE_STATUS", cfg.FaultResponseStatus)

	cfg.MaxPixels = p.integer("MAX_PIXELS", cfg.MaxPixels)
	cfg.BodyLimitMB = p.integer("BODY_LIMIT_MB", cfg.BodyLimitMB)
	cfg.RateLimit = p.number("RATE_LIMIT", cfg.RateLimit)
	cfg.RateBurst = p.integer("RATE_BURST", cfg.RateBurst)

	cfg.InferenceURL = p.str("INFERENCE_URL", cfg.InferenceURL)
	cfg.InferenceTimeout = p.duration("INFERENCE_TIMEOUT", cfg.InferenceTimeout)

	if len(p.errs) > 0 {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, errors.Join(p.errs...))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field ranges and cross-field requirements.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.ModelName == ModelAircraft && c.InferenceURL == "" {
		return fmt.Errorf("%w: INFERENCE_URL is required for model %q", ErrInvalid, ModelAircraft)
	}
	return nil
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	return c.BodyLimitMB << 20
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// parser reads typed values from the environment, collecting conversion
// errors instead of stopping at the first one.
type parser struct {
	errs []error
}

func (p *parser) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %v", key, value, err))
}

func (p *parser) str(key, def string) string {
	if v, ok := p.lookup(key); ok {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) number(key string, def float64) float64 {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return f
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

// duration accepts Go duration strings ("45s", "2m") or a plain number of
// seconds.
func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	if secs, err := cast.ToFloat64E(v); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

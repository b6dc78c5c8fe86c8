package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/stub-model-server/internal/config"
	"github.com/ironsheep/stub-model-server/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Option configures a Server.
type Option func(*Server) error

// Server is the HTTP shell around a model pipeline.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	log      *logrus.Logger
	pipeline *models.Pipeline
	limiter  *rateLimiter
}

// New builds a server. WithLogger and WithPipeline are required; the
// configuration defaults to config.Default.
func New(options ...Option) (*Server, error) {
	s := &Server{cfg: config.Default()}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if s.log == nil {
		return nil, errors.New("logger is required")
	}
	if s.pipeline == nil || s.pipeline.Model == nil {
		return nil, errors.New("pipeline with a model is required")
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "stub-model-server",
		BodyLimit:             s.cfg.BodyLimit(),
		DisableStartupMessage: true,
		StrictRouting:         true,
		CaseSensitive:         true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()

	return s, nil
}

// WithConfig sets the process configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *Server) error {
		s.cfg = cfg
		if cfg.RateLimit > 0 {
			s.limiter = newRateLimiter(cfg.RateLimit, cfg.RateBurst)
		} else {
			s.limiter = nil
		}
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

// WithPipeline sets the pipeline serving /invocations.
func WithPipeline(p *models.Pipeline) Option {
	return func(s *Server) error {
		s.pipeline = p
		return nil
	}
}

func (s *Server) routes() {
	s.app.Use(requestIDMiddleware())
	s.app.Use(s.accessLogMiddleware())
	s.app.Use(recover.New(recover.Config{EnableStackTrace: s.cfg.Verbose}))

	s.app.Get("/ping", s.handlePing)

	invocations := []fiber.Handler{s.handleInvocations}
	if s.limiter != nil {
		invocations = append([]fiber.Handler{s.rateLimitMiddleware()}, invocations...)
	}
	s.app.Post("/invocations", invocations...)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App { return s.app }

// Run listens on the configured port until Shutdown is called.
func (s *Server) Run() error {
	s.log.WithFields(logrus.Fields{
		"addr":  s.cfg.Addr(),
		"model": s.pipeline.Model.Name(),
	}).Info("Model server listening")

	return s.app.Listen(s.cfg.Addr())
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

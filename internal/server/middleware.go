package server

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware reuses the client's request id or assigns a new ULID.
func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Locals(RequestIDHeader, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	id, ok := c.Locals(RequestIDHeader).(string)
	if !ok || id == "" {
		return "unknown"
	}
	return id
}

// accessLogMiddleware logs one entry per request. 5xx responses log at error
// level, 4xx at warning level and everything else at info level; /ping logs
// at debug level.
func (s *Server) accessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// Write the error response now so the status below is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		status := c.Response().StatusCode()
		entry := s.log.WithFields(logrus.Fields{
			"request_id":    requestID(c),
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    time.Since(start).Milliseconds(),
			"ip":            c.IP(),
			"request_size":  len(c.Request().Body()),
			"response_size": len(c.Response().Body()),
		})

		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("Server error")
		case status >= fiber.StatusBadRequest:
			entry.Warn("Client error")
		case c.Path() == "/ping":
			entry.Debug("Health check")
		default:
			entry.Info("Success")
		}

		return err
	}
}

// Idle client buckets are dropped after limiterIdle; the sweep runs at most
// once per limiterSweep.
const (
	limiterIdle  = 10 * time.Minute
	limiterSweep = time.Minute
)

// rateLimiter hands out one token bucket per client IP.
type rateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

// allow takes one token from ip's bucket at now.
func (r *rateLimiter) allow(ip string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) >= limiterSweep {
		for key, b := range r.buckets {
			if now.Sub(b.seen) >= limiterIdle {
				delete(r.buckets, key)
			}
		}
		r.lastSweep = now
	}

	b, ok := r.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[ip] = b
	}
	b.seen = now
	return b.limiter.AllowN(now, 1)
}

func (s *Server) rateLimitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.limiter.allow(c.IP(), time.Now()) {
			return s.handleError(c, &statusError{
				Code: fiber.StatusTooManyRequests,
				Msg:  MsgTooManyReqs,
			}, "rate_limit")
		}
		return c.Next()
	}
}

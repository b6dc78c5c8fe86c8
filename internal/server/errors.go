package server

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/stub-model-server/internal/imaging"
)

// Response bodies for failed requests.
const (
	MsgDecodeError   = "Unable to parse image from request!"
	MsgAllZeroRaster = "Image contains no data."
	MsgInternalError = "Unable to process request."
	MsgTooManyReqs   = "Too many requests"
)

// statusError is an error that carries the HTTP status to answer with.
type statusError struct {
	Code int
	Msg  string
	Err  error
}

func (e *statusError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *statusError) Unwrap() error { return e.Err }

// classify maps a pipeline error onto the response it produces.
func (s *Server) classify(err error) *statusError {
	var se *statusError
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, imaging.ErrDecode):
		return &statusError{Code: http.StatusBadRequest, Msg: MsgDecodeError, Err: err}
	case errors.Is(err, imaging.ErrAllZeroRaster):
		return &statusError{Code: s.cfg.FaultResponseStatus, Msg: MsgAllZeroRaster, Err: err}
	default:
		return &statusError{Code: http.StatusInternalServerError, Msg: MsgInternalError, Err: err}
	}
}

// handleError logs err with request context and writes its response.
func (s *Server) handleError(c *fiber.Ctx, err error, operation string) error {
	se := s.classify(err)

	entry := s.log.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"error":      err.Error(),
		"code":       se.Code,
		"path":       c.Path(),
		"operation":  operation,
	})
	if se.Code >= http.StatusInternalServerError {
		entry.Error("Operation failed")
	} else {
		entry.Warn("Request rejected")
	}

	return c.Status(se.Code).SendString(se.Msg)
}

// errorHandler answers errors that escape the handlers: panics caught by the
// recover middleware, unknown routes and fiber's own errors.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).SendString(fe.Message)
	}
	return s.handleError(c, err, "unhandled")
}

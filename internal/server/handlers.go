package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// handlePing is the liveness check. It never inspects the model.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("\n")
}

// handleInvocations runs the pipeline on the raw request body.
func (s *Server) handleInvocations(c *fiber.Ctx) error {
	imageID := c.Query("image_id")

	s.log.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"model":      s.pipeline.Model.Name(),
		"bytes":      len(c.Body()),
		"image_id":   imageID,
	}).Debug("Invoking model")

	fc, err := s.pipeline.Invoke(c.UserContext(), c.Body(), imageID)
	if err != nil {
		return s.handleError(c, err, "invocations")
	}

	return c.Status(fiber.StatusOK).JSON(fc)
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geostore/internal/adapters/geojson"
	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/core/ewkb"
	"github.com/samirrijal/geostore/internal/core/ports"
	"github.com/samirrijal/geostore/internal/core/usecases"
	"github.com/samirrijal/geostore/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"` // bad_request, not_found, srid_mismatch, ...
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

func errUnprocessable(c *fiber.Ctx, code, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, code, msg)
}

func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// respondError maps service and codec errors onto API errors. Anything it
// does not recognise is logged and reported as a 500 without detail.
func respondError(c *fiber.Ctx, err error) error {
	var (
		sridErr  *ewkb.SRIDError
		pointErr *domain.PointConstructionError
	)
	switch {
	case errors.As(err, &sridErr):
		return errUnprocessable(c, "srid_mismatch", sridErr.Error())
	case errors.As(err, &pointErr):
		return errUnprocessable(c, "invalid_geometry", pointErr.Error())
	case errors.Is(err, usecases.ErrFeatureNotFound),
		errors.Is(err, ports.ErrNotFound),
		errors.Is(err, pgx.ErrNoRows):
		return errNotFound(c, "feature not found")
	case errors.Is(err, usecases.ErrInvalidFeature):
		return errBadRequest(c, err.Error())
	case errors.Is(err, geojson.ErrInvalid):
		return newError(c, fiber.StatusBadRequest, "invalid_geojson", err.Error())
	case errors.Is(err, geojson.ErrUnsupported):
		return newError(c, fiber.StatusBadRequest, "unsupported_geometry", err.Error())
	case ewkb.IsCodecError(err):
		return newError(c, fiber.StatusBadRequest, "invalid_ewkb", err.Error())
	}
	logging.FromContext(c.UserContext()).Error("request failed",
		"method", c.Method(), "path", c.Path(), "error", err)
	return errInternal(c, "internal server error")
}

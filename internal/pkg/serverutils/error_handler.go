package serverutils

import (
	"errors"

	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps service errors to HTTP status codes so
// controllers just return errors upward. Sentinels own their codes:
//
//	invalid query      -> 400
//	not found          -> 404
//	ingest running     -> 409
//	embedding down     -> 502
//	generation down    -> 502
//	retrieval down     -> 503
//
// Anything unrecognized becomes a 500 with a generic body; the real error
// already reached the logs at the layer that produced it.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := statusFor(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			message = "internal server error"
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrInvalidQuery):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperror.ErrIngestRunning):
		return fiber.StatusConflict
	case errors.Is(err, apperror.ErrEmbeddingUnavailable),
		errors.Is(err, apperror.ErrGenerationUnavailable):
		return fiber.StatusBadGateway
	case errors.Is(err, apperror.ErrRetrievalUnavailable):
		return fiber.StatusServiceUnavailable
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

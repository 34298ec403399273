package serverutils

import (
	"errors"

	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/engine/enginerr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates errors bubbling out of handlers into
// JSON responses. Validation problems map to 400, upstream service
// failures to 502, everything else to 500.
func ErrorHandlerMiddleware(sysLogger logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		var validationErr *enginerr.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(validationErr.Error()))
		}

		var externalErr *enginerr.ExternalServiceError
		if errors.As(err, &externalErr) {
			sysLogger.Error("HTTP", "upstream service failed", map[string]interface{}{
				"service": externalErr.Service,
				"path":    ctx.Path(),
				"error":   externalErr.Error(),
			})
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse("upstream service unavailable: " + externalErr.Service))
		}

		sysLogger.Error("HTTP", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}

package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/apperr"
	"storefront/media"
	"storefront/query"
	"storefront/repository"
)

// errorHandler renders every error as {"error": message}. Internal errors
// are logged and their cause is never sent to the client.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		appErr := storeError(err, "Resource not found")
		if appErr.Kind == apperr.KindInternal {
			log.Error("Request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
				zap.Error(appErr.Err),
			)
		}

		body := fiber.Map{"error": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		return c.Status(appErr.Status()).JSON(body)
	}
}

// storeError classifies errors coming out of the repositories, the query
// translator and the media store.
func storeError(err error, notFound string) *apperr.Error {
	var appErr *apperr.Error
	var paramErr *query.ParamError

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &paramErr):
		return apperr.Validation(paramErr.Error())
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperr.Conflict("Email already registered")
	case errors.Is(err, repository.ErrDuplicateSlug):
		return apperr.Conflict("Slug already in use")
	case errors.Is(err, repository.ErrUnknownCategory):
		return apperr.Validation("One or more categories do not exist")
	case errors.Is(err, media.ErrUnsupportedType):
		return apperr.Validation("Unsupported image type")
	case errors.Is(err, media.ErrInvalidContent):
		return apperr.Validation("Image content must be base64 encoded")
	default:
		return apperr.Internal(err)
	}
}

package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/krishkalaria12/linegrade/logging"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// JSON writes the standard success envelope.
func JSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  StatusSuccess,
		"message": message,
		"data":    data,
	})
}

func OK(c *fiber.Ctx, message string, data any) error {
	return JSON(c, fiber.StatusOK, message, data)
}

func Created(c *fiber.Ctx, message string, data any) error {
	return JSON(c, fiber.StatusCreated, message, data)
}

// ErrorHandler renders any error returned from a handler or middleware as an
// error envelope. Unclassified errors are logged and reported as internal.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		kind := apperror.Internal
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			kind = apperror.NotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
			kind = apperror.Validation
		case fiber.StatusUnauthorized:
			kind = apperror.Authentication
		}
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"status":  StatusError,
			"code":    kind.Code(),
			"message": fiberErr.Message,
			"data":    nil,
		})
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Wrap(apperror.Internal, "internal server error", err)
	}

	message := appErr.Message
	if appErr.Kind == apperror.Internal {
		logging.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
		message = "internal server error"
	}

	body := fiber.Map{
		"status":  StatusError,
		"code":    appErr.Kind.Code(),
		"message": message,
		"data":    nil,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.Status(appErr.Kind.Status()).JSON(body)
}

package httpapi

import (
	"errors"

	"github.com/echosphere/echosphere/internal/common"
	"github.com/gofiber/fiber/v2"
)

// fail maps a service error to an HTTP status and a JSON error body.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorSelfTarget),
		errors.Is(err, common.ErrInvalidCode):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrSessionExpired),
		errors.Is(err, common.ErrInvalidLoginPair),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrInvalidAccountState):
		status = fiber.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, common.ErrorForbidden),
		errors.Is(err, common.ErrorBlocked):
		status = fiber.StatusForbidden
		message = err.Error()
	case errors.Is(err, common.ErrorNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, common.ErrorAlreadyExists):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, common.ErrorRateLimited):
		status = fiber.StatusTooManyRequests
		message = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}

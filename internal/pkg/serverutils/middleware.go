package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts the first failure
// into a fiber 400 so the error middleware renders the envelope.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("field '%s' failed on '%s' validation", field, verrs[0].Tag()))
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid request")
	}
	return nil
}

// ErrorHandlerMiddleware converts every error escaping a handler into the
// uniform envelope. Unrecognized errors map to 500 without leaking details.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

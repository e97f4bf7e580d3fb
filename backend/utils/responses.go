package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/priyotosh-27/CodeMaster/backend/errs"
)

// SuccessResponse is the envelope for successful JSON responses.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for failed JSON responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Data:    data,
	})
}

func Error(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, message))
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, fiber.NewError(fiber.StatusUnauthorized, message))
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, message))
}

func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, fiber.NewError(fiber.StatusConflict, message))
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, fiber.NewError(fiber.StatusInternalServerError, message))
}

// RespondError maps the error taxonomy to an HTTP response. Every handler
// funnels domain failures through here so the mapping stays in one place.
func RespondError(c *fiber.Ctx, err error) error {
	var validation *errs.ValidationError
	var auth *errs.AuthError
	var notAuthed *errs.NotAuthenticatedError

	switch {
	case errors.As(err, &validation):
		return Error(c, fiber.StatusBadRequest, err)
	case errors.As(err, &notAuthed):
		return Error(c, fiber.StatusUnauthorized, err)
	case errors.As(err, &auth):
		return Error(c, fiber.StatusUnauthorized, err)
	case errors.Is(err, errs.ErrProfileNotFound):
		return Error(c, fiber.StatusNotFound, err)
	default:
		return Error(c, fiber.StatusInternalServerError, err)
	}
}

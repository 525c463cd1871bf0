package api

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

// Error codes returned in the error envelope.
const (
	CodePersonNotFound   = "PERSON_NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeDataIntegrity    = "DATA_INTEGRITY_VIOLATION"
	CodeInternalError    = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

func sendError(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func sendValidationErrors(c fiber.Ctx, details map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Error:     CodeValidationFailed,
		Message:   "Person validation failed",
		Timestamp: time.Now().UTC(),
		Details:   details,
	})
}

package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"fundvote/internal/http/middleware"
	"fundvote/internal/model"
	"fundvote/internal/repository"
	"fundvote/internal/service"
)

// retryAfterSeconds is advertised on 503 responses caused by a store fault.
const retryAfterSeconds = "1"

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_STATUS", "NOT_FOUND", "STORE_UNAVAILABLE")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service and store errors onto the error envelope.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		return writeError(c, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", "proposal store temporarily unavailable")
	case errors.Is(err, model.ErrInvalidStatus):
		return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "status must be one of all, pending, approved, rejected")
	case errors.Is(err, model.ErrInvalidSort):
		return writeError(c, fiber.StatusBadRequest, "INVALID_SORT", "sort must be one of recent, votes, funding")
	case errors.Is(err, model.ErrInvalidDirection):
		return writeError(c, fiber.StatusBadRequest, "INVALID_DIRECTION", "direction must be up or down")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, "SERVICE_UNAVAILABLE", "service unavailable")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

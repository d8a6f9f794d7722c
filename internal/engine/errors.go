package engine

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AppError is the error body returned to clients: {"error": msg, "code": CODE, "details": [...]}.
type AppError struct {
	Code    string        `json:"code"`
	Status  int           `json:"-"`
	Message string        `json:"error"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field    string `json:"field,omitempty"`
	Value    any    `json:"value,omitempty"`
	Category string `json:"category,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Message  string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func NotFoundError(label, key string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s %s not found", label, key),
	}
}

func MissingFieldsError(fields []string) *AppError {
	details := make([]ErrorDetail, len(fields))
	for i, f := range fields {
		details[i] = ErrorDetail{Field: f, Rule: "required", Message: f + " is required"}
	}
	return &AppError{
		Code:    "MISSING_FIELDS",
		Status:  http.StatusBadRequest,
		Message: "Required fields are missing: " + strings.Join(fields, ", "),
		Details: details,
	}
}

// ReferenceError reports unresolved reference codes. The status and message
// follow the first miss in field order.
func ReferenceError(status int, details []ErrorDetail) *AppError {
	msg := details[0].Message
	if len(details) > 1 {
		msg = fmt.Sprintf("%d reference codes could not be resolved", len(details))
	}
	return &AppError{
		Code:    "REFERENCE_NOT_FOUND",
		Status:  status,
		Message: msg,
		Details: details,
	}
}

func ConflictError(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Status: http.StatusConflict, Message: msg}
}

func StaleRecordError(label, key string) *AppError {
	return &AppError{
		Code:    "STALE_RECORD",
		Status:  http.StatusConflict,
		Message: fmt.Sprintf("%s %s was changed by another request; reload and retry", label, key),
	}
}

func MalformedInputError(field, msg string) *AppError {
	return &AppError{
		Code:    "MALFORMED_INPUT",
		Status:  http.StatusBadRequest,
		Message: msg,
		Details: []ErrorDetail{{Field: field, Message: msg}},
	}
}

func ValidationError(details []ErrorDetail) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Details: details,
	}
}

func UnauthorizedError(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Status: http.StatusUnauthorized, Message: msg}
}

func ForbiddenError(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Status: http.StatusForbidden, Message: msg}
}

// ErrorHandler is the Fiber error handler. AppErrors are returned as-is;
// anything else is logged and answered with a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(appErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < http.StatusInternalServerError {
		return c.Status(fiberErr.Code).JSON(&AppError{
			Code:    strings.ToUpper(strings.ReplaceAll(http.StatusText(fiberErr.Code), " ", "_")),
			Message: fiberErr.Message,
		})
	}

	log.Printf("ERROR: %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(http.StatusInternalServerError).JSON(&AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	})
}

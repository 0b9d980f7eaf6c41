package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeStaleWrite   = "STALE_WRITE"
	CodeInternal     = "INTERNAL_ERROR"
)

// FieldError is one failed field rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of a single-message failure.
type ErrorResponse struct {
	Msg  string `json:"msg"`
	Code string `json:"code,omitempty"`
}

// ValidationErrorResponse is the body of a field validation failure.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// AppError represents a typed application failure.
type AppError struct {
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports an absent or malformed-id resource.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// NewValidationError reports a single invalid input.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// NewFieldValidationError reports every failed field rule at once.
func NewFieldValidationError(fields []FieldError) *AppError {
	msg := "Validation failed"
	if len(fields) > 0 {
		msg = fields[0].Message
	}
	return &AppError{Code: CodeValidation, Message: msg, Fields: fields}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// NewForbiddenError reports an authenticated caller acting on a resource it does not own.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// NewStaleWriteError reports a lost optimistic-concurrency race on collection.
func NewStaleWriteError(collection string) *AppError {
	return &AppError{
		Code:    CodeStaleWrite,
		Message: "Document was modified concurrently, please retry",
		Err:     fmt.Errorf("stale %s version", collection),
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Server error", Err: err}
}

// AsAppError unwraps err to an *AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError writes a standardized error response. Internal causes are
// never written to the client.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	appErr := AsAppError(err)
	if len(appErr.Fields) > 0 {
		return c.Status(status).JSON(ValidationErrorResponse{Errors: appErr.Fields})
	}
	return c.Status(status).JSON(ErrorResponse{
		Msg:  appErr.Message,
		Code: appErr.Code,
	})
}

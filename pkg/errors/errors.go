// Package errors defines the storefront's error taxonomy and its mapping to
// HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinels. Every AppError wraps one of these (or a cause, for Internal),
// so callers can branch with errors.Is.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
)

// sentinelStatus is checked in order by HTTPStatus.
var sentinelStatus = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrAlreadyExists, http.StatusConflict},
	{ErrConflict, http.StatusConflict},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrServiceUnavail, http.StatusServiceUnavailable},
}

// AppError is an error that knows how it should be rendered to a client.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func newAppError(code string, status int, sentinel error, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: sentinel}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithFields attaches per-field messages to the error.
func (e *AppError) WithFields(fields map[string]string) *AppError {
	e.Fields = fields
	return e
}

// NotFound reports a missing resource by id.
func NotFound(resource, id string) *AppError {
	return newAppError("NOT_FOUND", http.StatusNotFound, ErrNotFound,
		fmt.Sprintf("%s with id %s not found", resource, id))
}

// AlreadyExists reports a uniqueness violation on field.
func AlreadyExists(resource, field, value string) *AppError {
	return newAppError("ALREADY_EXISTS", http.StatusConflict, ErrAlreadyExists,
		fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

func InvalidInput(message string) *AppError {
	return newAppError("INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput, message)
}

// MissingFields names every missing field in the order given.
func MissingFields(fields ...string) *AppError {
	return newAppError("MISSING_FIELDS", http.StatusBadRequest, ErrInvalidInput,
		"Missing required fields: "+strings.Join(fields, ", "))
}

func Unauthorized(message string) *AppError {
	return newAppError("UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newAppError("FORBIDDEN", http.StatusForbidden, ErrForbidden, message)
}

func Conflict(message string) *AppError {
	return newAppError("CONFLICT", http.StatusConflict, ErrConflict, message)
}

// ServiceUnavailable reports a dependency that cannot be reached.
func ServiceUnavailable(message string) *AppError {
	return newAppError("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail, message)
}

// Internal hides cause behind a generic message; cause is kept for logging.
func Internal(cause error) *AppError {
	return newAppError("INTERNAL_ERROR", http.StatusInternalServerError, cause, "an internal error occurred")
}

// HTTPStatus returns the status an error should be rendered with. Plain
// errors wrapping a sentinel map through the sentinel; anything else is 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

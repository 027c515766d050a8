// Package httputil renders the storefront's JSON envelopes.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/apparelstore/pkg/errors"
	"github.com/utafrali/apparelstore/pkg/logger"
	"github.com/utafrali/apparelstore/pkg/validator"
)

// Response is the JSON envelope returned by every endpoint. Success mirrors
// the HTTP outcome so browser clients can branch without reading the status.
type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func failure(e ErrorResponse) Response {
	return Response{Message: e.Message, Error: &e}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a successful envelope carrying data and an optional message.
func WriteData(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func WriteFailure(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, failure(ErrorResponse{Code: code, Message: message}))
}

// plainError describes errors that are not *AppError. Only invalid-input
// errors expose their text; everything else gets a fixed message.
func plainError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: "resource not found"}
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, ErrorResponse{Code: "ALREADY_EXISTS", Message: "resource already exists"}
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, apperrors.ErrServiceUnavail):
		return http.StatusServiceUnavailable, ErrorResponse{Code: "SERVICE_UNAVAILABLE", Message: "service temporarily unavailable"}
	}
	return apperrors.HTTPStatus(err), ErrorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}
}

// WriteError renders err as a failure envelope stamped with the request's
// correlation id. Server-side failures are logged with the request-scoped
// logger, or fallback when the context carries none.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	ctx := r.Context()

	var (
		status int
		body   ErrorResponse
		appErr *apperrors.AppError
	)
	if errors.As(err, &appErr) {
		status = appErr.Status
		body = ErrorResponse{Code: appErr.Code, Message: appErr.Message, Fields: appErr.Fields}
	} else {
		status, body = plainError(err)
	}
	body.RequestID = logger.CorrelationIDFromContext(ctx)

	if status >= http.StatusInternalServerError {
		l := logger.FromContext(ctx)
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(ctx, "request failed",
			slog.String("error", err.Error()),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, failure(body))
}

// WriteValidationError answers 400 with per-field messages when err is a
// *validator.ValidationError, or with err's text otherwise.
func WriteValidationError(w http.ResponseWriter, err error, message string) {
	if message == "" {
		message = "request validation failed"
	}

	var valErr *validator.ValidationError
	if !errors.As(err, &valErr) {
		WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	WriteJSON(w, http.StatusBadRequest, failure(ErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Fields:  valErr.Fields(),
	}))
}

// PaginatedResponse is the envelope for paged admin listings.
type PaginatedResponse[T any] struct {
	Success    bool `json:"success"`
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPaginatedResponse fills in TotalPages and HasNext. A nil page encodes
// as an empty array.
func NewPaginatedResponse[T any](data []T, totalCount, page, perPage int) PaginatedResponse[T] {
	if perPage <= 0 {
		perPage = 1
	}
	if data == nil {
		data = []T{}
	}
	totalPages := (totalCount + perPage - 1) / perPage
	return PaginatedResponse[T]{
		Success:    true,
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

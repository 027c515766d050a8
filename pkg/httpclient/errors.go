package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// remoteError accepts the two error shapes we talk to: our own envelope
// ({"error":{"code","message"}}) and the flat shape used by hosted storage
// APIs ({"error":"Duplicate","message":"..."}).
type remoteError struct {
	Code    string
	Message string
}

func decodeRemoteError(body []byte) (remoteError, bool) {
	var raw struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &raw) != nil || len(raw.Error) == 0 || string(raw.Error) == "null" {
		return remoteError{}, false
	}

	var nested struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw.Error, &nested) == nil && (nested.Code != "" || nested.Message != "") {
		return remoteError{Code: nested.Code, Message: nested.Message}, true
	}

	var flat string
	if json.Unmarshal(raw.Error, &flat) == nil {
		msg := raw.Message
		if msg == "" {
			msg = flat
		}
		return remoteError{Code: flat, Message: msg}, true
	}
	return remoteError{}, false
}

// ParseResponseError consumes and closes a non-2xx response body and maps it
// to an AppError carrying the remote message. Unrecognised bodies produce a
// plain error containing the status and (truncated) body.
func ParseResponseError(resp *http.Response, remote string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", remote, resp.StatusCode, err)
	}

	if re, ok := decodeRemoteError(body); ok {
		return mapRemoteError(resp.StatusCode, re, remote)
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 512 {
		text = text[:512]
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s returned status %d: %s: %w", remote, resp.StatusCode, text, apperrors.ErrServiceUnavail)
	}
	return fmt.Errorf("%s returned status %d: %s", remote, resp.StatusCode, text)
}

func mapRemoteError(status int, re remoteError, remote string) error {
	msg := fmt.Sprintf("%s: %s", remote, re.Message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: msg, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest, status == http.StatusRequestEntityTooLarge, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(msg)
	case status == http.StatusConflict:
		return apperrors.Conflict(msg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case status >= 500:
		return &apperrors.AppError{
			Code:    "SERVICE_UNAVAILABLE",
			Message: msg,
			Status:  http.StatusServiceUnavailable,
			Err:     fmt.Errorf("%s status %d (%s): %w", remote, status, re.Code, apperrors.ErrServiceUnavail),
		}
	default:
		return &apperrors.AppError{Code: re.Code, Message: msg, Status: status}
	}
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

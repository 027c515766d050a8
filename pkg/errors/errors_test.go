package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Constructors
// =============================================================================

func TestConstructors(t *testing.T) {
	cases := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
		message  string
	}{
		{"not found", NotFound("product", "abc-123"), "NOT_FOUND", http.StatusNotFound, ErrNotFound,
			"product with id abc-123 not found"},
		{"already exists", AlreadyExists("product", "slug", "linen-shirt"), "ALREADY_EXISTS", http.StatusConflict, ErrAlreadyExists,
			`product with slug "linen-shirt" already exists`},
		{"invalid input", InvalidInput("Invalid price value"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput,
			"Invalid price value"},
		{"missing fields", MissingFields("name", "price"), "MISSING_FIELDS", http.StatusBadRequest, ErrInvalidInput,
			"Missing required fields: name, price"},
		{"unauthorized", Unauthorized("Invalid email or password"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized,
			"Invalid email or password"},
		{"forbidden", Forbidden("admin role required"), "FORBIDDEN", http.StatusForbidden, ErrForbidden,
			"admin role required"},
		{"conflict", Conflict("object already exists"), "CONFLICT", http.StatusConflict, ErrConflict,
			"object already exists"},
		{"unavailable", ServiceUnavailable("storage: circuit open"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail,
			"storage: circuit open"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NotNil(t, tc.err)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, tc.err.Status)
			assert.Equal(t, tc.message, tc.err.Message)
			assert.ErrorIs(t, tc.err, tc.sentinel)
			assert.Equal(t, tc.status, HTTPStatus(tc.err))
		})
	}
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("pool exhausted")
	err := Internal(cause)

	assert.Equal(t, "an internal error occurred", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "INTERNAL_ERROR: an internal error occurred: pool exhausted", err.Error())
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: order not found", (&AppError{Code: "NOT_FOUND", Message: "order not found"}).Error())
	assert.Nil(t, (&AppError{Code: "X"}).Unwrap())
}

func TestAppError_WithFields(t *testing.T) {
	err := InvalidInput("Please fill required fields").
		WithFields(map[string]string{"email": "email is required", "zipCode": "zipCode is required"})

	assert.Len(t, err.Fields, 2)
	assert.Equal(t, "email is required", err.Fields["email"])
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// =============================================================================
// HTTPStatus
// =============================================================================

func TestHTTPStatus_PlainAndWrapped(t *testing.T) {
	for _, s := range sentinelStatus {
		assert.Equal(t, s.status, HTTPStatus(s.err), s.err.Error())
		assert.Equal(t, s.status, HTTPStatus(fmt.Errorf("load cart: %w", s.err)), s.err.Error())
	}

	wrappedApp := fmt.Errorf("get product: %w", NotFound("product", "p-1"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrappedApp))
}

func TestHTTPStatus_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(nil))
}

package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)]+$`)
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so error maps line up with request bodies.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return v
}

// Validate checks s against its `validate` tags. Field failures come back
// as a *ValidationError.
func Validate(s any) error {
	err := validate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

// ValidationError lists the fields that failed and why.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	for i, fe := range e.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "field '%s' %s", fe.Field(), describe(fe))
	}
	return b.String()
}

// Fields maps each failing field to a readable reason.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[fe.Field()] = describe(fe)
	}
	return fields
}

// HasTag reports whether any field failed on tag.
func (e *ValidationError) HasTag(tag string) bool {
	return slices.ContainsFunc(e.Errors, func(fe validator.FieldError) bool { return fe.Tag() == tag })
}

var (
	fixedReasons = map[string]string{
		"required": "is required",
		"notblank": "is required",
		"email":    "must be a valid email address",
		"zipcode":  "must be a valid ZIP code (12345 or 12345-6789)",
		"phone":    "must contain only digits, spaces, dashes and parentheses",
		"url":      "must be a valid URL",
	}
	// %s receives the tag parameter.
	paramReasons = map[string]string{
		"min":   "must be at least %s",
		"max":   "must be at most %s",
		"gte":   "must be greater than or equal to %s",
		"lte":   "must be less than or equal to %s",
		"oneof": "must be one of: %s",
	}
)

func describe(fe validator.FieldError) string {
	if r, ok := fixedReasons[fe.Tag()]; ok {
		return r
	}
	if f, ok := paramReasons[fe.Tag()]; ok {
		return fmt.Sprintf(f, fe.Param())
	}
	return fmt.Sprintf("failed on '%s' validation", fe.Tag())
}

// DecodeAndValidate reads JSON from the request body, decodes it into dst,
// and validates it.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return Validate(dst)
}

package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "factorstd/internal/errors"
	"factorstd/internal/standardize"
)

// Validator decodes and validates JSON request bodies using struct tags
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the custom rules registered.
// Field errors are reported by their JSON name.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("method", isMethod)
	v.RegisterValidation("column", isColumnName)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates v. Failures are returned as validator.ValidationErrors.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// DecodeJSON decodes the request body into dst and validates it. Unknown
// fields and trailing data are rejected.
func (v *Validator) DecodeJSON(r *http.Request, dst interface{}) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return apperrors.NewValidationError(
				fmt.Sprintf("unsupported content type %q, expected application/json", ct), nil)
		}
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return maxErr
		}
		if errors.Is(err, io.EOF) {
			return apperrors.NewParsingError("request body is empty", err)
		}
		return apperrors.NewParsingError("request body is not valid JSON", err)
	}

	if dec.More() {
		return apperrors.NewParsingError("request body must contain a single JSON object", nil)
	}

	return v.Struct(dst)
}

// isMethod accepts the standardization method names
func isMethod(fl validator.FieldLevel) bool {
	_, err := standardize.ParseMethod(fl.Field().String())
	return err == nil
}

// isColumnName accepts any non-blank column name
func isColumnName(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

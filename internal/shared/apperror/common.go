package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrStorageNotConfigured = New(
		CodePreconditionFailure,
		"storage backend is not configured",
		http.StatusServiceUnavailable,
	)
)

func RequiredField(field string) *AppError {
	return New(CodeMissingField, fmt.Sprintf("%s is required", field), http.StatusBadRequest).
		WithDetail("field", field)
}

func InvalidField(field string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("%s is invalid", field), http.StatusBadRequest).
		WithDetail("field", field)
}

// MissingField covers both an absent value and one that failed numeric coercion.
func MissingField(field string) *AppError {
	return New(CodeMissingField, fmt.Sprintf("missing required field: %s", field), http.StatusBadRequest).
		WithDetail("field", field)
}

func FormatViolation(field, value, expected string) *AppError {
	return New(
		CodeFormatViolation,
		fmt.Sprintf("%s has invalid format %q, expected %s", field, value, expected),
		http.StatusBadRequest,
	).WithDetail("field", field)
}

func RangeViolation(field, rule string) *AppError {
	return New(CodeRangeViolation, fmt.Sprintf("%s %s", field, rule), http.StatusBadRequest).
		WithDetail("field", field)
}

func PreconditionFailure(message string) *AppError {
	return New(CodePreconditionFailure, message, http.StatusUnprocessableEntity)
}

// StorageFailure forwards the storage collaborator's message verbatim.
func StorageFailure(err error, message string) *AppError {
	return Wrap(err, CodeStorageFailure, message, http.StatusInternalServerError)
}

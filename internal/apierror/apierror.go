// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "github.com/vitorf997/packing-creator/internal/packing"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// RowsError is returned when an allocation is refused. Rows maps a row id to
// the messages of its offending fields.
type RowsError struct {
	Detail string                       `json:"detail"`
	Rows   map[string]packing.RowErrors `json:"rows"`
}

func NewRows(detail string, rows map[string]packing.RowErrors) *RowsError {
	if rows == nil {
		rows = map[string]packing.RowErrors{}
	}
	return &RowsError{Detail: detail, Rows: rows}
}

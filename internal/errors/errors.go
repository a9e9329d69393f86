// Package errors provides structured error types for the atfconv toolkit.
// All errors include a category, code, and message for consistent handling
// and for the row/field diagnostics the conversion tools report on failure.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryParse    ErrorCategory = "PARSE"
	ErrCategoryFormat   ErrorCategory = "FORMAT"
	ErrCategoryRemap    ErrorCategory = "REMAP"
	ErrCategoryStorage  ErrorCategory = "STORAGE"
	ErrCategoryCatalog  ErrorCategory = "CATALOG"
	ErrCategoryConfig   ErrorCategory = "CONFIG"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Parse codes
	CodeBadField  = "BAD_FIELD"
	CodeBadRecord = "BAD_RECORD"

	// Format codes
	CodeUnknownFormat = "UNKNOWN_FORMAT"

	// Remap codes
	CodeUnknownAddress = "UNKNOWN_ADDRESS"
	CodeSourceChanged  = "SOURCE_CHANGED"

	// Storage codes
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Catalog codes
	CodeRecordFailed = "RECORD_FAILED"
	CodeRunNotFound  = "RUN_NOT_FOUND"

	// Config codes
	CodeInvalidConfig = "INVALID_CONFIG"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// ConvError is the structured error type used throughout the toolkit.
type ConvError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *ConvError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ConvError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *ConvError) Is(target error) bool {
	var t *ConvError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new ConvError.
func New(category ErrorCategory, code, message string) *ConvError {
	return &ConvError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new ConvError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *ConvError {
	return &ConvError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *ConvError) WithDetails(details map[string]interface{}) *ConvError {
	cp := *e
	cp.Details = details
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a ConvError.
func GetCategory(err error) ErrorCategory {
	var ce *ConvError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a ConvError.
func GetCode(err error) string {
	var ce *ConvError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// Convenience constructors for common errors.

// NewParseError reports a field that failed type coercion. Row indices are
// 1-based and count data rows only, matching what the CLI prints.
func NewParseError(row, field int, value, reason string, cause error) *ConvError {
	e := Wrap(ErrCategoryParse, CodeBadField,
		fmt.Sprintf("row %d field %d (%q): %s", row, field, value, reason), cause)
	return e.WithDetails(map[string]interface{}{
		"row":   row,
		"field": field,
		"value": value,
	})
}

// NewShortRecordError reports a row that could not be decomposed at all.
func NewShortRecordError(row, got, want int) *ConvError {
	e := New(ErrCategoryParse, CodeBadRecord,
		fmt.Sprintf("row %d: %d fields, need %d", row, got, want))
	return e.WithDetails(map[string]interface{}{"row": row, "got": got, "want": want})
}

// NewLookupError reports an address missing from a prebuilt offset map.
func NewLookupError(row int, address string) *ConvError {
	e := New(ErrCategoryRemap, CodeUnknownAddress,
		fmt.Sprintf("row %d: address %q not present in offset map", row, address))
	return e.WithDetails(map[string]interface{}{"row": row, "address": address})
}

// NewUnknownFormatError reports an unregistered format identifier.
func NewUnknownFormatError(id string) *ConvError {
	return New(ErrCategoryFormat, CodeUnknownFormat, fmt.Sprintf("unknown format %q", id))
}

func NewStorageError(code, message string, cause error) *ConvError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewCatalogError(code, message string, cause error) *ConvError {
	return Wrap(ErrCategoryCatalog, code, message, cause)
}

func NewInternalError(message string, cause error) *ConvError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}

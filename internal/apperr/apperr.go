package apperr

import (
	"errors"
	"fmt"
)

// Machine-readable error codes surfaced to API callers.
const (
	CodeValidation = "validation_failed"
	CodeNotFound   = "not_found"
	CodeExtraction = "extraction_failed"
	CodeMapping    = "mapping_failed"
	CodeConflict   = "conflict"
	CodeInternal   = "internal_error"
)

// Error carries a stable code alongside a human message. Extraction and
// mapping failures wrap the underlying cause so the service layer can log
// it before translating to a generic internal error for callers.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }

func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

func Conflict(msg string) *Error { return &Error{Code: CodeConflict, Message: msg} }

func Extraction(msg string, err error) *Error {
	return &Error{Code: CodeExtraction, Message: msg, Err: err}
}

func Mapping(msg string, err error) *Error {
	return &Error{Code: CodeMapping, Message: msg, Err: err}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

// CodeOf extracts the code from err, or internal_error for plain errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool { return CodeOf(err) == code }

package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
	Field   string // Offending column for single-column constraints (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by status code and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err, Field: e.Field}
}

// OnField records the column a constraint failed on.
func (e *Error) OnField(field string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: e.Err, Field: field}
}

// FieldOf returns the column recorded on a store error, or "".
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	// ErrAlreadyExists reports a UNIQUE constraint violation.
	ErrAlreadyExists = &Error{
		Code:    http.StatusBadRequest,
		Message: "resource already exists",
	}

	// ErrInvalidReference reports a FOREIGN KEY or CHECK constraint violation.
	ErrInvalidReference = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid reference",
	}

	ErrUnknownTable = &Error{
		Code:    http.StatusBadRequest,
		Message: "table cannot be imported",
	}
)

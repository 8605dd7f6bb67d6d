// Package apperror defines the error kinds surfaced at the request boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Authentication
	Validation
	NotFound
	Conflict
)

// Code is the machine readable value sent in error responses.
func (k Kind) Code() string {
	switch k {
	case Authentication:
		return "AUTHENTICATION_ERROR"
	case Validation:
		return "VALIDATION_ERROR"
	case NotFound:
		return "NOT_FOUND"
	case Conflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

// Status is the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case Authentication:
		return http.StatusUnauthorized
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Details carries field-level information for
// validation failures and is sent to the caller as is.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(message string) *Error {
	return New(Authentication, message)
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

func ConflictWrap(message string, err error) *Error {
	return Wrap(Conflict, message, err)
}

// Invalid reports a single field failure.
func Invalid(field, message string) *Error {
	return &Error{
		Kind:    Validation,
		Message: message,
		Details: map[string]any{field: []string{message}},
	}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

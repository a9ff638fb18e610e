package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for translation at the HTTP boundary.
type Kind int

const (
	Unexpected Kind = iota
	Validation
	NotFound
	Unauthorized
	Forbidden
	Conflict
	InvalidCredentials
	ServiceUnavailable
)

// Error is a classified application error. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		if e.Message != "" {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a kind and client message to an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validationf formats a client-facing validation error.
func Validationf(format string, args ...any) *Error {
	return New(Validation, fmt.Sprintf(format, args...))
}

// NotFoundf formats a client-facing not-found error.
func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain, or Unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case Validation, Conflict, InvalidCredentials:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case ServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message a client may see for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Unexpected && e.Message != "" {
		return e.Message
	}
	return "Server error"
}

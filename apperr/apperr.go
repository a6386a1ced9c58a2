// Package apperr holds the business error taxonomy shared by the domain
// packages, the services and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind sentinels. Every business error unwraps to exactly one of them.
var (
	ErrFormat         = errors.New("format error")
	ErrInvalidRange   = errors.New("invalid range")
	ErrConflict       = errors.New("conflict")
	ErrCapacity       = errors.New("capacity exceeded")
	ErrState          = errors.New("invalid state")
	ErrImmutableState = errors.New("immutable state")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
)

// Error is a business failure carrying the user-facing message. The message
// is returned verbatim to clients; some of them branch on its content.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// New builds a business error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var kinds = []error{
	ErrFormat, ErrInvalidRange, ErrConflict, ErrCapacity, ErrState,
	ErrImmutableState, ErrForbidden, ErrNotFound, ErrValidation, ErrUnauthorized,
}

// KindOf returns the kind sentinel err belongs to, or nil for unexpected errors.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// HTTPStatus maps an error kind to the status code the transport layer uses.
// Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	case ErrState, ErrCapacity, ErrImmutableState, ErrFormat, ErrInvalidRange, ErrValidation:
		return http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message of a business error and false for
// anything else.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}

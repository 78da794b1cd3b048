// Package apperr defines the error kinds shared by the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrAuthorization   = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream failure")
	ErrPersistence     = errors.New("persistence failure")
)

// Error carries a kind, the failing operation and a client-safe message.
type Error struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func New(kind error, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Wrap(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(op, format string, args ...any) *Error {
	return New(ErrValidation, op, fmt.Sprintf(format, args...))
}

func NotFound(op, what string) *Error {
	return New(ErrNotFound, op, what+" not found")
}

func Forbidden(op, message string) *Error {
	return New(ErrAuthorization, op, message)
}

func Unauthenticated(op, message string) *Error {
	return New(ErrUnauthenticated, op, message)
}

func Persistence(op string, err error) *Error {
	return Wrap(ErrPersistence, op, err)
}

func Upstream(op string, err error) *Error {
	return Wrap(ErrUpstream, op, err)
}

// Message returns the client-facing text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return e.Kind.Error()
	}
	return "internal server error"
}

// KindOf returns the kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrValidation, ErrNotFound, ErrAuthorization, ErrUnauthenticated,
		ErrConflict, ErrUpstream, ErrPersistence,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

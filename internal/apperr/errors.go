package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindTooManyRequests
)

// Status maps the kind to an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

const InternalMessage = "Внутренняя ошибка сервера"

// Error: типизированная ошибка приложения, уходит клиенту как {message, extra}.
type Error struct {
	Kind    Kind
	Message string
	Extra   map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int { return e.Kind.Status() }

// With adds a key to Extra and returns the same error.
func (e *Error) With(key string, value any) *Error {
	if e.Extra == nil {
		e.Extra = map[string]any{}
	}
	e.Extra[key] = value
	return e
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func NotFound(message string, cause error) *Error {
	return New(KindNotFound, message, cause)
}

func BadRequest(message string, cause error) *Error {
	return New(KindBadRequest, message, cause)
}

func Unauthorized(message string, cause error) *Error {
	return New(KindUnauthorized, message, cause)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message, nil)
}

// Internal keeps the cause message in extra.detail.
func Internal(cause error) *Error {
	e := New(KindInternal, InternalMessage, cause)
	if cause != nil {
		e.With("detail", cause.Error())
	}
	return e
}

// From passes typed errors through and wraps everything else into Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

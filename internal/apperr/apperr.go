// Package apperr defines the error kinds shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for fallback decisions and HTTP mapping.
type Kind string

const (
	KindInternal              Kind = "Internal"
	KindProviderNotFound      Kind = "ProviderNotFound"
	KindProviderCallFailure   Kind = "ProviderCallFailure"
	KindAllProvidersExhausted Kind = "AllProvidersExhausted"
	KindValidation            Kind = "ValidationFailure"
	KindNotFound              Kind = "NotFound"
	KindUnauthorized          Kind = "Unauthorized"
)

// Error is a classified error. Op names the failing operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, apperr.NotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ProviderNotFound      = &Error{Kind: KindProviderNotFound}
	ProviderCallFailure   = &Error{Kind: KindProviderCallFailure}
	AllProvidersExhausted = &Error{Kind: KindAllProvidersExhausted}
	Validation            = &Error{Kind: KindValidation}
	NotFound              = &Error{Kind: KindNotFound}
	Unauthorized          = &Error{Kind: KindUnauthorized}
)

// New creates a classified error.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns a client-safe message. Internal errors are not exposed.
func MessageOf(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal server error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil && e.Kind != KindProviderCallFailure {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// HTTPStatus maps an error to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindProviderNotFound:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindAllProvidersExhausted, KindProviderCallFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport-level mapping.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindAlreadyProcessed    Kind = "ALREADY_PROCESSED"
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindNotAuthorized       Kind = "NOT_AUTHORIZED"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindInternal            Kind = "INTERNAL"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NotFound(msg string) *Error         { return New(KindNotFound, msg) }
func AlreadyProcessed(msg string) *Error { return New(KindAlreadyProcessed, msg) }
func InvalidInput(msg string) *Error     { return New(KindInvalidInput, msg) }
func NotAuthorized(msg string) *Error    { return New(KindNotAuthorized, msg) }

// KindOf returns the Kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind to the status code used by the API layer.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyProcessed:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotAuthorized:
		return http.StatusForbidden
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

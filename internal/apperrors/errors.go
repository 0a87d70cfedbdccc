// Package apperrors defines the error taxonomy shared by the stores, the
// provider clients and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind string

const (
	KindNotConfigured Kind = "not_configured"
	KindInvalidInput  Kind = "invalid_input"
	KindNotFound      Kind = "not_found"
	KindUpstream      Kind = "upstream"
	KindTransport     Kind = "transport"
	KindInternal      Kind = "internal"
)

// Error is a classified application error. StatusCode and Body are only set
// for upstream and transport errors and carry the provider's response.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.Message, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Message, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotConfigured(format string, args ...interface{}) error {
	return &Error{Kind: KindNotConfigured, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Upstream reports a non-2xx answer from a provider API.
func Upstream(provider string, statusCode int, body string) error {
	return &Error{
		Kind:       KindUpstream,
		Message:    provider + " API error",
		StatusCode: statusCode,
		Body:       body,
	}
}

// Transport wraps an SMS delivery failure, keeping the provider status and
// body when the cause is an upstream error.
func Transport(err error) error {
	out := &Error{Kind: KindTransport, Message: "SMS delivery failed", Err: err}
	var upstream *Error
	if errors.As(err, &upstream) {
		out.StatusCode = upstream.StatusCode
		out.Body = upstream.Body
	}
	return out
}

// Wrap classifies err with kind while keeping it in the chain.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNotConfigured:
		return http.StatusServiceUnavailable
	case KindUpstream, KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

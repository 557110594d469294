package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindConfiguration      Kind = "configuration"
	KindEmptyInput         Kind = "empty_input"
	KindNetwork            Kind = "network"
	KindRemote             Kind = "remote"
	KindMalformedResponse  Kind = "malformed_response"
	KindIncompleteResponse Kind = "incomplete_response"
	KindAIProcessing       Kind = "ai_processing"
	KindNotFound           Kind = "not_found"
	KindUnknown            Kind = "unknown"
)

// Error is an error with a kind and a message meant to be shown to users verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target carrying a message
// only matches an error with the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Sentinels for errors.Is checks.
var (
	ErrConfiguration      = &Error{Kind: KindConfiguration}
	ErrEmptyInput         = &Error{Kind: KindEmptyInput}
	ErrNetwork            = &Error{Kind: KindNetwork}
	ErrRemote             = &Error{Kind: KindRemote}
	ErrMalformedResponse  = &Error{Kind: KindMalformedResponse}
	ErrIncompleteResponse = &Error{Kind: KindIncompleteResponse}
	ErrAIProcessing       = &Error{Kind: KindAIProcessing}
	ErrNotFound           = &Error{Kind: KindNotFound}
)

func newf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Configuration reports a missing credential or endpoint.
func Configuration(format string, args ...any) *Error {
	return newf(KindConfiguration, nil, format, args...)
}

// EmptyInput reports a blank required field.
func EmptyInput(format string, args ...any) *Error {
	return newf(KindEmptyInput, nil, format, args...)
}

// Network reports a transport-level failure.
func Network(cause error, format string, args ...any) *Error {
	return newf(KindNetwork, cause, format, args...)
}

// Remote reports a non-success answer from a reachable endpoint.
func Remote(format string, args ...any) *Error {
	return newf(KindRemote, nil, format, args...)
}

// MalformedResponse reports a response body that could not be parsed.
func MalformedResponse(cause error, format string, args ...any) *Error {
	return newf(KindMalformedResponse, cause, format, args...)
}

// IncompleteResponse reports a well-formed envelope without the expected payload.
func IncompleteResponse(format string, args ...any) *Error {
	return newf(KindIncompleteResponse, nil, format, args...)
}

// AIProcessing reports a failed generative call or an unparseable model answer.
func AIProcessing(cause error, format string, args ...any) *Error {
	return newf(KindAIProcessing, cause, format, args...)
}

// NotFound reports a catalog lookup miss.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, nil, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code an API should answer with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindEmptyInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConfiguration:
		return http.StatusServiceUnavailable
	case KindNetwork, KindRemote, KindMalformedResponse, KindIncompleteResponse, KindAIProcessing:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

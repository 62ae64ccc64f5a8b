package client

import (
	"errors"
	"fmt"
)

// Kind classifies why a call failed.
type Kind int

const (
	// KindServer means the server answered with an error status or a failure code.
	KindServer Kind = iota
	// KindUnauthorized means the server answered 401. The session has been cleared.
	KindUnauthorized
	// KindNetwork means the request was sent but no response arrived.
	KindNetwork
	// KindRequest means the request could not be built or sent.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindUnauthorized:
		return "unauthorized"
	case KindNetwork:
		return "network"
	case KindRequest:
		return "request"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fallback messages used when the server does not supply one.
const (
	MsgServerError  = "server error"
	MsgNetworkError = "network error, please check your connection"
	MsgRequestError = "request configuration error"
)

// Error is returned by every failed API call.
type Error struct {
	Kind       Kind
	StatusCode int    // HTTP status, 0 when no response arrived
	Code       int    // envelope code, 0 when absent
	Message    string // server-provided message or a fallback
	Err        error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsStatus returns true if err (or any wrapped error) is an Error with the given HTTP status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// IsKind returns true if err (or any wrapped error) is an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	return IsKind(err, KindUnauthorized)
}

// Message returns the user-facing message carried by err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func requestError(err error) *Error {
	return &Error{Kind: KindRequest, Message: MsgRequestError, Err: err}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: MsgNetworkError, Err: err}
}

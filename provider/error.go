package provider

import (
	"errors"
	"fmt"
)

// ErrKind is the standardized error taxonomy adapters map vendor failures
// into. server_error is the catch-all.
type ErrKind string

const (
	ErrInvalidRequest ErrKind = "invalid_request"
	ErrAuthentication ErrKind = "authentication"
	ErrModel          ErrKind = "model_error"
	ErrRateLimit      ErrKind = "rate_limit"
	ErrServer         ErrKind = "server_error"
)

// Error is a classified provider failure. It satisfies the error interface
// and is comparable by Kind through errors.As.
type Error struct {
	Kind    ErrKind `json:"error"`
	Message string  `json:"error_message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a classified error, substituting a generic message when the
// vendor supplied none.
func NewError(kind ErrKind, message string) *Error {
	if message == "" {
		message = "unknown error"
	}
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the error kind from err, or ErrServer when err is not a
// classified provider error.
func KindOf(err error) ErrKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrServer
}

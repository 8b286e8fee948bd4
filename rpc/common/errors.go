package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Protocol Errors
// --------------------------------------------------------------------------

var (
	// ErrTransport marks connection level failures (closed, refused, timed out).
	// The in-flight call is lost and nothing is retried.
	ErrTransport = errors.New("pbc: transport error")

	// ErrMalformedFrame marks a frame header that violates the framing rules
	// (truncated header, zero length, oversized body, unexpected message code).
	ErrMalformedFrame = errors.New("pbc: malformed frame")

	// ErrShortRead marks a frame body that ended before its declared length.
	ErrShortRead = errors.New("pbc: short read")
)

// TransportError wraps err so that errors.Is(err, ErrTransport) holds and the cause is kept.
func TransportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}

// --------------------------------------------------------------------------
// Server Error Type
// --------------------------------------------------------------------------

// ServerError is the decoded body of an error-tagged response frame.
// The server reported the failure explicitly, so the connection is still in sync.
type ServerError struct {
	Code    uint32
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("pbc: server error (code %d): %s", e.Code, e.Message)
}

// NewServerError creates a new ServerError with the given code and message.
func NewServerError(code uint32, msg string) *ServerError {
	return &ServerError{
		Code:    code,
		Message: msg,
	}
}

// IsServerError reports whether err carries a ServerError and returns it.
func IsServerError(err error) (*ServerError, bool) {
	var serr *ServerError
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}

package link

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrMalformedURI      = errors.New("malformed uri")
	ErrEncoding          = errors.New("encoding error")
	ErrMissingField      = errors.New("missing field")
)

// DecodeError represents a share link that could not be decoded
type DecodeError struct {
	Kind    error  // One of the Err* sentinels
	Scheme  string // Scheme of the offending link, if known
	Message string // Human-readable error message
	Err     error  // Original error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Scheme != "" {
		msg = e.Scheme + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns a short label for the error kind, suitable for metrics.
func (e *DecodeError) KindName() string {
	switch e.Kind {
	case ErrUnsupportedScheme:
		return "unsupported_scheme"
	case ErrMalformedURI:
		return "malformed_uri"
	case ErrEncoding:
		return "encoding"
	case ErrMissingField:
		return "missing_field"
	default:
		return "unknown"
	}
}

func newDecodeError(kind error, scheme, message string, err error) error {
	return &DecodeError{
		Kind:    kind,
		Scheme:  scheme,
		Message: message,
		Err:     err,
	}
}

package converter

import (
	"errors"
	"fmt"
)

var ErrTemplateParse = errors.New("template parse error")

// ConversionError represents a failure that aborts a whole conversion
type ConversionError struct {
	Kind    error  // ErrTemplateParse
	Message string // Human-readable error message
	Err     error  // Original error
}

func (e *ConversionError) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newTemplateError(message string, err error) error {
	return &ConversionError{
		Kind:    ErrTemplateParse,
		Message: message,
		Err:     err,
	}
}

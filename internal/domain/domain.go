package domain

import (
	"context"
	"time"
)

// LineFailure records a link line that could not be decoded.
type LineFailure struct {
	Line  int
	Link  string
	Error error
}

// Report describes what happened during a single conversion.
type Report struct {
	Converted        []string
	Failed           []LineFailure
	Warnings         []string
	UpdatedSelectors int
	Duration         time.Duration
}

// Exporter delivers a produced configuration document somewhere.
type Exporter interface {
	Export(ctx context.Context, document []byte) error
}

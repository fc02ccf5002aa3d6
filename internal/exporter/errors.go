package exporter

import "fmt"

// ExportError represents a failed delivery by one exporter
type ExportError struct {
	Exporter string // Configured exporter name
	Type     string // Exporter type
	Err      error  // Original error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("exporter %s (%s): %v", e.Exporter, e.Type, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

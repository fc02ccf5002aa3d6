package config

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	ExporterTypeFile    = "file"
	ExporterTypeWebhook = "webhook"
)

// ExporterConfig selects an exporter by type. Type-specific settings stay
// in Raw and are decoded by the exporter itself.
type ExporterConfig struct {
	Type string `json:"type" validate:"required,exporterType"`
	Name string `json:"name"`
	Raw  json.RawMessage
}

func validateExporterType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case ExporterTypeFile, ExporterTypeWebhook:
		return true
	default:
		return false
	}
}

// DisplayName returns the configured name, falling back to the type
func (e *ExporterConfig) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Type
}

func (e *ExporterConfig) UnmarshalJSON(data []byte) error {
	// Store raw data
	e.Raw = data

	// Define an alias type to avoid recursion
	type alias ExporterConfig
	temp := struct {
		*alias
	}{
		alias: (*alias)(e),
	}

	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("failed to unmarshal exporter config: %w", err)
	}

	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid exporter config: %w", err)
	}

	return nil
}

// Ensure required interfaces are implemented
var _ json.Unmarshaler = (*ExporterConfig)(nil)

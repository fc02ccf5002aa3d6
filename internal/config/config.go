package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.json"

// Module provides the configuration loaded from CONFIG_PATH
var Module = fx.Provide(NewConfig)

var validate *validator.Validate

type Config struct {
	Template  TemplateConfig   `json:"template"`
	Server    ServerConfig     `json:"server" validate:"required"`
	Exporters []ExporterConfig `json:"exporters" validate:"dive"`
}

type TemplateConfig struct {
	Path string `json:"path" validate:"omitempty,templateFile"`
}

type ServerConfig struct {
	Addr            string `json:"addr" validate:"required,hostname_port"`
	MaxBodyBytes    int64  `json:"max_body_bytes" validate:"gt=0"`
	ReadTimeout     int    `json:"read_timeout" validate:"gte=0"`
	ShutdownTimeout int    `json:"shutdown_timeout" validate:"gt=0"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    1 << 20,
			ReadTimeout:     10,
			ShutdownTimeout: 15,
		},
	}
}

// NewConfig creates a new Config instance from the environment
func NewConfig() (*Config, error) {
	return Load(os.Getenv("CONFIG_PATH"))
}

// Load reads the configuration at path. An empty path means the default
// config.json, which may be absent; an explicit path must exist.
// Files ending in .yaml or .yml are read as YAML.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only
	default:
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, formatValidationErrors(validationErrors)
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		normalized, err := yamlToJSON(data)
		if err != nil {
			return fmt.Errorf("error parsing config: %w", err)
		}
		data = normalized
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	return nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share the
// json tags and the exporter's raw-config handling.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(doc)
}

// LoadTemplate returns the contents of the configured template file
func (c *Config) LoadTemplate() (string, error) {
	if c.Template.Path == "" {
		return "", fmt.Errorf("no template configured")
	}
	data, err := os.ReadFile(c.Template.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("templateFile", validateTemplateFile); err != nil {
		panic(fmt.Sprintf("failed to register template file validator: %v", err))
	}
	if err := validate.RegisterValidation("exporterType", validateExporterType); err != nil {
		panic(fmt.Sprintf("failed to register exporter type validator: %v", err))
	}
}

func validateTemplateFile(fl validator.FieldLevel) bool {
	info, err := os.Stat(fl.Field().String())
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// formatValidationErrors formats validation errors into a user-friendly error message
func formatValidationErrors(errors validator.ValidationErrors) error {
	var errMsgs []string
	for _, err := range errors {
		errMsgs = append(errMsgs, fmt.Sprintf(
			"field '%s' failed validation: %s",
			err.Namespace(),
			err.Tag(),
		))
	}
	return fmt.Errorf("validation errors: %v", errMsgs)
}

package common

import (
	"go.uber.org/zap"

	"singbox-converter/internal/config"
)

// ServiceOptions defines common options for the application constructor
type ServiceOptions struct {
	Logger *zap.Logger
	Config *config.Config
	Env    string
}

// Option defines a service option modifier
type Option func(*ServiceOptions)

func WithLogger(logger *zap.Logger) Option {
	return func(o *ServiceOptions) {
		o.Logger = logger
	}
}

// WithConfig supplies an already loaded configuration instead of reading
// CONFIG_PATH.
func WithConfig(cfg *config.Config) Option {
	return func(o *ServiceOptions) {
		o.Config = cfg
	}
}

func WithEnv(env string) Option {
	return func(o *ServiceOptions) {
		o.Env = env
	}
}

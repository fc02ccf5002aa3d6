package app

import (
	"context"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"singbox-converter/internal/common"
)

// TestApplication provides testing functionality for the application
type TestApplication struct {
	tb      testing.TB
	testApp *fxtest.App
	options []fx.Option
	service *common.ServiceOptions
}

func NewTestApplication(tb testing.TB, opts ...common.Option) *TestApplication {
	options := &common.ServiceOptions{
		Logger: zap.NewNop(),
		Env:    "test",
	}
	for _, opt := range opts {
		opt(options)
	}

	return &TestApplication{
		tb:      tb,
		service: options,
	}
}

// WithOption adds an fx option, e.g. fx.Populate or fx.Decorate
func (ta *TestApplication) WithOption(opt fx.Option) *TestApplication {
	ta.options = append(ta.options, opt)
	return ta
}

// Validate checks the dependency graph without running constructors
func (ta *TestApplication) Validate() error {
	return fx.ValidateApp(ta.allOptions()...)
}

func (ta *TestApplication) Start(ctx context.Context) error {
	ta.testApp = fxtest.New(ta.tb, ta.allOptions()...)
	return ta.testApp.Start(ctx)
}

func (ta *TestApplication) Stop(ctx context.Context) error {
	if ta.testApp != nil {
		return ta.testApp.Stop(ctx)
	}
	return nil
}

func (ta *TestApplication) allOptions() []fx.Option {
	testOptions := []fx.Option{
		Modules(ta.service),
		fx.NopLogger,
	}

	// Add user-provided options
	testOptions = append(testOptions, ta.options...)

	// Configure test app
	return append(testOptions,
		fx.StartTimeout(10*time.Second),
		fx.StopTimeout(10*time.Second),
	)
}

package app

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"singbox-converter/internal/common"
	"singbox-converter/internal/config"
	"singbox-converter/internal/converter"
	"singbox-converter/internal/exporter"
	"singbox-converter/internal/metrics"
	"singbox-converter/internal/server"
)

type Application struct {
	app    *fx.App
	logger *zap.Logger
}

// Modules returns the fx graph shared by the service and its tests
func Modules(options *common.ServiceOptions) fx.Option {
	configOption := config.Module
	if options.Config != nil {
		configOption = fx.Supply(options.Config)
	}

	return fx.Options(
		// Core modules
		configOption,
		metrics.Module,
		converter.Module,
		exporter.Module,
		server.Module,

		// Provide base dependencies
		fx.Provide(
			func() *zap.Logger { return options.Logger },
			fx.Annotate(
				func() string { return options.Env },
				fx.ResultTags(`name:"env"`),
			),
		),

		// Register lifecycle hooks
		fx.Invoke(registerHooks),
	)
}

func NewApplication(opts ...common.Option) *Application {
	options := &common.ServiceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Ensure required options are set
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	app := &Application{
		logger: options.Logger,
	}

	// Build fx application
	app.app = fx.New(
		Modules(options),

		// Configure fx
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),

		// Set timeouts
		fx.StopTimeout(30*time.Second),
		fx.StartTimeout(30*time.Second),
	)

	return app
}

func (a *Application) Err() error {
	return a.app.Err()
}

func (a *Application) Start(ctx context.Context) error {
	return a.app.Start(ctx)
}

func (a *Application) Stop(ctx context.Context) error {
	if err := a.app.Stop(ctx); err != nil {
		return err
	}
	a.logger.Info("application stopped")
	return nil
}

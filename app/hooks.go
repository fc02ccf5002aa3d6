package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"singbox-converter/internal/config"
	"singbox-converter/internal/exporter"
)

type hookParams struct {
	fx.In

	Logger    *zap.Logger
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Exporters *exporter.Manager
	Env       string `name:"env"`
}

func registerHooks(p hookParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting application",
				zap.String("env", p.Env),
				zap.String("addr", p.Config.Server.Addr),
				zap.String("template", p.Config.Template.Path),
				zap.Int("exporters", p.Exporters.Len()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("stopping application")
			return nil
		},
	})
}

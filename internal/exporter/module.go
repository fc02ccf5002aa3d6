package exporter

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"singbox-converter/internal/config"
	"singbox-converter/internal/domain"
	"singbox-converter/internal/exporter/file"
	"singbox-converter/internal/exporter/webhook"
)

// Module exports the exporter module
var Module = fx.Options(
	fx.Provide(NewManager),
	fx.Provide(func(m *Manager) domain.Exporter { return m }),
)

type namedExporter struct {
	name     string
	kind     string
	exporter domain.Exporter
}

// Manager delivers produced documents to every configured exporter
type Manager struct {
	exporters []namedExporter
	logger    *zap.Logger
	metrics   domain.MetricsCollector
}

func NewManager(cfg *config.Config, logger *zap.Logger, metrics domain.MetricsCollector) (*Manager, error) {
	manager := &Manager{
		logger:  logger,
		metrics: metrics,
	}

	for _, expCfg := range cfg.Exporters {
		exporter, err := createExporter(&expCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create exporter %s: %w", expCfg.DisplayName(), err)
		}
		manager.Add(expCfg.DisplayName(), expCfg.Type, exporter)
	}

	return manager, nil
}

// Add registers an exporter under the given name and type
func (m *Manager) Add(name, kind string, exporter domain.Exporter) {
	m.exporters = append(m.exporters, namedExporter{
		name:     name,
		kind:     kind,
		exporter: exporter,
	})
}

func (m *Manager) Len() int {
	return len(m.exporters)
}

// Export runs every exporter in order. A failing exporter does not stop
// the others; all failures are returned joined.
func (m *Manager) Export(ctx context.Context, document []byte) error {
	var errs []error
	for _, e := range m.exporters {
		err := e.exporter.Export(ctx, document)
		if m.metrics != nil {
			m.metrics.RecordExport(e.kind, err)
		}
		if err != nil {
			m.logger.Error("failed to export document",
				zap.String("exporter", e.name),
				zap.String("type", e.kind),
				zap.Error(err),
			)
			errs = append(errs, &ExportError{Exporter: e.name, Type: e.kind, Err: err})
			continue
		}
		m.logger.Info("document exported",
			zap.String("exporter", e.name),
			zap.String("type", e.kind),
			zap.Int("bytes", len(document)),
		)
	}
	return errors.Join(errs...)
}

func createExporter(cfg *config.ExporterConfig) (domain.Exporter, error) {
	switch cfg.Type {
	case config.ExporterTypeFile:
		return file.New(cfg.Raw)
	case config.ExporterTypeWebhook:
		return webhook.New(cfg.Raw)
	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.Type)
	}
}

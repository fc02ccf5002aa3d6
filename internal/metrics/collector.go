package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"singbox-converter/internal/domain"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Module provides the metrics collector and the registry it writes to
var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Provide(NewCollector),
	fx.Provide(func(c *Collector) domain.MetricsCollector { return c }),
)

// NewRegistry returns a registry holding the Go and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

type Collector struct {
	logger             *zap.Logger
	conversionsTotal   *prometheus.CounterVec
	conversionDuration prometheus.Histogram
	linksTotal         *prometheus.CounterVec
	decodeErrors       *prometheus.CounterVec
	selectorsUpdated   prometheus.Counter
	lastConvertedLinks prometheus.Gauge
	exportsTotal       *prometheus.CounterVec
}

func NewCollector(reg *prometheus.Registry, logger *zap.Logger) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		logger: logger,
		conversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "singbox_conversions_total",
				Help: "Total number of conversions performed",
			},
			[]string{"status"},
		),
		conversionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "singbox_conversion_duration_seconds",
				Help:    "Duration of conversions",
				Buckets: prometheus.DefBuckets,
			},
		),
		linksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "singbox_links_total",
				Help: "Total number of share links processed",
			},
			[]string{"dialect", "status"},
		),
		decodeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "singbox_decode_errors_total",
				Help: "Total number of share links that failed to decode",
			},
			[]string{"kind"},
		),
		selectorsUpdated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "singbox_selectors_updated_total",
				Help: "Total number of selector groups whose members were rewritten",
			},
		),
		lastConvertedLinks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "singbox_last_converted_links",
				Help: "Number of outbounds produced by the latest successful conversion",
			},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "singbox_exports_total",
				Help: "Total number of document exports",
			},
			[]string{"type", "status"},
		),
	}
}

func (c *Collector) RecordConversion(report domain.Report, err error) {
	c.conversionDuration.Observe(report.Duration.Seconds())
	if err != nil {
		c.conversionsTotal.WithLabelValues(statusFailure).Inc()
		return
	}
	c.conversionsTotal.WithLabelValues(statusSuccess).Inc()
	c.selectorsUpdated.Add(float64(report.UpdatedSelectors))
	c.lastConvertedLinks.Set(float64(len(report.Converted)))
}

func (c *Collector) RecordLink(dialect string, ok bool) {
	c.linksTotal.WithLabelValues(dialect, status(ok)).Inc()
}

func (c *Collector) RecordDecodeError(kind string) {
	c.decodeErrors.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordExport(exporterType string, err error) {
	if err != nil {
		c.logger.Debug("recording failed export", zap.String("type", exporterType))
	}
	c.exportsTotal.WithLabelValues(exporterType, status(err == nil)).Inc()
}

func status(ok bool) string {
	if ok {
		return statusSuccess
	}
	return statusFailure
}

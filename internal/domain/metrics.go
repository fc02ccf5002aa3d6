package domain

type MetricsCollector interface {
	RecordConversion(report Report, err error)
	RecordLink(dialect string, ok bool)
	RecordDecodeError(kind string)
	RecordExport(exporterType string, err error)
}

// Package converter turns a block of share links and a sing-box template
// into a new sing-box configuration document.
package converter

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"singbox-converter/internal/catalog"
	"singbox-converter/internal/domain"
	"singbox-converter/internal/link"
	"singbox-converter/internal/tag"
)

const noLinksWarning = "no valid links were converted, the document only holds template and default outbounds"

// Result is the produced document together with what happened on the way.
type Result struct {
	Document []byte
	Report   domain.Report
}

// Converter holds no per-call state and may be shared between goroutines.
type Converter struct {
	logger  *zap.Logger
	metrics domain.MetricsCollector
}

func New(logger *zap.Logger, metrics domain.MetricsCollector) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		logger:  logger,
		metrics: metrics,
	}
}

// Convert decodes every line of links, merges the results into the
// template and rewrites the selector groups. Lines that fail to decode
// are skipped and reported; only a broken template fails the call.
func (c *Converter) Convert(links, template string) (*Result, error) {
	start := time.Now()
	report := domain.Report{}

	result, err := c.convert(links, template, &report)
	report.Duration = time.Since(start)

	if c.metrics != nil {
		c.metrics.RecordConversion(report, err)
	}
	if err != nil {
		c.logger.Error("conversion failed", zap.Error(err))
		return nil, err
	}

	result.Report = report
	c.logger.Info("conversion finished",
		zap.Int("converted", len(report.Converted)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("selectors_updated", report.UpdatedSelectors),
		zap.Duration("duration", report.Duration))
	return result, nil
}

func (c *Converter) convert(links, template string, report *domain.Report) (*Result, error) {
	doc, templateNodes, err := catalog.ParseDocument([]byte(template))
	if err != nil {
		return nil, newTemplateError("invalid template", err)
	}

	outbounds := c.decodeAll(links, report)
	if len(outbounds) == 0 {
		report.Warnings = append(report.Warnings, noLinksWarning)
		c.logger.Warn("no valid links converted, continuing with template and default outbounds")
	}

	built, warnings := catalog.Build(templateNodes, outbounds, c.logger)
	report.Warnings = append(report.Warnings, warnings...)

	rewritten, updated := catalog.Rewrite(built, report.Converted, c.logger)
	report.UpdatedSelectors = updated

	data, err := doc.Render(rewritten)
	if err != nil {
		return nil, err
	}
	return &Result{Document: data}, nil
}

func (c *Converter) decodeAll(block string, report *domain.Report) []catalog.Node {
	lines := link.SplitLines(block)
	outbounds := make([]catalog.Node, 0, len(lines))

	for i, line := range lines {
		decoded, err := link.Decode(line)
		if err != nil {
			c.recordFailure(i+1, line, err, report)
			continue
		}

		t := tag.Format(decoded, len(outbounds)+1)
		outbound, err := catalog.FromLink(decoded, t)
		if err != nil {
			c.recordFailure(i+1, line, err, report)
			continue
		}
		outbounds = append(outbounds, outbound)
		report.Converted = append(report.Converted, t)

		if c.metrics != nil {
			c.metrics.RecordLink(string(decoded.Dialect()), true)
		}
		c.logger.Debug("link converted",
			zap.String("dialect", string(decoded.Dialect())),
			zap.String("tag", t))
	}

	return outbounds
}

func (c *Converter) recordFailure(line int, raw string, err error, report *domain.Report) {
	report.Failed = append(report.Failed, domain.LineFailure{
		Line:  line,
		Link:  raw,
		Error: err,
	})
	report.Warnings = append(report.Warnings, fmt.Sprintf("line %d: %v", line, err))

	c.logger.Warn("failed to convert link",
		zap.Int("line", line),
		zap.Error(err))

	if c.metrics == nil {
		return
	}
	var decodeErr *link.DecodeError
	if errors.As(err, &decodeErr) {
		c.metrics.RecordDecodeError(decodeErr.KindName())
		c.metrics.RecordLink(dialectLabel(decodeErr.Scheme), false)
		return
	}
	c.metrics.RecordDecodeError("unknown")
}

// dialectLabel keeps arbitrary schemes out of metric labels.
func dialectLabel(scheme string) string {
	switch domain.Dialect(scheme) {
	case domain.DialectVMess, domain.DialectVLESS, domain.DialectTrojan:
		return scheme
	default:
		return "other"
	}
}

// Convert runs a conversion without logging or metrics and returns the
// document as a string.
func Convert(links, template string) (string, error) {
	result, err := New(nil, nil).Convert(links, template)
	if err != nil {
		return "", err
	}
	return string(result.Document), nil
}

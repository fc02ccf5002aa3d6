package exporter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"singbox-converter/internal/config"
)

type stubExporter struct {
	err   error
	calls int
}

func (s *stubExporter) Export(context.Context, []byte) error {
	s.calls++
	return s.err
}

func TestNewManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	cfg := config.Default()
	cfg.Exporters = []config.ExporterConfig{
		{Type: config.ExporterTypeFile, Raw: []byte(`{"type": "file", "path": "` + path + `"}`)},
		{Type: config.ExporterTypeWebhook, Name: "ci", Raw: []byte(`{"type": "webhook", "url": "http://127.0.0.1:1/hook"}`)},
	}

	m, err := NewManager(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	cfg.Exporters = append(cfg.Exporters, config.ExporterConfig{Type: "ftp", Raw: []byte(`{}`)})
	_, err = NewManager(cfg, zap.NewNop(), nil)
	assert.Error(t, err)

	cfg.Exporters = []config.ExporterConfig{{Type: config.ExporterTypeFile, Raw: []byte(`{"type": "file"}`)}}
	_, err = NewManager(cfg, zap.NewNop(), nil)
	assert.Error(t, err)
}

func TestManagerExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	cfg := config.Default()
	cfg.Exporters = []config.ExporterConfig{
		{Type: config.ExporterTypeFile, Raw: []byte(`{"type": "file", "path": "` + path + `"}`)},
	}

	m, err := NewManager(cfg, zap.NewNop(), nil)
	require.NoError(t, err)

	failing := &stubExporter{err: errors.New("remote down")}
	after := &stubExporter{}
	m.Add("broken", "webhook", failing)
	m.Add("after", "webhook", after)

	err = m.Export(context.Background(), []byte(`{"outbounds":[]}`))
	require.Error(t, err)

	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "broken", exportErr.Exporter)
	assert.Contains(t, err.Error(), "remote down")

	// Later exporters still run after a failure
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, after.calls)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"outbounds":[]}`, string(data))
}

func TestManagerWithoutExporters(t *testing.T) {
	m, err := NewManager(config.Default(), zap.NewNop(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.NoError(t, m.Export(context.Background(), []byte(`{}`)))
}

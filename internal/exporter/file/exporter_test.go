package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExporter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sing-box.json")

	configJSON, err := json.Marshal(Config{Path: path})
	require.NoError(t, err)

	exporter, err := New(configJSON)
	require.NoError(t, err)

	require.NoError(t, exporter.Export(context.Background(), []byte(`{"outbounds":[1]}`)))
	require.NoError(t, exporter.Export(context.Background(), []byte(`{"outbounds":[2]}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"outbounds":[2]}`, string(data))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileExporterErrors(t *testing.T) {
	_, err := New(json.RawMessage(`{}`))
	assert.Error(t, err)

	missingDir := NewWithPath(filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.Error(t, missingDir.Export(context.Background(), []byte(`{}`)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "out.json")
	assert.ErrorIs(t, NewWithPath(path).Export(ctx, []byte(`{}`)), context.Canceled)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

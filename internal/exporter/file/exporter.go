package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"singbox-converter/internal/domain"
)

var validate = validator.New()

type Config struct {
	Path string `json:"path" validate:"required"`
}

// Exporter writes the document to a file, replacing it atomically
type Exporter struct {
	path string
}

func New(rawConfig json.RawMessage) (domain.Exporter, error) {
	var cfg Config
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("invalid file exporter config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid file exporter config: %w", err)
	}

	return NewWithPath(cfg.Path), nil
}

func NewWithPath(path string) *Exporter {
	return &Exporter{
		path: path,
	}
}

func (e *Exporter) Export(ctx context.Context, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(e.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(e.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	// Removing after a successful rename is a no-op error we ignore
	defer os.Remove(tmpName)

	if _, err := tmp.Write(document); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, e.path); err != nil {
		return fmt.Errorf("failed to move document into place: %w", err)
	}
	return nil
}

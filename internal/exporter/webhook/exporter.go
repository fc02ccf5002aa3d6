package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"singbox-converter/internal/domain"
)

const defaultTimeout = 10 * time.Second

var validate = validator.New()

type Config struct {
	URL     string            `json:"url" validate:"required,url"`
	Headers map[string]string `json:"headers"`
	Timeout int               `json:"timeout" validate:"gte=0"`
}

// Exporter POSTs the document to a URL
type Exporter struct {
	url     string
	headers map[string]string
	client  *http.Client
}

func New(rawConfig json.RawMessage) (domain.Exporter, error) {
	var cfg Config
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("invalid webhook config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid webhook config: %w", err)
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return NewWithClient(cfg.URL, cfg.Headers, &http.Client{Timeout: timeout}), nil
}

func NewWithClient(url string, headers map[string]string, client *http.Client) *Exporter {
	return &Exporter{
		url:     url,
		headers: headers,
		client:  client,
	}
}

func (e *Exporter) Export(ctx context.Context, document []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(document))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %s: %s", resp.Status, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"singbox-converter/internal/config"
	"singbox-converter/internal/converter"
	"singbox-converter/internal/domain"
)

// Module provides the HTTP server and ties it to the application lifecycle
var Module = fx.Options(
	fx.Provide(NewServer),
	fx.Invoke(registerHooks),
)

type Params struct {
	fx.In

	Config    *config.Config
	Converter *converter.Converter
	Exporter  domain.Exporter
	Registry  *prometheus.Registry
	Logger    *zap.Logger
}

type Server struct {
	cfg       *config.Config
	converter *converter.Converter
	exporter  domain.Exporter
	logger    *zap.Logger
	handler   http.Handler
	http      *http.Server

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

func NewServer(p Params) *Server {
	s := &Server{
		cfg:       p.Config,
		converter: p.Converter,
		exporter:  p.Exporter,
		logger:    p.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))

	s.handler = s.withObservability(mux)
	s.http = &http.Server{
		Addr:              p.Config.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: time.Duration(p.Config.Server.ReadTimeout) * time.Second,
		ReadTimeout:       time.Duration(p.Config.Server.ReadTimeout) * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped with request logging
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the configured address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		defer close(s.done)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down and waits for Serve to return
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	s.logger.Info("shutting down http server")
	err := s.http.Shutdown(ctx)

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// Addr returns the bound address once the server has started
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func registerHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"singbox-converter/app"
	"singbox-converter/internal/common"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		application := app.NewApplication(
			common.WithLogger(log),
			common.WithConfig(cfg),
			common.WithEnv(os.Getenv("APP_ENV")),
		)

		// Start with background context
		if err := application.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to start application: %w", err)
		}

		// Wait for shutdown signal
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan

		log.Info("received shutdown signal", zap.String("signal", sig.String()))

		// Stop with timeout
		stopCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := application.Stop(stopCtx); err != nil {
			return fmt.Errorf("failed to stop application gracefully: %w", err)
		}
		return nil
	},
}

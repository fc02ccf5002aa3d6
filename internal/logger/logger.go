package logger

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the console logger used by the CLI.
// If logPath is provided, logs are written to that file (overwriting it).
// Otherwise, they go to stderr so stdout stays free for documents.
// The returned close func flushes the logger and releases the log file.
func New(verbose bool, logPath string) (*zap.Logger, func() error, error) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderConfig.EncodeCaller = nil

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	writer := zapcore.AddSync(os.Stderr)
	closeFn := func() error { return nil }
	if logPath != "" {
		// No color codes in files
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create log file: %w", err)
		}
		writer = zapcore.AddSync(f)
		closeFn = func() error { return errors.Join(f.Sync(), f.Close()) }
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		writer,
		level,
	)
	return zap.New(core), closeFn, nil
}

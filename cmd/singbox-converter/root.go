package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"singbox-converter/internal/config"
	"singbox-converter/internal/logger"
)

var (
	cfgFile string
	verbose bool
	logFile string

	log      = zap.NewNop()
	closeLog func() error
)

var rootCmd = &cobra.Command{
	Use:           "singbox-converter",
	Short:         "Convert vmess/vless/trojan share links into a sing-box configuration",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, closeFn, err := logger.New(verbose, logFile)
		if err != nil {
			return err
		}
		log, closeLog = l, closeFn
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		releaseLogger()
	},
}

func Execute() {
	err := rootCmd.Execute()
	// PersistentPostRun is skipped when a command fails
	releaseLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// releaseLogger flushes the logger and closes the --log-file handle. It is
// safe to call more than once.
func releaseLogger() {
	_ = log.Sync()
	if closeLog != nil {
		_ = closeLog()
		closeLog = nil
	}
	log = zap.NewNop()
}

// loadConfig honours --config first, then CONFIG_PATH
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return config.Load(path)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.json, or $CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr (overwrites file)")

	rootCmd.AddCommand(convertCmd, serveCmd)
}

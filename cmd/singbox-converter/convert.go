package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"singbox-converter/internal/converter"
	"singbox-converter/internal/exporter"
	"singbox-converter/internal/exporter/file"
)

var (
	linksPath    string
	templatePath string
	outputPath   string
	runExporters bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a list of share links using a template",
	Long: `Reads one share link per line (from --links or stdin), merges them into the
template and writes the resulting sing-box configuration to --output or stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		links, err := readInput(cmd.InOrStdin(), linksPath)
		if err != nil {
			return fmt.Errorf("failed to read links: %w", err)
		}

		var template string
		if templatePath != "" {
			template, err = readInput(nil, templatePath)
		} else {
			template, err = cfg.LoadTemplate()
		}
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}

		result, err := converter.New(log, nil).Convert(links, template)
		if err != nil {
			return err
		}
		for _, w := range result.Report.Warnings {
			log.Warn(w)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if outputPath != "" {
			if err := file.NewWithPath(outputPath).Export(ctx, result.Document); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			log.Info("configuration written",
				zap.String("path", outputPath),
				zap.Int("outbounds", len(result.Report.Converted)))
		} else {
			out := cmd.OutOrStdout()
			if _, err := out.Write(append(result.Document, '\n')); err != nil {
				return err
			}
		}

		if !runExporters {
			return nil
		}
		manager, err := exporter.NewManager(cfg, log, nil)
		if err != nil {
			return err
		}
		return manager.Export(ctx, result.Document)
	},
}

// readInput reads path, or stdin when path is empty or "-"
func readInput(stdin io.Reader, path string) (string, error) {
	if (path == "" || path == "-") && stdin != nil {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	convertCmd.Flags().StringVarP(&linksPath, "links", "l", "", "file with one share link per line (default stdin)")
	convertCmd.Flags().StringVarP(&templatePath, "template", "t", "", "sing-box template (default is template.path from config)")
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the configuration to this file instead of stdout")
	convertCmd.Flags().BoolVar(&runExporters, "export", false, "also run the exporters from the config file")
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fpsemi/semigroups/pkg/config"
	"github.com/fpsemi/semigroups/pkg/report"
	"github.com/fpsemi/semigroups/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
	cfg    *config.Config
	sink   report.Sink

	otelShutdown report.ShutdownFunc = func(context.Context) error { return nil }
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "semigroups",
	Short: "Enumerate finite semigroups and their congruences",
	Long: `semigroups enumerates the elements of a finitely presented semigroup
or transformation monoid (Froidure-Pin) and the classes of a two-sided,
left, or right congruence on it (Todd-Coxeter / congruence dispatcher).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded

		logLevelName := cfg.Log.Level
		if verbose {
			logLevelName = "debug"
		}
		logger = utils.NewLoggerFromLevelString(logLevelName, os.Stdout)

		switch cfg.Reporting.Sink {
		case "log":
			sink = report.NewLogSink(logger)
		case "otel":
			otelSink, shutdown, err := report.NewOtelSink(cmd.Context(), report.OtelConfig{
				Endpoint:    cfg.Reporting.OtelEndpoint,
				Protocol:    cfg.Reporting.OtelProtocol,
				Insecure:    cfg.Reporting.OtelInsecure,
				ServiceName: cfg.Reporting.ServiceName,
			})
			if err != nil {
				return fmt.Errorf("initialising otel reporting sink: %w", err)
			}
			sink = otelSink
			otelShutdown = shutdown
		default:
			sink = report.NoopSink
		}
		report.SetGlobalSink(sink)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return otelShutdown(context.Background())
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (defaults: ./config.yaml, /etc/semigroups)")

	binName := BinName()
	rootCmd.Example = `  # Enumerate the transformation monoid generated by a JSON generator file
  ` + binName + ` enumerate -i ./generators.json

  # Enumerate a congruence from a JSON presentation file
  ` + binName + ` congruence -i ./presentation.json

  # Verbose output with OTel reporting, using a custom config file
  ` + binName + ` --verbose --config ./semigroups.yaml enumerate -i ./generators.json`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// GetSink returns the configured reporting sink.
func GetSink() report.Sink {
	return sink
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}

// Trafficled is the client for the traffic LED board.
//
// It checks the update server for new firmware, downloads the live and
// typical speed files, and renders them as coloured LED boards, either once
// or continuously.
//
// Usage:
//
//	trafficled [command] [flags]
//
// See 'trafficled --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bearanvil/trafficled/internal/config"
	"github.com/bearanvil/trafficled/internal/logging"
	"github.com/bearanvil/trafficled/internal/metrics"
	"github.com/bearanvil/trafficled/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if werr := writeMetrics(); werr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", werr)
	}
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	cfgPath         string
	logLevel        string
	metricsTextfile string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config

	// collector is only created when metrics are exported.
	collector *metrics.Collector
)

var rootCmd = &cobra.Command{
	Use:   "trafficled",
	Short: "Traffic LED board client",
	Long: `Client for the traffic LED board.

Checks the update server for new firmware and downloads live and typical
road speeds from the data server, colouring each LED slow, medium or fast.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = c

		collector = nil
		if metricsTextfile != "" || metricsAddr != "" {
			collector = metrics.New()
		}

		level := logLevel
		if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
			level = cfg.LogLevel
		}
		return logging.Initialize(level)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (.yaml or .toml, default per-user location)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit (node_exporter textfile format)")

	rootCmd.AddCommand(checkUpdateCmd, speedsCmd, watchCmd, discoverCmd, configCmd, versionCmd)
}

// writeMetrics exports the collector to --metrics-textfile, if both are set.
func writeMetrics() error {
	if collector == nil || metricsTextfile == "" {
		return nil
	}
	if err := collector.WriteTextfile(metricsTextfile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "trafficled %s\n", version.Full())
	},
}

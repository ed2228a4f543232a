// cleancheck evaluates cleaning-agent sensor alerts against maintenance
// work orders and reports true positives, false positives and false negatives.
//
// Installation:
//
//	go build -o cleancheck ./cmd/cleancheck
//	mv cleancheck /usr/local/bin/
//
// Usage:
//
//	cleancheck evaluate -s sensor.xlsx -m requests.csv
//	cleancheck evaluate -s sensor.csv -m requests.csv --window 90m -o json
//	cleancheck evaluate -s sensor.csv -m requests.csv --export ~/reports
//	cleancheck version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version    = "dev"
	outputFmt  string
	configFile string
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cleancheck",
		Short: "Evaluate cleaning-agent detection against maintenance records",
		Long: `cleancheck measures how well elevator cleaning-agent sensors predict
maintenance cleaning work.

It reads a sensor alert export and a maintenance request export (CSV or XLSX),
matches each alert to the first work order created within the match window,
and reports true positives, false positives and false negatives.

Every flag can also be set in a config file (--config) or through a
CLEANCHECK_* environment variable, e.g. CLEANCHECK_WINDOW=90m.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// newLogger builds the production JSON logger on stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(lvl)
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return logConfig.Build()
}

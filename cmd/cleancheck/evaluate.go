package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/potooio/cleancheck/internal/config"
	"github.com/potooio/cleancheck/internal/correlator"
	"github.com/potooio/cleancheck/internal/evaluator"
	"github.com/potooio/cleancheck/internal/normalizer"
	"github.com/potooio/cleancheck/internal/report"
)

type evaluateOptions struct {
	sensorFile      string
	maintenanceFile string
	export          string
	metricsFile     string
	details         bool
}

// boundFlags are evaluate flags whose values flow through viper.
var boundFlags = []string{
	config.KeyWindow,
	config.KeyRepeatSuppression,
	config.KeyStatusKeyword,
	config.KeyTimezone,
	config.KeyLocation,
	config.KeyMaxEvents,
}

func evaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Classify sensor alerts and work orders as TP, FP or FN",
		Long: `Evaluate one sensor export against one maintenance export.

Alerts whose status does not mention the status keyword are ignored, as are
re-triggers of the same alert ID within the repeat-suppression interval.
Both exports are reduced to a single elevator and to the period they both
cover before matching.

Examples:
  # Evaluate with the default one hour window
  cleancheck evaluate -s sensor.xlsx -m requests.csv

  # Pick one elevator when the sensor export covers several
  cleancheck evaluate -s sensor.xlsx -m requests.csv --location dtx/101

  # Write the detail workbook to a directory and print JSON
  cleancheck evaluate -s sensor.xlsx -m requests.csv --export ./out -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.sensorFile, "sensor-file", "s", "", "Sensor alert export (.csv or .xlsx)")
	cmd.Flags().StringVarP(&opts.maintenanceFile, "maintenance-file", "m", "", "Maintenance request export (.csv or .xlsx)")
	cmd.Flags().StringVar(&opts.export, "export", "", "Write the detail workbook to this .xlsx file, or into this directory (created if missing)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	cmd.Flags().BoolVar(&opts.details, "details", false, "Include per-event detail tables in the output")

	cmd.Flags().Duration(config.KeyWindow, correlator.DefaultWindow, "Maximum gap between an alert and its work order")
	cmd.Flags().Duration(config.KeyRepeatSuppression, normalizer.DefaultRepeatSuppression, "Ignore re-triggers of the same alert ID within this interval")
	cmd.Flags().String(config.KeyStatusKeyword, normalizer.DefaultStatusKeyword, "Alert status substring selecting cleaning alerts")
	cmd.Flags().String(config.KeyTimezone, "UTC", "Time zone of the timestamps in both exports")
	cmd.Flags().String(config.KeyLocation, "", "Elevator to evaluate as zone/elevator, e.g. dtx/101")
	cmd.Flags().Int(config.KeyMaxEvents, 0, "Reject runs with more events than this (0 = unlimited)")

	_ = cmd.MarkFlagRequired("sensor-file")
	_ = cmd.MarkFlagRequired("maintenance-file")

	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions) error {
	v := config.NewViper()
	for _, name := range boundFlags {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	if f := cmd.Flag(config.KeyLogLevel); f != nil {
		if err := v.BindPFlag(config.KeyLogLevel, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", config.KeyLogLevel, err)
		}
	}

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rep, err := evaluator.New(cfg, logger).Evaluate(ctx, evaluator.Sources{
		SensorFile:      opts.sensorFile,
		MaintenanceFile: opts.maintenanceFile,
	})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	result := newEvaluateResult(rep, opts.details)

	if opts.export != "" {
		path, err := report.ExportXLSX(opts.export, rep)
		switch {
		case errors.Is(err, report.ErrNothingToExport):
			logger.Info("No results to export")
		case err != nil:
			return err
		default:
			logger.Info("Wrote results file", zap.String("path", path))
			result.ExportFile = path
		}
	}

	if opts.metricsFile != "" {
		if err := evaluator.WriteMetrics(opts.metricsFile); err != nil {
			return err
		}
	}

	return outputResult(result, outputFmt)
}

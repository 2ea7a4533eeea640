// SPDX-License-Identifier: MIT

// Command efa runs an exploratory factor analysis over a CSV file.
//
//	efa analyze --data survey.csv --config efa.yaml --format json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvfactor/config"
	"github.com/katalvlaran/lvfactor/efa"
	"github.com/katalvlaran/lvfactor/internal/csvdata"
)

var (
	verbose bool
	timeout time.Duration

	dataPath    string
	configPath  string
	outputPath  string
	format      string
	metricsPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "efa",
	Short:         "Exploratory factor analysis",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the numeric columns of a CSV file",
	Long: `Reads a header-first CSV file (empty, NA, NaN and "." cells are missing),
runs extraction, rotation and scoring as configured, and writes the result.

Columns listed under valueVariables in the config are correlated with the
factor scores instead of being analyzed. When the config lists variables,
only those columns are analyzed.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Analysis timeout")

	analyzeCmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV data file (required)")
	analyzeCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	analyzeCmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	analyzeCmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	_ = analyzeCmd.MarkFlagRequired("data")

	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q", format)
	}

	file := config.Default()
	if configPath != "" {
		var err error
		if file, err = config.LoadFromFile(configPath); err != nil {
			return err
		}
	}
	engineCfg, err := file.EngineConfig()
	if err != nil {
		return err
	}

	req, err := loadRequest(dataPath, file)
	if err != nil {
		return err
	}
	req.Config = engineCfg

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reg := prometheus.NewRegistry()
	eng := efa.New(efa.WithLogger(logger), efa.WithMetrics(efa.NewMetrics(reg)))
	logger.Debug("starting analysis",
		zap.String("data", dataPath),
		zap.Int("variables", len(req.TargetDefs)),
		zap.String("extraction", engineCfg.Extraction.String()),
		zap.String("rotation", engineCfg.Rotation.String()))
	res := eng.Analyze(ctx, req)

	if err = writeResult(res); err != nil {
		return err
	}
	if metricsPath != "" {
		if err = prometheus.WriteToTextfile(metricsPath, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if res.Status == efa.StatusFailed || res.Status == efa.StatusCancelled {
		return fmt.Errorf("analysis %s: %s", res.Status, res.ErrorText())
	}

	return nil
}

func loadRequest(path string, file *config.File) (efa.Request, error) {
	fh, err := os.Open(filepath.Clean(path))
	if err != nil {
		return efa.Request{}, fmt.Errorf("open data file: %w", err)
	}
	defer fh.Close()

	frame, err := csvdata.Read(fh)
	if err != nil {
		return efa.Request{}, err
	}
	td, tdefs, vd, vdefs, err := frame.Split(file.Variables, file.ValueVariables)
	if err != nil {
		return efa.Request{}, err
	}

	return efa.Request{TargetData: td, TargetDefs: tdefs, ValueData: vd, ValueDefs: vdefs}, nil
}

func writeResult(res *efa.Result) error {
	var w io.Writer = os.Stdout
	if outputPath != "" {
		fh, err := os.Create(filepath.Clean(outputPath))
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer fh.Close()
		w = fh
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}

		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}

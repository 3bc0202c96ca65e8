package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/proforma/internal/config"
	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/output"
	"github.com/iwvelando/proforma/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// CLI override takes precedence
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = strings.ToLower(logLevelOverride)
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	// Logs go to stderr unless a file is configured so rendered output on
	// stdout stays clean.
	cfg.OutputPaths = []string{"stderr"}
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		cfg.OutputPaths = []string{loggingConfig.OutputFile}
		cfg.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return cfg.Build()
}

// writeOutput renders the forecast to the output file, or stdout when none
// is set.
func writeOutput(f *forecast.Forecast, format, outputFile string) (err error) {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		file, createErr := os.Create(outputFile)
		if createErr != nil {
			return fmt.Errorf("failed to create output file %s: %w", outputFile, createErr)
		}
		defer func() {
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
		}()
		w = file
	}
	return output.Render(w, f, format)
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to deal file")
	outputFormatFlag := flag.String("output-format", "", "output format override: pretty, csv, json, yaml, xlsx")
	outputFileFlag := flag.String("output-file", "", "write output to this file instead of stdout")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	optimize := flag.Bool("optimize", false, "run the exit scenario optimizer")
	runSensitivity := flag.Bool("sensitivity", false, "run sensitivity analysis")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	runID := uuid.NewString()
	logger = logger.With(zap.String("runId", runID))

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid deal file",
			zap.String("op", "main"),
			zap.String("config", *configLocation),
			zap.Error(err),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// CLI overrides take precedence over the deal file
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = strings.ToLower(*outputFormatFlag)
	}
	outputFile := conf.Output.File
	if *outputFileFlag != "" {
		outputFile = *outputFileFlag
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	if err := validation.ValidateOutputTarget(outputFormat, outputFile); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	results, err := forecast.GetForecast(context.Background(), logger, *conf, forecast.Options{
		RunID:       runID,
		Optimize:    *optimize,
		Sensitivity: *runSensitivity,
	})
	if err != nil {
		logger.Fatal("failed to compute forecast",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := writeOutput(results, outputFormat, outputFile); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.String("format", outputFormat),
			zap.Error(err),
		)
	}
}

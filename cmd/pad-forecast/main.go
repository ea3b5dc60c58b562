package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bapenda-labs/pad-forecast/internal/config"
	"github.com/bapenda-labs/pad-forecast/internal/projection"
	"github.com/bapenda-labs/pad-forecast/internal/server"
	"github.com/bapenda-labs/pad-forecast/pkg/audit"
	"github.com/bapenda-labs/pad-forecast/pkg/constants"
	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
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

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot projection")
	addr := flag.String("addr", "", "listen address override for -serve")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		logger.Fatal(fmt.Sprintf("invalid output format: %s", outputFormat),
			zap.String("op", "main"),
		)
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	hist, err := dataset.LoadHistoricalCSV(conf.Datasets.Historical)
	if err != nil {
		logger.Fatal("failed to load historical dataset",
			zap.String("op", "main"),
			zap.String("path", conf.Datasets.Historical),
			zap.Error(err),
		)
	}
	pkbInputs, err := dataset.LoadStructuralCSV(conf.Datasets.PKBInputs)
	if err != nil {
		logger.Fatal("failed to load PKB structural inputs",
			zap.String("op", "main"),
			zap.String("path", conf.Datasets.PKBInputs),
			zap.Error(err),
		)
	}
	bbnkbInputs, err := dataset.LoadStructuralCSV(conf.Datasets.BBNKBInputs)
	if err != nil {
		logger.Fatal("failed to load BBNKB structural inputs",
			zap.String("op", "main"),
			zap.String("path", conf.Datasets.BBNKBInputs),
			zap.Error(err),
		)
	}

	trail := audit.NewLogger(conf.Audit.Path)

	if *serve {
		address := conf.Server.Address
		if *addr != "" {
			address = *addr
		}
		handler := server.NewHandler(logger, conf, hist, pkbInputs, bbnkbInputs, trail, version)
		logger.Info("starting HTTP API",
			zap.String("op", "main"),
			zap.String("address", address),
		)
		if err := http.ListenAndServe(address, handler); err != nil {
			logger.Fatal("HTTP server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	result, err := projection.Run(logger, conf, hist, pkbInputs, bbnkbInputs)
	if err != nil {
		logger.Fatal("failed to compute projection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := trail.Record(conf.Audit.Actor, "report_generated", map[string]string{
		"startYear": fmt.Sprintf("%d", result.StartYear),
		"years":     fmt.Sprintf("%d", len(result.Years)),
	}); err != nil {
		logger.Warn("failed to record audit entry",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(result)
	case constants.OutputFormatCSV:
		output.CsvFormat(result)
	}
}

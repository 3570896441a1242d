package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/roller-forecast/internal/config"
	"github.com/iwvelando/roller-forecast/internal/forecast"
	"github.com/iwvelando/roller-forecast/internal/recorder"
	"github.com/iwvelando/roller-forecast/internal/server"
	"github.com/iwvelando/roller-forecast/pkg/constants"
	"github.com/iwvelando/roller-forecast/pkg/output"
	"github.com/iwvelando/roller-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type forecastOptions struct {
	configPath   string
	outputFormat string
	logLevel     string
}

type serveOptions struct {
	configPath string
	address    string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The root command runs a forecast.
func newRootCmd() *cobra.Command {
	opts := &forecastOptions{}
	root := &cobra.Command{
		Use:          "roller-forecast",
		Short:        "Project balance and mining power for queued upgrade scenarios",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForecast(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	bindForecastFlags(root, opts)

	root.AddCommand(newForecastCmd(), newServeCmd())
	return root
}

func bindForecastFlags(cmd *cobra.Command, opts *forecastOptions) {
	cmd.Flags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func newForecastCmd() *cobra.Command {
	opts := &forecastOptions{}
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Run every active scenario and print the projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForecast(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	bindForecastFlags(cmd, opts)
	return cmd
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&opts.address, "address", "", "listen address override")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	return cmd
}

func runForecast(ctx context.Context, out io.Writer, opts *forecastOptions) error {
	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	results, err := forecast.GetForecast(ctx, logger, *conf)
	if err != nil {
		if results == nil {
			return fmt.Errorf("failed to compute forecast: %w", err)
		}
		// Failed scenarios are reported in the output alongside the others.
		logger.Warn("some scenarios could not be projected",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if conf.Recorder.SQLitePath != "" {
		recordRun(ctx, logger, conf.Recorder.SQLitePath, results)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(out, results)
	case constants.OutputFormatCSV:
		return output.CsvFormat(out, results)
	case constants.OutputFormatJSON:
		return output.JSONFormat(out, results)
	}
	return nil
}

// recordRun stores results in the run history. Failures are logged only; the
// forecast itself is still printed.
func recordRun(ctx context.Context, logger *zap.Logger, path string, results []forecast.Forecast) {
	rec, err := recorder.NewSQLiteRecorder(path, logger)
	if err != nil {
		logger.Warn("failed to open run history",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	}
	defer rec.Close()

	days := 0
	for _, result := range results {
		if result.OK() && result.Trajectory.Len() > days {
			days = result.Trajectory.Len()
		}
	}

	run := recorder.NewRun("cli", days)
	run.AddResults(results)
	if err := rec.RecordRun(ctx, run); err != nil {
		logger.Warn("failed to record run",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	}
	logger.Info("run recorded",
		zap.String("op", "main"),
		zap.String("run", run.ID.String()),
	)
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := server.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.address != "" {
		cfg.Address = opts.address
	}

	logger, err := initializeLogger(cfg.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Recorder.SQLitePath != "" {
		sqliteRec, err := recorder.NewSQLiteRecorder(cfg.Recorder.SQLitePath, logger)
		if err != nil {
			return err
		}
		rec = sqliteRec
	}
	defer rec.Close()

	serverVersion := cfg.Version
	if serverVersion == "" {
		serverVersion = version
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), serverVersion, rec),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main.runServe"),
			zap.String("address", cfg.Address),
			zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down", zap.String("op", "main.runServe"))
	return srv.Shutdown(shutdownCtx)
}

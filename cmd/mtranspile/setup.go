package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"calculette-hq/mtranspile/pkg/build"
	"calculette-hq/mtranspile/pkg/cli"
	"calculette-hq/mtranspile/pkg/config"
	"calculette-hq/mtranspile/pkg/state"
	"calculette-hq/mtranspile/pkg/telemetry/logging"
	"calculette-hq/mtranspile/pkg/telemetry/metrics"
	"calculette-hq/mtranspile/pkg/telemetry/tracing"
)

// loadConfig loads the config file and the environment, then applies the
// json_dir argument and the command flags through override.
func loadConfig(args []string, override func(cfg *config.Config)) (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}

	if len(args) > 0 {
		cfg.Input.Dir = args[0]
	}
	if override != nil {
		override(cfg)
	}
	switch {
	case debug:
		cfg.Telemetry.Logging.Level = "debug"
	case verbose:
		cfg.Telemetry.Logging.Level = "info"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError("flags", err.Error())
	}
	if cfg.Input.Dir == "" && !cfg.Input.Git.Enabled {
		return nil, cli.NewConfigError("json_dir", "AST directory is required")
	}
	return cfg, nil
}

// app holds the collaborators of a command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	store   state.Store
	builder *build.Builder
}

// newApp wires logging, metrics, tracing and, when withStore is set, the
// state store into a builder.
func newApp(cmd *cobra.Command, cfg *config.Config, withStore bool) (*app, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:  tracer,
	}

	if withStore {
		a.store, err = state.Open(&cfg.State)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
	}

	a.builder = build.NewBuilder(cfg).
		WithLogger(logger).
		WithMetrics(a.metrics).
		WithTracer(tracer)
	if a.store != nil {
		a.builder.WithStore(a.store)
	}
	return a, nil
}

// Close flushes the spans and closes the state store.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("state store close: %w", err))
		}
	}
	return errors.Join(errs...)
}

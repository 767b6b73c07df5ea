package main

import (
	"github.com/spf13/cobra"

	"calculette-hq/mtranspile/pkg/cli"
	"calculette-hq/mtranspile/pkg/config"
	"calculette-hq/mtranspile/pkg/telemetry/logging"
	"calculette-hq/mtranspile/pkg/watch"
)

var watchFlags struct {
	application    string
	output         string
	schedule       string
	metricsAddress string
}

var watchCmd = &cobra.Command{
	Use:   "watch [json_dir]",
	Short: "Rebuild whenever the AST files change",
	Long: `Build once, then rebuild whenever a JSON file of json_dir changes and on
the optional cron schedule. Stops on SIGINT or SIGTERM.

Examples:
  # Rebuild on change
  mtranspile watch ./json

  # Also rebuild every 15 minutes and expose Prometheus metrics
  mtranspile watch ./json --schedule "*/15 * * * *" --metrics-address :9090`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.application, "application", "a", "", "application to translate (default: batch)")
	watchCmd.Flags().StringVarP(&watchFlags.output, "output", "o", "", "output directory (default: generated)")
	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", "cron expression for scheduled rebuilds")
	watchCmd.Flags().StringVar(&watchFlags.metricsAddress, "metrics-address", "", "serve Prometheus metrics on this address")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args, func(cfg *config.Config) {
		if watchFlags.application != "" {
			cfg.Transpile.Application = watchFlags.application
		}
		if watchFlags.output != "" {
			cfg.Output.Dir = watchFlags.output
		}
		if watchFlags.schedule != "" {
			cfg.Watch.Schedule = watchFlags.schedule
		}
		if watchFlags.metricsAddress != "" {
			cfg.Watch.MetricsAddress = watchFlags.metricsAddress
		}
	})
	if err != nil {
		return err
	}

	a, err := newApp(cmd, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := watch.New(cfg, a.builder)
	if err != nil {
		return cli.NewConfigError("watch.schedule", err.Error())
	}
	w.WithLogger(logging.Component(a.logger, "watch")).WithMetrics(a.metrics)

	if err := w.Run(cmd.Context()); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

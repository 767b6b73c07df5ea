package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"calculette-hq/mtranspile/pkg/build"
	"calculette-hq/mtranspile/pkg/cli"
	"calculette-hq/mtranspile/pkg/config"
)

var buildFlags struct {
	application string
	json        string
	output      string
	saveState   bool
	loadState   bool
	progress    bool
}

var buildCmd = &cobra.Command{
	Use:   "build [json_dir]",
	Short: "Translate an AST directory into Python",
	Long: `Translate the JSON AST files of json_dir into Python sources.

The variable definitions file (tgvH.json by default) is always loaded.
Rule files (chap-*.json, res-ser*.json) and verification files (coc*.json,
coi*.json) are translated for the selected application, then the formulas
are ordered by dependency and written to the output directory.

Examples:
  # Translate the batch application
  mtranspile build ./json

  # Translate the iliad application into another directory
  mtranspile build ./json --application iliad --output ./py

  # Translate one file only; nothing is ordered or written
  mtranspile build ./json --json chap-1.json

  # Save the translation state and stop
  mtranspile build ./json --save-state

  # Order and emit from the saved state
  mtranspile build ./json --load-state`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildFlags.application, "application", "a", "", "application to translate (default: batch)")
	buildCmd.Flags().StringVar(&buildFlags.json, "json", "", "translate only this rule or verification file")
	buildCmd.Flags().StringVarP(&buildFlags.output, "output", "o", "", "output directory (default: generated)")
	buildCmd.Flags().BoolVar(&buildFlags.saveState, "save-state", false, "save the translation state and exit")
	buildCmd.Flags().BoolVar(&buildFlags.loadState, "load-state", false, "order and emit from the saved state")
	buildCmd.Flags().BoolVar(&buildFlags.progress, "progress", false, "show translation progress on stderr")
	buildCmd.MarkFlagsMutuallyExclusive("save-state", "load-state")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildFlags.saveState && buildFlags.loadState {
		return cli.NewConfigError("save-state", "--save-state and --load-state are exclusive")
	}

	cfg, err := loadConfig(args, func(cfg *config.Config) {
		if buildFlags.application != "" {
			cfg.Transpile.Application = buildFlags.application
		}
		if buildFlags.output != "" {
			cfg.Output.Dir = buildFlags.output
		}
	})
	if err != nil {
		return err
	}

	a, err := newApp(cmd, cfg, buildFlags.saveState || buildFlags.loadState)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := build.Options{
		Trigger:   build.TriggerCLI,
		File:      buildFlags.json,
		SaveState: buildFlags.saveState,
		LoadState: buildFlags.loadState,
	}
	if buildFlags.progress {
		opts.Progress = cli.NewLabeledProgress(cmd.ErrOrStderr(), "Translating", "files")
	}

	res, err := a.builder.Run(cmd.Context(), opts)
	if err != nil {
		return cli.NewCommandError("build", err)
	}

	return cli.NewFormatter(cli.FormatText).FormatTo(cmd.OutOrStdout(), newBuildSummary(cfg, res))
}

// buildSummary is the result printed by the build command.
type buildSummary struct {
	RunID         string   `json:"run_id"`
	Application   string   `json:"application"`
	Revision      string   `json:"revision,omitempty"`
	Variables     int      `json:"variables"`
	Formulas      int      `json:"formulas"`
	Verifications int      `json:"verifications"`
	Ordered       int      `json:"ordered"`
	Passes        int      `json:"passes"`
	Placeholders  int      `json:"placeholders"`
	StateSaved    bool     `json:"state_saved,omitempty"`
	Written       []string `json:"written,omitempty"`
	DurationMS    int64    `json:"duration_ms"`
}

func newBuildSummary(cfg *config.Config, res *build.Result) buildSummary {
	return buildSummary{
		RunID:         res.RunID.String(),
		Application:   cfg.Transpile.Application,
		Revision:      res.Revision,
		Variables:     res.Variables.Total(),
		Formulas:      res.Formulas,
		Verifications: res.Verifications,
		Ordered:       len(res.Ordered),
		Passes:        res.Passes,
		Placeholders:  res.Placeholders,
		StateSaved:    res.StateSaved,
		Written:       res.Written,
		DurationMS:    res.Duration.Milliseconds(),
	}
}

// Rows implements cli.Table.
func (s buildSummary) Rows() [][]string {
	rows := [][]string{
		{"Run:", s.RunID},
		{"Application:", s.Application},
	}
	if s.Revision != "" {
		rows = append(rows, []string{"Revision:", s.Revision})
	}
	rows = append(rows,
		[]string{"Variables:", strconv.Itoa(s.Variables)},
		[]string{"Formulas:", strconv.Itoa(s.Formulas)},
		[]string{"Verifications:", strconv.Itoa(s.Verifications)},
	)
	if s.Ordered > 0 {
		rows = append(rows, []string{"Ordered:", fmt.Sprintf("%d in %d passes (%d placeholders)", s.Ordered, s.Passes, s.Placeholders)})
	}
	if s.StateSaved {
		rows = append(rows, []string{"State:", "saved"})
	}
	if len(s.Written) > 0 {
		names := make([]string, len(s.Written))
		for i, p := range s.Written {
			names[i] = filepath.Base(p)
		}
		rows = append(rows, []string{"Written:", strings.Join(names, ", ")})
	}
	rows = append(rows, []string{"Duration:", fmt.Sprintf("%dms", s.DurationMS)})
	return rows
}

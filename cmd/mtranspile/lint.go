package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"calculette-hq/mtranspile/pkg/build"
	"calculette-hq/mtranspile/pkg/cli"
	"calculette-hq/mtranspile/pkg/config"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

var lintFlags struct {
	application string
	strict      bool
	format      string
}

var lintCmd = &cobra.Command{
	Use:   "lint [json_dir]",
	Short: "Check that an AST directory translates",
	Long: `Translate and order the JSON AST files of json_dir without writing
anything.

The lint command reports:
  - fatal translation errors (unknown node kinds, malformed nodes)
  - dependency cycles between formulas
  - formulas ordered without a translation (placeholders)

Examples:
  # Lint the batch application
  mtranspile lint ./json

  # Duplicate formula definitions are errors
  mtranspile lint ./json --strict

  # JSON output for CI/CD
  mtranspile lint ./json --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: lintAST,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.application, "application", "a", "", "application to translate (default: batch)")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat duplicate formulas as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintAST(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(args, func(cfg *config.Config) {
		if lintFlags.application != "" {
			cfg.Transpile.Application = lintFlags.application
		}
		if lintFlags.strict {
			cfg.Transpile.Strict = true
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

	res, runErr := a.builder.Run(cmd.Context(), build.Options{Trigger: build.TriggerCLI, Lint: true})
	report := newLintReport(cfg, res, runErr)

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if runErr != nil {
		return cli.NewCommandError("lint", runErr)
	}
	return nil
}

// LintReport is the result printed by the lint command.
type LintReport struct {
	Valid         bool         `json:"valid"`
	Application   string       `json:"application"`
	Formulas      int          `json:"formulas"`
	Verifications int          `json:"verifications"`
	Ordered       int          `json:"ordered"`
	Passes        int          `json:"passes"`
	Errors        []Diagnostic `json:"errors,omitempty"`
	Warnings      []Diagnostic `json:"warnings,omitempty"`
}

// Diagnostic is one lint finding.
type Diagnostic struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Location   string `json:"location,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func newLintReport(cfg *config.Config, res *build.Result, err error) LintReport {
	report := LintReport{
		Valid:       err == nil,
		Application: cfg.Transpile.Application,
	}
	if res != nil {
		report.Formulas = res.Formulas
		report.Verifications = res.Verifications
		report.Ordered = len(res.Ordered)
		report.Passes = res.Passes
		for _, d := range res.Diagnostics {
			report.Warnings = append(report.Warnings, newDiagnostic(d))
		}
	}
	if err == nil {
		return report
	}

	var list *mlangErrors.ErrorList
	var single *mlangErrors.Error
	switch {
	case errors.As(err, &list):
		for _, e := range list.Errors {
			report.Errors = append(report.Errors, newDiagnostic(e))
		}
	case errors.As(err, &single):
		report.Errors = append(report.Errors, newDiagnostic(single))
	default:
		report.Errors = append(report.Errors, Diagnostic{Type: "error", Message: err.Error()})
	}
	return report
}

func newDiagnostic(e *mlangErrors.Error) Diagnostic {
	d := Diagnostic{
		Type:       string(e.Type),
		Message:    e.Message,
		Suggestion: e.Suggestion,
	}
	if e.Location.File != "" || e.Location.Path != "" {
		d.Location = e.Location.String()
	}
	return d
}

// Rows implements cli.Table.
func (r LintReport) Rows() [][]string {
	status := "✓ valid"
	if !r.Valid {
		status = "✗ invalid"
	}
	rows := [][]string{
		{"Status:", status},
		{"Application:", r.Application},
		{"Formulas:", strconv.Itoa(r.Formulas)},
		{"Verifications:", strconv.Itoa(r.Verifications)},
	}
	if r.Ordered > 0 {
		rows = append(rows, []string{"Ordered:", fmt.Sprintf("%d in %d passes", r.Ordered, r.Passes)})
	}
	for _, d := range r.Errors {
		rows = append(rows, d.row("error"))
	}
	for _, d := range r.Warnings {
		rows = append(rows, d.row("warning"))
	}
	return rows
}

func (d Diagnostic) row(severity string) []string {
	msg := fmt.Sprintf("[%s] %s", d.Type, d.Message)
	if d.Location != "" {
		msg = d.Location + ": " + msg
	}
	if d.Suggestion != "" {
		msg += " (" + d.Suggestion + ")"
	}
	return []string{severity + ":", msg}
}

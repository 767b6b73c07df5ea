package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"calculette-hq/mtranspile/pkg/cli"
)

// defaultConfigFile is read when present and --config is not given.
const defaultConfigFile = "mtranspile.yaml"

var (
	// Global flags
	cfgFile string
	debug   bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mtranspile",
	Short: "Translate M-language JSON ASTs into Python",
	Long: `mtranspile translates the JSON AST of an M-language program (variable
definitions, rules and verifications) into Python source files.

It produces four files in the output directory:
  - constants.py: constant variables
  - variables_definitions.py: input and computed variable descriptors
  - formulas.py: one function per formula, in dependency order
  - verifications.py: one function per verification`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code of its error.
func Execute() {
	ctx, stop := cli.SignalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: "+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

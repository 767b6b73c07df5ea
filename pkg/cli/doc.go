/*
Package cli provides the helpers shared by the mtranspile commands.

Output Formatting:

Command results are printed as text or JSON (--format). Results
implementing Table are printed as aligned rows in text mode:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, summary); err != nil {
		return err
	}

Progress Reporting:

SimpleProgress follows the translated files of a build on stderr:

	opts.Progress = cli.NewLabeledProgress(os.Stderr, "Translating", "files")

Exit Codes:

ExitCode maps command errors to process exit codes: configuration errors,
translation errors and dependency cycles each get their own code.

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli

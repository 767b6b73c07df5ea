package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"calculette-hq/mtranspile/pkg/cli"
	"calculette-hq/mtranspile/pkg/config"
	"calculette-hq/mtranspile/pkg/state"
)

var stateFlags struct {
	format string
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the saved translation state",
	Long: `Inspect the translation state saved by build --save-state.

The state is stored in a JSON file or in a SQLite database (state.backend).`,
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the last saved state",
	Long: `Show the run, application, source revision and counts of the last saved
translation state.

Examples:
  mtranspile state show
  mtranspile state show --format json`,
	Args: cobra.NoArgs,
	RunE: showState,
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)

	stateShowCmd.Flags().StringVar(&stateFlags.format, "format", "text", "output format: text, json")
}

func showState(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(stateFlags.format)
	if err != nil {
		return err
	}

	// The state store does not need an AST directory.
	cfg, err := loadConfig(nil, func(cfg *config.Config) {
		if cfg.Input.Dir == "" {
			cfg.Input.Dir = "."
		}
	})
	if err != nil {
		return err
	}

	a, err := newApp(cmd, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.store.Load(cmd.Context())
	if errors.Is(err, state.ErrNotFound) {
		return cli.NewCommandError("state show", errors.New("no saved state, run build --save-state first"))
	}
	if err != nil {
		return cli.NewCommandError("state show", err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), newStateSummary(cfg, snap))
}

// stateSummary describes a saved snapshot.
type stateSummary struct {
	Backend        string    `json:"backend"`
	Path           string    `json:"path"`
	RunID          string    `json:"run_id"`
	CreatedAt      time.Time `json:"created_at"`
	Application    string    `json:"application"`
	SourceRevision string    `json:"source_revision,omitempty"`
	Variables      int       `json:"variables"`
	Formulas       int       `json:"formulas"`
	Verifications  int       `json:"verifications"`
}

func newStateSummary(cfg *config.Config, snap *state.Snapshot) stateSummary {
	return stateSummary{
		Backend:        cfg.State.Backend,
		Path:           cfg.State.Path,
		RunID:          snap.RunID.String(),
		CreatedAt:      snap.CreatedAt,
		Application:    snap.Application,
		SourceRevision: snap.SourceRevision,
		Variables:      len(snap.Variables),
		Formulas:       len(snap.Formulas),
		Verifications:  len(snap.Verifications),
	}
}

// Rows implements cli.Table.
func (s stateSummary) Rows() [][]string {
	rows := [][]string{
		{"Store:", s.Backend + " " + s.Path},
		{"Run:", s.RunID},
		{"Saved:", s.CreatedAt.Format(time.RFC3339)},
		{"Application:", s.Application},
	}
	if s.SourceRevision != "" {
		rows = append(rows, []string{"Revision:", s.SourceRevision})
	}
	return append(rows,
		[]string{"Variables:", strconv.Itoa(s.Variables)},
		[]string{"Formulas:", strconv.Itoa(s.Formulas)},
		[]string{"Verifications:", strconv.Itoa(s.Verifications)},
	)
}

// Package match provides the match command.
package match

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/archsync"
	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/alerts"
	"github.com/agentstation/archsync/internal/cmd/cmdutil"
	"github.com/agentstation/archsync/internal/cmd/table"
	"github.com/agentstation/archsync/pkg/errors"
)

// NewCommand creates the match command.
func NewCommand(app application.Application) *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "match [binary]",
		Short: "Match table rows to the symbols of a binary",
		Long: `Match extracts the symbol catalog of a binary and fills the Mapped
Symbol and Confidence cells of every enabled row whose best candidate
reaches the threshold. Rows confirmed by hand keep their symbol unless
overwrite_confirmed is set. Reviewed rows whose symbol disappeared or
changed since the previous match are marked as Broken Link.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  archsync match build/firmware.elf
  archsync match --threshold 80
  ARCHSYNC_BINARY=build/firmware.elf archsync match -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cmdutil.Binary(app, args)
			if path == "" {
				return errors.NewValidationError("binary", "", "no binary given and none configured")
			}

			ws, err := app.Workspace()
			if err != nil {
				return err
			}

			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			report, err := Run(ctx, ws, path, !noSave)
			if err != nil {
				return err
			}

			if err := cmdutil.Write(cmd, app, table.ResultsToTableData(report.Results), report); err != nil {
				return err
			}
			return Report(cmdutil.Alerts(cmd, app), report)
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the updated table to the project")
	return cmd
}

// Run extracts path, matches it into ws and saves the project when save is
// set and ws has a directory.
func Run(ctx context.Context, ws archsync.Workspace, path string, save bool) (*archsync.MatchReport, error) {
	catalog, err := ws.ExtractFile(ctx, path)
	if err != nil {
		return nil, err
	}
	report, err := ws.Match(catalog)
	if err != nil {
		return nil, err
	}
	if save && ws.Dir() != "" {
		if err := ws.Save(); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// Report prints the summary alerts for a match run.
func Report(w *alerts.Writer, report *archsync.MatchReport) error {
	applied := report.Applied
	if err := w.Success(fmt.Sprintf("Matched %d of %d rows against %d symbols",
		applied.Matched, len(report.Results), report.Record.Symbols)); err != nil {
		return err
	}
	if applied.SkippedConfirmed > 0 {
		if err := w.Info(fmt.Sprintf("Kept %d confirmed rows", applied.SkippedConfirmed)); err != nil {
			return err
		}
	}
	if applied.BrokenLinks > 0 {
		return w.Warning(fmt.Sprintf("%d reviewed rows lost their symbol and are now Broken Link", applied.BrokenLinks))
	}
	return nil
}

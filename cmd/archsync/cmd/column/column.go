// Package column provides commands that customize the table's columns.
package column

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/cmdutil"
	"github.com/agentstation/archsync/internal/cmd/completion"
	"github.com/agentstation/archsync/internal/cmd/table"
	"github.com/agentstation/archsync/pkg/architecture"
)

// NewCommand creates the column command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "column",
		Aliases: []string{"columns", "col"},
		Short:   "List, add, rename and remove columns",
		Long: `Column manages the table's custom columns. The built-in columns
(Port/Interface, Type, Mapped Symbol, Confidence, Review Status) cannot be
renamed or removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return list(cmd, app)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List columns",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return list(cmd, app)
			},
		},
		&cobra.Command{
			Use:     "add <name>",
			Short:   "Append a custom column",
			Args:    cobra.ExactArgs(1),
			Example: `  archsync column add Owner`,
			RunE: func(cmd *cobra.Command, args []string) error {
				return edit(cmd, app, fmt.Sprintf("Added column %q", args[0]), func(s *architecture.Snapshot) error {
					return s.AddColumn(args[0])
				})
			},
		},
		&cobra.Command{
			Use:               "rename <from> <to>",
			Short:             "Rename a custom column",
			Args:              cobra.ExactArgs(2),
			ValidArgsFunction: completion.Columns(app, true),
			Example:           `  archsync column rename Owner Maintainer`,
			RunE: func(cmd *cobra.Command, args []string) error {
				return edit(cmd, app, fmt.Sprintf("Renamed column %q to %q", args[0], args[1]), func(s *architecture.Snapshot) error {
					return s.RenameColumn(args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:               "remove <name>",
			Aliases:           []string{"rm"},
			Short:             "Remove a custom column and its cells",
			Args:              cobra.ExactArgs(1),
			ValidArgsFunction: completion.Columns(app, true),
			RunE: func(cmd *cobra.Command, args []string) error {
				return edit(cmd, app, fmt.Sprintf("Removed column %q", args[0]), func(s *architecture.Snapshot) error {
					return s.RemoveColumn(args[0])
				})
			},
		},
	)

	return cmd
}

func list(cmd *cobra.Command, app application.Application) error {
	ws, err := app.Workspace()
	if err != nil {
		return err
	}
	columns := ws.Current().Columns()

	rows := make([][]string, len(columns))
	for i, c := range columns {
		kind := "custom"
		if c.BuiltIn {
			kind = "built-in"
		}
		rows[i] = []string{c.Name, kind}
	}
	return cmdutil.Write(cmd, app, table.Data{Headers: []string{"Column", "Kind"}, Rows: rows}, columns)
}

func edit(cmd *cobra.Command, app application.Application, done string, fn func(*architecture.Snapshot) error) error {
	ws, err := app.Workspace()
	if err != nil {
		return err
	}
	if err := ws.Edit(fn); err != nil {
		return err
	}
	if ws.Dir() != "" {
		if err := ws.Save(); err != nil {
			return err
		}
	}
	return cmdutil.Alerts(cmd, app).Success(done)
}

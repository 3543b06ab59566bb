// Package row provides commands that edit the table's rows.
package row

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/cmdutil"
	"github.com/agentstation/archsync/internal/cmd/completion"
	"github.com/agentstation/archsync/internal/cmd/table"
	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
)

// NewCommand creates the row command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "row",
		Aliases: []string{"rows"},
		Short:   "List and edit table rows",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return list(cmd, app, false)
		},
	}

	cmd.AddCommand(
		newListCommand(app),
		newAddCommand(app),
		newRemoveCommand(app),
		newSetCommand(app),
		newEnableCommand(app, true),
		newEnableCommand(app, false),
		newConfirmCommand(app),
	)
	return cmd
}

func newListCommand(app application.Application) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return list(cmd, app, all)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include disabled rows")
	return cmd
}

func newAddCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "add <port> [column=value...]",
		Short: "Append a row",
		Long: `Add appends an enabled row for a port. Further cells are given as
column=value pairs; values that look like numbers are stored as numbers.`,
		Args:    cobra.MinimumNArgs(1),
		Example: `  archsync row add UART_Transmit Type=uint8 Owner=comms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cells, err := parseCells(args[1:])
			if err != nil {
				return err
			}
			cells[constants.ColumnPort] = architecture.Text(args[0])

			var id architecture.RowID
			err = edit(app, func(s *architecture.Snapshot) error {
				id, err = s.AddRow(cells)
				return err
			})
			if err != nil {
				return err
			}
			return cmdutil.Alerts(cmd, app).Success(fmt.Sprintf("Added row %s for %s", id, args[0]))
		},
	}
}

func newRemoveCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:               "remove <row-id>...",
		Aliases:           []string{"rm"},
		Short:             "Remove rows",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completion.RowIDs(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := edit(app, func(s *architecture.Snapshot) error {
				for _, id := range ids {
					if err := s.RemoveRow(id); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return err
			}
			return cmdutil.Alerts(cmd, app).Success(fmt.Sprintf("Removed %d rows", len(ids)))
		},
	}
}

func newSetCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "set <row-id> <column=value>...",
		Short: "Set cells of a row",
		Long: `Set writes cells of a live row. Setting Mapped Symbol by hand confirms
the match so later match runs keep it. An empty value clears the cell.`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completion.FirstArg(completion.RowIDs(app)),
		Example:           `  archsync row set 3 Type=uint16 "Review Status=In Review"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[:1])
			if err != nil {
				return err
			}
			cells, err := parseCells(args[1:])
			if err != nil {
				return err
			}
			if err := edit(app, func(s *architecture.Snapshot) error {
				for column, v := range cells {
					if err := s.SetCell(ids[0], column, v); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return err
			}
			return cmdutil.Alerts(cmd, app).Success(fmt.Sprintf("Updated %d cells of row %s", len(cells), ids[0]))
		},
	}
}

func newEnableCommand(app application.Application, enabled bool) *cobra.Command {
	use, verb := "enable", "Enabled"
	if !enabled {
		use, verb = "disable", "Disabled"
	}
	return &cobra.Command{
		Use:               use + " <row-id>...",
		Short:             verb + " rows for matching and export",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completion.RowIDs(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := edit(app, func(s *architecture.Snapshot) error {
				for _, id := range ids {
					if err := s.SetEnabled(id, enabled); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return err
			}
			return cmdutil.Alerts(cmd, app).Success(fmt.Sprintf("%s %d rows", verb, len(ids)))
		},
	}
}

func newConfirmCommand(app application.Application) *cobra.Command {
	var confidence int
	cmd := &cobra.Command{
		Use:   "confirm <row-id> [symbol]",
		Short: "Confirm a row's match, optionally choosing the symbol",
		Long: `Confirm marks a row's mapped symbol as chosen by the user. Confirmed
rows keep their symbol when the table is matched again. Without a symbol,
the current match is confirmed as is.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completion.FirstArg(completion.RowIDs(app)),
		Example: `  archsync row confirm 3
  archsync row confirm 3 HAL_UART_Transmit --confidence 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[:1])
			if err != nil {
				return err
			}
			id := ids[0]

			var symbol string
			if err := edit(app, func(s *architecture.Snapshot) error {
				row, err := s.Row(id)
				if err != nil {
					return err
				}
				symbol = row.MatchedSymbol()
				score, _ := row.Confidence()
				if len(args) == 2 {
					symbol, score = args[1], 100
				}
				if cmd.Flags().Changed("confidence") {
					score = confidence
				}
				if symbol == "" {
					return errors.NewValidationError("symbol", "", "row "+id.String()+" has no match to confirm")
				}
				return s.SetMatch(id, symbol, score)
			}); err != nil {
				return err
			}
			return cmdutil.Alerts(cmd, app).Success(fmt.Sprintf("Confirmed row %s as %s", id, symbol))
		},
	}
	cmd.Flags().IntVar(&confidence, "confidence", 100, "confidence to record (0-100)")
	return cmd
}

func list(cmd *cobra.Command, app application.Application, all bool) error {
	ws, err := app.Workspace()
	if err != nil {
		return err
	}
	current := ws.Current()
	rows := current.Rows()
	if !all {
		rows = current.EnabledRows()
	}
	return cmdutil.Write(cmd, app, table.SnapshotToTableData(current, all), rows)
}

func edit(app application.Application, fn func(*architecture.Snapshot) error) error {
	ws, err := app.Workspace()
	if err != nil {
		return err
	}
	if err := ws.Edit(fn); err != nil {
		return err
	}
	if ws.Dir() == "" {
		return nil
	}
	return ws.Save()
}

func parseIDs(args []string) ([]architecture.RowID, error) {
	ids := make([]architecture.RowID, 0, len(args))
	for _, arg := range args {
		id, err := architecture.ParseRowID(arg)
		if err != nil {
			return nil, errors.WrapValidation("row-id", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseCells parses column=value pairs.
func parseCells(args []string) (map[string]architecture.Value, error) {
	cells := make(map[string]architecture.Value, len(args))
	for _, arg := range args {
		column, value, ok := strings.Cut(arg, "=")
		if !ok || column == "" {
			return nil, errors.NewValidationError("cell", arg, "want column=value")
		}
		cells[column] = architecture.ParseValue(value)
	}
	return cells, nil
}

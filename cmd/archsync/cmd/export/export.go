// Package export provides the export command.
package export

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/cmdutil"
	"github.com/agentstation/archsync/internal/cmd/table"
	"github.com/agentstation/archsync/pkg/architecture"
)

// NewCommand creates the export command.
func NewCommand(app application.Application) *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the enabled rows column by column",
		Long: `Export writes the cells of every live, enabled row of the working copy,
grouped by column and in row order. JSON and YAML output map each column
name to its list of values.`,
		Args: cobra.NoArgs,
		Example: `  archsync export -o json
  archsync export --column "Port/Interface" --column "Mapped Symbol"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.Workspace()
			if err != nil {
				return err
			}

			export := ws.ExportColumns()
			names := columns
			if len(names) == 0 {
				names = ws.Current().ColumnNames()
			} else {
				selected := make(map[string][]architecture.Value, len(names))
				for _, name := range names {
					selected[name] = export[name]
				}
				export = selected
			}

			return cmdutil.Write(cmd, app, table.ExportToTableData(names, export), export)
		},
	}

	cmd.Flags().StringArrayVarP(&columns, "column", "c", nil, "only export these columns")
	return cmd
}

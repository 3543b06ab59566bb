// Package initialize provides the init command.
package initialize

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/cmdutil"
)

// NewCommand creates the init command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create an empty architecture project",
		Long: `Init creates a project directory holding an empty baseline with the
built-in columns. The project name defaults to the name of the current
directory.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  archsync init
  archsync init motor-controller -p ./arch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			} else if abs, err := filepath.Abs("."); err == nil {
				name = filepath.Base(abs)
			}

			ws, err := app.InitWorkspace(name)
			if err != nil {
				return err
			}
			return cmdutil.Alerts(cmd, app).Success(fmt.Sprintf("Initialized project %q in %s", name, ws.Dir()))
		},
	}
	return cmd
}

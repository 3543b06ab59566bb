// Package cmdutil provides helpers shared by archsync commands.
package cmdutil

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/alerts"
	"github.com/agentstation/archsync/internal/cmd/output"
	"github.com/agentstation/archsync/internal/cmd/table"
	"github.com/agentstation/archsync/pkg/constants"
)

// Format returns the output format selected for app.
func Format(app application.Application) output.Format {
	return output.Format(app.OutputFormat())
}

// Write renders tableData for table formats and raw otherwise, to the
// command's stdout.
func Write(cmd *cobra.Command, app application.Application, tableData table.Data, raw any) error {
	return output.Write(cmd.OutOrStdout(), Format(app), tableData, raw)
}

// Alerts returns an alert writer bound to the command's stderr.
func Alerts(cmd *cobra.Command, app application.Application) *alerts.Writer {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return alerts.NewWriter(cmd.ErrOrStderr(), Format(app), noColor)
}

// Context returns the command context bounded by the command timeout.
func Context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, constants.CommandTimeout)
}

// Binary returns the binary path from args, falling back to the configured
// binary.
func Binary(app application.Application, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return app.Settings().Binary
}

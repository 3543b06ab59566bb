package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/archsync/cmd/archsync/cmd/catalog"
	"github.com/agentstation/archsync/cmd/archsync/cmd/column"
	"github.com/agentstation/archsync/cmd/archsync/cmd/completion"
	"github.com/agentstation/archsync/cmd/archsync/cmd/export"
	"github.com/agentstation/archsync/cmd/archsync/cmd/initialize"
	"github.com/agentstation/archsync/cmd/archsync/cmd/match"
	"github.com/agentstation/archsync/cmd/archsync/cmd/review"
	"github.com/agentstation/archsync/cmd/archsync/cmd/row"
	"github.com/agentstation/archsync/cmd/archsync/cmd/symbols"
	"github.com/agentstation/archsync/cmd/archsync/cmd/version"
	"github.com/agentstation/archsync/cmd/archsync/cmd/watch"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(withGroup(initialize.NewCommand(a), "core"))
	rootCmd.AddCommand(withGroup(symbols.NewCommand(a), "core"))
	rootCmd.AddCommand(withGroup(catalog.NewCommand(a), "core"))
	rootCmd.AddCommand(withGroup(match.NewCommand(a), "core"))
	rootCmd.AddCommand(withGroup(watch.NewCommand(a), "core"))

	// Review commands
	rootCmd.AddCommand(withGroup(review.NewDiffCommand(a), "review"))
	rootCmd.AddCommand(withGroup(review.NewResolveCommand(a), "review"))
	rootCmd.AddCommand(withGroup(review.NewCommitCommand(a), "review"))

	// Table commands
	rootCmd.AddCommand(withGroup(column.NewCommand(a), "table"))
	rootCmd.AddCommand(withGroup(row.NewCommand(a), "table"))
	rootCmd.AddCommand(withGroup(export.NewCommand(a), "table"))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
	rootCmd.AddCommand(completion.NewCommand())
}

func withGroup(cmd *cobra.Command, group string) *cobra.Command {
	cmd.GroupID = group
	return cmd
}

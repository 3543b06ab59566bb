// Package completion provides dynamic shell completions backed by the
// project workspace.
package completion

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/pkg/differ"
)

// Shells supported by the completion command.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// Shells lists the supported shells.
func Shells() []string {
	return []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell}
}

// Func is the signature cobra expects for ValidArgsFunction.
type Func = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// RowIDs completes live row IDs, described by their port.
func RowIDs(app application.Application) Func {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		ws, err := app.Workspace()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var out []string
		for _, r := range ws.Current().Rows() {
			id := r.ID.String()
			if strings.HasPrefix(id, toComplete) {
				out = append(out, id+"\t"+r.Port())
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// Columns completes column names. With customOnly, built-in columns are
// left out.
func Columns(app application.Application, customOnly bool) Func {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		ws, err := app.Workspace()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var out []string
		for _, c := range ws.Current().Columns() {
			if customOnly && c.BuiltIn {
				continue
			}
			if strings.HasPrefix(c.Name, toComplete) {
				out = append(out, c.Name)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// Resolve completes the action first, then the IDs of pending changes.
func Resolve(app application.Application) Func {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return []string{string(differ.Approve), string(differ.Reject)}, cobra.ShellCompDirectiveNoFileComp
		}
		ws, err := app.Workspace()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var out []string
		for _, c := range ws.Changes().Pending() {
			if strings.HasPrefix(c.ID, toComplete) && !contains(args[1:], c.ID) {
				out = append(out, c.ID+"\t"+string(c.Kind))
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FirstArg restricts f to the first positional argument.
func FirstArg(f Func) Func {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return f(cmd, args, toComplete)
	}
}

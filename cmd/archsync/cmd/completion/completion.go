// Package completion provides the shell completion command.
package completion

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/archsync/internal/cmd/completion"
)

// NewCommand creates the completion command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  $ source <(archsync completion bash)

Zsh:

  $ archsync completion zsh > "${fpath[1]}/_archsync"

Fish:

  $ archsync completion fish | source

PowerShell:

  PS> archsync completion powershell | Out-String | Invoke-Expression

Row IDs, column names and pending change IDs complete from the current project.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completion.Shells(),
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case completion.ShellBash:
				return root.GenBashCompletionV2(out, true)
			case completion.ShellZsh:
				return root.GenZshCompletion(out)
			case completion.ShellFish:
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

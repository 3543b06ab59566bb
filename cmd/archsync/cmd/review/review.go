// Package review provides the diff, resolve and commit commands that take
// the working copy through review into a new baseline.
package review

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/archsync"
	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/cmdutil"
	"github.com/agentstation/archsync/internal/cmd/completion"
	"github.com/agentstation/archsync/internal/cmd/table"
	"github.com/agentstation/archsync/pkg/differ"
	"github.com/agentstation/archsync/pkg/errors"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(app application.Application) *cobra.Command {
	var (
		kinds   []string
		pending bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the working copy with the baseline",
		Long: `Diff lists every added row, removed row, modified cell and enabled
toggle between the baseline and the working copy. The result becomes the
changeset under review; earlier approvals and rejections are discarded.`,
		Args:    cobra.NoArgs,
		Example: `  archsync diff
  archsync diff --kind modified-cell -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.Workspace()
			if err != nil {
				return err
			}

			changes := ws.Compare()
			if err := save(ws); err != nil {
				return err
			}

			view := changes
			if len(kinds) > 0 {
				filter := make([]differ.ChangeKind, len(kinds))
				for i, k := range kinds {
					filter[i] = differ.ChangeKind(k)
				}
				view = changes.Filter(filter...)
			}
			list := view.Changes
			if pending {
				list = view.Pending()
			}

			if !cmdutil.Format(app).IsTable() {
				return cmdutil.Write(cmd, app, table.Data{}, list)
			}
			if changes.IsEmpty() {
				return cmdutil.Alerts(cmd, app).Info(changes.String())
			}
			if err := cmdutil.Write(cmd, app, table.ChangesToTableData(list), list); err != nil {
				return err
			}
			return cmdutil.Alerts(cmd, app).Info(changes.String())
		},
	}

	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "only show these kinds: added-row, removed-row, modified-cell, enabled-toggled")
	cmd.Flags().BoolVar(&pending, "pending", false, "only show pending changes")
	return cmd
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(app application.Application) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "resolve <approve|reject> [change-id...]",
		Short: "Approve or reject changes from the last diff",
		Long: `Resolve records a decision for changes from the last diff. Approving
keeps the new value for the next commit. Rejecting puts the baseline value
back into the working copy. A decided change cannot be decided again.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completion.Resolve(app),
		Example: `  archsync resolve approve r3/cell/Type
  archsync resolve reject r7
  archsync resolve approve --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := differ.ParseAction(args[0])
			if err != nil {
				return errors.WrapValidation("action", err)
			}
			ids := args[1:]
			if all == (len(ids) > 0) {
				return errors.NewValidationError("change-id", ids, "give change IDs or --all, not both")
			}

			ws, err := app.Workspace()
			if err != nil {
				return err
			}

			var resolved []*differ.Change
			if all {
				n, err := ws.ResolveAll(action)
				if err != nil {
					return err
				}
				if err := save(ws); err != nil {
					return err
				}
				return cmdutil.Alerts(cmd, app).Success(fmt.Sprintf("Resolved %d changes (%s)", n, action))
			}

			for _, id := range ids {
				change, err := ws.Resolve(id, action)
				if err != nil {
					// Keep the decisions already made.
					_ = save(ws)
					return err
				}
				resolved = append(resolved, change)
			}
			if err := save(ws); err != nil {
				return err
			}
			return cmdutil.Write(cmd, app, table.ChangesToTableData(resolved), resolved)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "resolve every pending change")
	return cmd
}

// NewCommitCommand creates the commit command.
func NewCommitCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Make the reviewed working copy the new baseline",
		Long: `Commit replaces the baseline with the working copy. Every change must
be approved or rejected first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.Workspace()
			if err != nil {
				return err
			}

			next, err := ws.Commit()
			if err != nil {
				if errors.IsUnresolvedChanges(err) {
					return fmt.Errorf("%w (run archsync resolve)", err)
				}
				return err
			}
			if err := save(ws); err != nil {
				return err
			}
			return cmdutil.Alerts(cmd, app).Success(fmt.Sprintf("Committed baseline with %d rows", next.Len()))
		},
	}
	return cmd
}

func save(ws archsync.Workspace) error {
	if ws.Dir() == "" {
		return nil
	}
	return ws.Save()
}

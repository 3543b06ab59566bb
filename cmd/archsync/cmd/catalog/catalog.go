// Package catalog provides commands that work on whole symbol catalogs.
package catalog

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/cmdutil"
	"github.com/agentstation/archsync/internal/cmd/table"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/extract"
	"github.com/agentstation/archsync/pkg/symbols"
)

// NewCommand creates the catalog command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with symbol catalogs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(NewDiffCommand(app))
	return cmd
}

// NewDiffCommand creates the catalog diff command.
func NewDiffCommand(app application.Application) *cobra.Command {
	var signatures bool

	cmd := &cobra.Command{
		Use:   "diff <old.elf> <new.elf>",
		Short: "Compare the symbol catalogs of two binaries",
		Long: `Diff extracts both binaries and lists the symbols that were added,
removed or changed (address, size, kind or signature) between them.`,
		Args:    cobra.ExactArgs(2),
		Example: `  archsync catalog diff release-1.2.elf build/firmware.elf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			settings := app.Settings()
			opts := []extract.Option{
				extract.WithInclude(settings.Include...),
				extract.WithExclude(settings.Exclude...),
				extract.WithLogger(app.Logger()),
			}
			if settings.SkipLocals {
				opts = append(opts, extract.WithoutLocals())
			}
			if !signatures {
				opts = append(opts, extract.WithoutSignatures())
			}

			catalogs := make([]*symbols.Catalog, len(args))
			g, gctx := errgroup.WithContext(ctx)
			for i, path := range args {
				g.Go(func() error {
					c, err := extract.ExtractFile(gctx, path, opts...)
					if err != nil {
						return errors.WrapResource("extract", "binary", path, err)
					}
					catalogs[i] = c
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			delta := symbols.Compare(catalogs[0], catalogs[1])
			if delta.IsEmpty() && cmdutil.Format(app).IsTable() {
				return cmdutil.Alerts(cmd, app).Info("Catalogs are identical")
			}
			return cmdutil.Write(cmd, app, table.DeltaToTableData(delta), delta)
		},
	}

	cmd.Flags().BoolVar(&signatures, "signatures", true, "compare DWARF signatures")
	return cmd
}

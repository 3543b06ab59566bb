// Package symbols provides the symbols command, which lists the catalog of
// an ELF binary and ranks candidates for a port name.
package symbols

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/cmdutil"
	"github.com/agentstation/archsync/internal/cmd/table"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/extract"
	"github.com/agentstation/archsync/pkg/matcher"
	pkgsymbols "github.com/agentstation/archsync/pkg/symbols"
)

// Flags holds the symbols command flags.
type Flags struct {
	Include []string
	Exclude []string
	Kinds   []string
	Search  string
	Top     string
	Limit   int
	Details bool
	Stats   bool
}

// NewCommand creates the symbols command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "symbols [binary]",
		Aliases: []string{"syms"},
		Short:   "List the symbols of an ELF binary",
		Long: `Symbols extracts the symbol catalog of an ELF binary and lists it.

With --top, the catalog is instead ranked against a port name and the best
candidates are shown with their confidence.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  archsync symbols build/firmware.elf
  archsync symbols build/firmware.elf --include 'UART_*' --kind function
  archsync symbols build/firmware.elf --top UART_Transmit --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, flags, args)
		},
	}

	cmd.Flags().StringSliceVar(&flags.Include, "include", nil, "only keep symbols matching these glob or regex patterns")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", nil, "drop symbols matching these glob or regex patterns")
	cmd.Flags().StringSliceVarP(&flags.Kinds, "kind", "k", nil, "only list these kinds: function, object, unknown")
	cmd.Flags().StringVarP(&flags.Search, "search", "s", "", "only list symbols whose name contains this text")
	cmd.Flags().StringVar(&flags.Top, "top", "", "rank candidates for this port name")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", 0, "maximum number of symbols or candidates")
	cmd.Flags().BoolVar(&flags.Details, "details", false, "show binding, section and signature")
	cmd.Flags().BoolVar(&flags.Stats, "stats", false, "show totals by kind and binding")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags, args []string) error {
	path := cmdutil.Binary(app, args)
	if path == "" {
		return errors.NewValidationError("binary", "", "no binary given and none configured")
	}

	settings := app.Settings()
	include := append(append([]string{}, settings.Include...), flags.Include...)
	exclude := append(append([]string{}, settings.Exclude...), flags.Exclude...)
	opts := []extract.Option{
		extract.WithInclude(include...),
		extract.WithExclude(exclude...),
		extract.WithLogger(app.Logger()),
	}
	if settings.SkipLocals {
		opts = append(opts, extract.WithoutLocals())
	}

	ctx, cancel := cmdutil.Context(cmd)
	defer cancel()

	catalog, err := extract.ExtractFile(ctx, path, opts...)
	if err != nil {
		return errors.WrapResource("extract", "binary", path, err)
	}

	kinds := make([]pkgsymbols.Kind, 0, len(flags.Kinds))
	for _, k := range flags.Kinds {
		kinds = append(kinds, pkgsymbols.ParseKind(k))
	}

	if flags.Stats {
		stats := catalog.Stats()
		return cmdutil.Write(cmd, app, table.StatsToTableData(stats), stats)
	}

	if flags.Top != "" {
		limit := flags.Limit
		if limit <= 0 {
			limit = settings.Top
		}
		candidates := matcher.Top(flags.Top, catalog, limit, kinds...)
		return cmdutil.Write(cmd, app, table.CandidatesToTableData(candidates), candidates)
	}

	syms := catalog.OfKind(kinds...)
	if flags.Search != "" {
		syms = onlyKinds(catalog.Search(flags.Search), kinds)
	}
	if flags.Limit > 0 && len(syms) > flags.Limit {
		syms = syms[:flags.Limit]
	}

	return cmdutil.Write(cmd, app, table.SymbolsToTableData(syms, flags.Details), syms)
}

func onlyKinds(syms []pkgsymbols.Symbol, kinds []pkgsymbols.Kind) []pkgsymbols.Symbol {
	if len(kinds) == 0 {
		return syms
	}
	return slices.DeleteFunc(syms, func(s pkgsymbols.Symbol) bool {
		return !slices.Contains(kinds, s.Kind)
	})
}

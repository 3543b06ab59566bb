// Package table converts archsync values into rows for table output.
package table

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/archsync/internal/cmd/emoji"
	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/differ"
	"github.com/agentstation/archsync/pkg/matcher"
	"github.com/agentstation/archsync/pkg/symbols"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// SymbolsToTableData converts catalog symbols to table format.
func SymbolsToTableData(syms []symbols.Symbol, showDetails bool) Data {
	headers := []string{"Name", "Kind", "Address", "Size"}
	if showDetails {
		headers = append(headers, "Binding", "Section", "Signature")
	}

	rows := make([][]string, 0, len(syms))
	for _, s := range syms {
		row := []string{s.Name, s.Kind.String(), fmt.Sprintf("0x%08x", s.Address), strconv.FormatUint(s.Size, 10)}
		if showDetails {
			row = append(row, string(s.Binding), s.Section, s.Prototype())
		}
		rows = append(rows, row)
	}

	align := []Align{AlignLeft, AlignLeft, AlignRight, AlignRight}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// StatsToTableData renders catalog totals by kind and binding.
func StatsToTableData(stats symbols.Stats) Data {
	rows := [][]string{{"total", "", strconv.Itoa(stats.Total)}}
	for _, k := range sortedKeys(stats.ByKind) {
		rows = append(rows, []string{"kind", string(k), strconv.Itoa(stats.ByKind[k])})
	}
	for _, b := range sortedKeys(stats.ByBinding) {
		rows = append(rows, []string{"binding", string(b), strconv.Itoa(stats.ByBinding[b])})
	}
	rows = append(rows, []string{"signature", "", strconv.Itoa(stats.WithSignature)})
	return Data{
		Headers:         []string{"Group", "Value", "Count"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CandidatesToTableData converts ranked candidates to table format.
func CandidatesToTableData(candidates []matcher.Candidate) Data {
	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Symbol.Name,
			c.Symbol.Kind.String(),
			strconv.Itoa(c.Score),
		})
	}
	return Data{
		Headers:         []string{"#", "Symbol", "Kind", "Score"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignRight},
	}
}

// SnapshotToTableData renders every live row with all columns. Disabled rows
// are included only when showDisabled is set.
func SnapshotToTableData(s *architecture.Snapshot, showDisabled bool) Data {
	headers := append([]string{"ID", "Enabled"}, s.ColumnNames()...)

	var rows [][]string
	for _, r := range s.Rows() {
		if !r.Enabled && !showDisabled {
			continue
		}
		row := []string{r.ID.String(), strconv.FormatBool(r.Enabled)}
		for _, col := range s.ColumnNames() {
			cell := r.Cell(col).String()
			if col == constants.ColumnMappedSymbol && r.Confirmed && cell != "" {
				cell += " " + emoji.Success
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// ResultsToTableData renders matcher results in row order.
func ResultsToTableData(results matcher.Results) Data {
	var rows [][]string
	for _, r := range results.Sorted() {
		symbol := ""
		if r.Symbol != nil {
			symbol = r.Symbol.Name
		}
		rows = append(rows, []string{r.RowID.String(), r.Port, symbol, strconv.Itoa(r.Score)})
	}
	return Data{
		Headers:         []string{"Row", "Port/Interface", "Symbol", "Score"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignRight},
	}
}

// ChangesToTableData renders changes in changeset order.
func ChangesToTableData(changes []*differ.Change) Data {
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{
			emoji.ForDisposition(c.Disposition),
			c.ID,
			emoji.ForKind(c.Kind) + " " + string(c.Kind),
			c.Column,
			c.OldValue.String(),
			c.NewValue.String(),
		})
	}
	return Data{
		Headers: []string{"", "ID", "Kind", "Column", "Old", "New"},
		Rows:    rows,
	}
}

// DeltaToTableData renders a catalog comparison.
func DeltaToTableData(delta *symbols.Delta) Data {
	var rows [][]string
	for _, s := range delta.Added {
		rows = append(rows, []string{emoji.Added, s.Name, s.Kind.String(), ""})
	}
	for _, s := range delta.Removed {
		rows = append(rows, []string{emoji.Removed, s.Name, s.Kind.String(), ""})
	}
	for _, c := range delta.Changed {
		rows = append(rows, []string{emoji.Modified, c.Name, c.New.Kind.String(), strings.Join(c.Fields, ", ")})
	}
	return Data{Headers: []string{"", "Symbol", "Kind", "Changed"}, Rows: rows}
}

// ExportToTableData renders exported columns side by side.
func ExportToTableData(columns []string, export map[string][]architecture.Value) Data {
	n := 0
	if len(columns) > 0 {
		n = len(export[columns[0]])
	}
	rows := make([][]string, n)
	for i := range rows {
		row := make([]string, len(columns))
		for j, col := range columns {
			if vals := export[col]; i < len(vals) {
				row[j] = vals[i].String()
			}
		}
		rows[i] = row
	}
	return Data{Headers: columns, Rows: rows}
}

package architecture

import (
	"maps"
	"strconv"

	"github.com/agentstation/archsync/pkg/constants"
)

// Column is a column definition. Built-in columns cannot be removed or renamed.
type Column struct {
	Name    string `json:"name" yaml:"name"`
	BuiltIn bool   `json:"built_in,omitempty" yaml:"built_in,omitempty"`
}

var builtInColumns = []string{
	constants.ColumnPort,
	constants.ColumnType,
	constants.ColumnMappedSymbol,
	constants.ColumnConfidence,
	constants.ColumnReviewStatus,
}

// BuiltInColumns returns the built-in columns in their default order.
func BuiltInColumns() []Column {
	cols := make([]Column, len(builtInColumns))
	for i, name := range builtInColumns {
		cols[i] = Column{Name: name, BuiltIn: true}
	}
	return cols
}

// IsBuiltIn reports whether name is a built-in column.
func IsBuiltIn(name string) bool {
	for _, n := range builtInColumns {
		if n == name {
			return true
		}
	}
	return false
}

// RowID identifies a row. IDs are assigned once and never reused.
type RowID uint64

// String returns the decimal form of the ID.
func (id RowID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseRowID parses a decimal row ID, accepting an optional "r" prefix.
func ParseRowID(s string) (RowID, error) {
	if len(s) > 1 && s[0] == 'r' {
		s = s[1:]
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return RowID(n), nil
}

// Row is one port/interface entry.
type Row struct {
	ID        RowID            `json:"id" yaml:"id"`
	Cells     map[string]Value `json:"cells" yaml:"cells"`
	Enabled   bool             `json:"enabled" yaml:"enabled"`
	Removed   bool             `json:"removed,omitempty" yaml:"removed,omitempty"`
	Confirmed bool             `json:"confirmed,omitempty" yaml:"confirmed,omitempty"`
}

// Cell returns the value in column, or Empty when unset.
func (r Row) Cell(column string) Value {
	return r.Cells[column]
}

// Port returns the Port/Interface cell as text.
func (r Row) Port() string {
	return r.Cell(constants.ColumnPort).String()
}

// MatchedSymbol returns the mapped symbol name, empty when unmatched.
func (r Row) MatchedSymbol() string {
	return r.Cell(constants.ColumnMappedSymbol).String()
}

// Confidence returns the match confidence when one is recorded.
func (r Row) Confidence() (int, bool) {
	f, ok := r.Cell(constants.ColumnConfidence).Float()
	if !ok {
		return 0, false
	}
	return int(f), true
}

// ReviewStatus returns the Review Status cell as text.
func (r Row) ReviewStatus() string {
	return r.Cell(constants.ColumnReviewStatus).String()
}

// Live reports whether the row is not tombstoned.
func (r Row) Live() bool {
	return !r.Removed
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	r.Cells = maps.Clone(r.Cells)
	if r.Cells == nil {
		r.Cells = make(map[string]Value)
	}
	return r
}

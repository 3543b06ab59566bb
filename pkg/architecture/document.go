package architecture

import (
	"fmt"
	"slices"

	"github.com/agentstation/archsync/pkg/errors"
)

// Document is the serializable form of a Snapshot, tombstones included.
type Document struct {
	Columns  []Column `json:"columns" yaml:"columns"`
	Rows     []Row    `json:"rows" yaml:"rows"`
	NextID   RowID    `json:"next_id" yaml:"next_id"`
	Revision uint64   `json:"revision,omitempty" yaml:"revision,omitempty"`
	Baseline bool     `json:"baseline,omitempty" yaml:"baseline,omitempty"`
}

// Document returns a deep copy of the snapshot's full state.
func (s *Snapshot) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := Document{
		Columns:  slices.Clone(s.columns),
		Rows:     make([]Row, len(s.rows)),
		NextID:   s.nextID,
		Revision: s.revision,
		Baseline: s.baseline,
	}
	for i, r := range s.rows {
		doc.Rows[i] = r.Clone()
	}
	return doc
}

// FromDocument rebuilds a Snapshot. Missing built-in columns are added,
// empty cells are dropped, and the ID counter is raised past every stored row.
func FromDocument(doc Document) (*Snapshot, error) {
	s := &Snapshot{
		index:    make(map[RowID]int, len(doc.Rows)),
		nextID:   max(doc.NextID, 1),
		revision: doc.Revision,
	}

	for _, c := range doc.Columns {
		if c.Name == "" {
			return nil, errors.NewValidationError("columns", c, "column name must not be empty")
		}
		if s.columnIndex(c.Name) >= 0 {
			return nil, errors.NewDuplicateColumnError("load", c.Name)
		}
		s.columns = append(s.columns, Column{Name: c.Name, BuiltIn: IsBuiltIn(c.Name)})
	}
	for _, c := range BuiltInColumns() {
		if s.columnIndex(c.Name) < 0 {
			s.columns = append(s.columns, c)
		}
	}

	for _, r := range doc.Rows {
		if r.ID == 0 {
			return nil, errors.NewValidationError("rows", r.ID, "row id must be positive")
		}
		if _, dup := s.index[r.ID]; dup {
			return nil, errors.NewValidationError("rows", r.ID, fmt.Sprintf("duplicate row id %d", r.ID))
		}
		row := &Row{ID: r.ID, Cells: make(map[string]Value, len(r.Cells)), Enabled: r.Enabled, Removed: r.Removed, Confirmed: r.Confirmed}
		for name, v := range r.Cells {
			if s.columnIndex(name) < 0 {
				return nil, errors.NewNotFoundError("column", name)
			}
			setCell(row, name, v)
		}
		s.index[row.ID] = len(s.rows)
		s.rows = append(s.rows, row)
		if row.ID >= s.nextID {
			s.nextID = row.ID + 1
		}
	}

	s.baseline = doc.Baseline
	return s, nil
}

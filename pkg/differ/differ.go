// Package differ compares two architecture snapshots and drives the
// approve/reject review of the resulting changes.
//
// Rows are matched by ID. Changes follow current's row order, with removed
// rows appended in baseline order; within a row the enabled flag comes before
// cells, and cells follow column order (current's columns, then columns only
// the baseline has).
package differ

import (
	"github.com/agentstation/utc"

	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
)

// Differ compares snapshots.
type Differ interface {
	// Compare returns the ordered changes that turn baseline into current.
	Compare(baseline, current *architecture.Snapshot) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreColumns map[string]bool
}

// New creates a Differ.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreColumns: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Compare is shorthand for New(opts...).Compare(baseline, current).
func Compare(baseline, current *architecture.Snapshot, opts ...Option) *Changeset {
	return New(opts...).Compare(baseline, current)
}

// Compare implements Differ. A nil snapshot compares as an empty one.
func (diff *differ) Compare(baseline, current *architecture.Snapshot) *Changeset {
	if baseline == nil {
		baseline = architecture.New()
	}
	if current == nil {
		current = architecture.New()
	}

	baseRows := baseline.AllRows()
	curRows := current.AllRows()

	baseByID := make(map[architecture.RowID]architecture.Row, len(baseRows))
	for _, r := range baseRows {
		baseByID[r.ID] = r
	}
	curByID := make(map[architecture.RowID]architecture.Row, len(curRows))
	for _, r := range curRows {
		curByID[r.ID] = r
	}

	columns := diff.columns(baseline, current)
	cs := &Changeset{
		Changes:   make([]*Change, 0),
		Revision:  current.Revision(),
		CreatedAt: utc.Now(),
	}

	for _, cur := range curRows {
		base, inBase := baseByID[cur.ID]
		switch {
		case cur.Removed:
			// Tombstoned rows surface as removals after the live rows.
			continue
		case !inBase || base.Removed:
			row := cur.Clone()
			cs.add(&Change{
				ID:       rowChangeID(cur.ID),
				Kind:     KindAddedRow,
				RowID:    cur.ID,
				NewValue: cur.Cell(constants.ColumnPort),
				Row:      &row,
			})
			continue
		}

		if base.Enabled != cur.Enabled {
			cs.add(&Change{
				ID:       enabledChangeID(cur.ID),
				Kind:     KindEnabledToggled,
				RowID:    cur.ID,
				OldValue: boolValue(base.Enabled),
				NewValue: boolValue(cur.Enabled),
			})
		}
		for _, col := range columns {
			oldValue, newValue := base.Cell(col), cur.Cell(col)
			if oldValue.Equal(newValue) {
				continue
			}
			change := &Change{
				ID:       cellChangeID(cur.ID, col),
				Kind:     KindModifiedCell,
				RowID:    cur.ID,
				Column:   col,
				OldValue: oldValue,
				NewValue: newValue,
			}
			if col == constants.ColumnMappedSymbol {
				change.OldConfirmed, change.NewConfirmed = base.Confirmed, cur.Confirmed
			}
			cs.add(change)
		}
	}

	for _, base := range baseRows {
		if base.Removed {
			continue
		}
		if cur, ok := curByID[base.ID]; ok && !cur.Removed {
			continue
		}
		row := base.Clone()
		cs.add(&Change{
			ID:       rowChangeID(base.ID),
			Kind:     KindRemovedRow,
			RowID:    base.ID,
			OldValue: base.Cell(constants.ColumnPort),
			Row:      &row,
		})
	}

	return cs
}

// columns returns current's columns followed by baseline-only columns,
// minus ignored ones.
func (diff *differ) columns(baseline, current *architecture.Snapshot) []string {
	seen := make(map[string]bool)
	var out []string
	for _, names := range [][]string{current.ColumnNames(), baseline.ColumnNames()} {
		for _, name := range names {
			if seen[name] || diff.ignoreColumns[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

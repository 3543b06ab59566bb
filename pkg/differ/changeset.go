package differ

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
)

// Changeset is the ordered result of a comparison plus its review state.
type Changeset struct {
	Changes   []*Change `json:"changes" yaml:"changes"`
	Revision  uint64    `json:"revision" yaml:"revision"` // current's revision when compared or last reverted
	CreatedAt utc.Time  `json:"created_at" yaml:"created_at"`
}

// Summary provides summary statistics for a changeset.
type Summary struct {
	Total          int `json:"total" yaml:"total"`
	Pending        int `json:"pending" yaml:"pending"`
	Approved       int `json:"approved" yaml:"approved"`
	Rejected       int `json:"rejected" yaml:"rejected"`
	AddedRows      int `json:"added_rows" yaml:"added_rows"`
	RemovedRows    int `json:"removed_rows" yaml:"removed_rows"`
	ModifiedCells  int `json:"modified_cells" yaml:"modified_cells"`
	EnabledToggles int `json:"enabled_toggles" yaml:"enabled_toggles"`
}

func (c *Changeset) add(change *Change) {
	change.Disposition = Pending
	c.Changes = append(c.Changes, change)
}

// Len returns the number of changes.
func (c *Changeset) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Changes)
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Len() == 0
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Len() > 0
}

// Get returns the change with the given ID.
func (c *Changeset) Get(id string) (*Change, error) {
	if c != nil {
		for _, change := range c.Changes {
			if change.ID == id {
				return change, nil
			}
		}
	}
	return nil, errors.NewNotFoundError("change", id)
}

// Pending returns the changes still awaiting a decision, in order.
func (c *Changeset) Pending() []*Change {
	return c.with(func(ch *Change) bool { return ch.IsPending() })
}

// PendingIDs returns the IDs of pending changes, in order.
func (c *Changeset) PendingIDs() []string {
	pending := c.Pending()
	ids := make([]string, len(pending))
	for i, ch := range pending {
		ids[i] = ch.ID
	}
	return ids
}

// Filter returns a changeset holding only the given kinds. The returned
// changeset shares Change values with c.
func (c *Changeset) Filter(kinds ...ChangeKind) *Changeset {
	return &Changeset{
		Changes:   c.with(func(ch *Change) bool { return slices.Contains(kinds, ch.Kind) }),
		Revision:  c.Revision,
		CreatedAt: c.CreatedAt,
	}
}

// WithDisposition returns the changes in the given state, in order.
func (c *Changeset) WithDisposition(d Disposition) []*Change {
	return c.with(func(ch *Change) bool { return ch.Disposition == d })
}

func (c *Changeset) with(keep func(*Change) bool) []*Change {
	out := make([]*Change, 0)
	if c == nil {
		return out
	}
	for _, ch := range c.Changes {
		if keep(ch) {
			out = append(out, ch)
		}
	}
	return out
}

// Summary computes counts by disposition and kind.
func (c *Changeset) Summary() Summary {
	var s Summary
	for _, ch := range c.with(func(*Change) bool { return true }) {
		s.Total++
		switch ch.Disposition {
		case Pending:
			s.Pending++
		case Approved:
			s.Approved++
		case Rejected:
			s.Rejected++
		}
		switch ch.Kind {
		case KindAddedRow:
			s.AddedRows++
		case KindRemovedRow:
			s.RemovedRows++
		case KindModifiedCell:
			s.ModifiedCells++
		case KindEnabledToggled:
			s.EnabledToggles++
		}
	}
	return s
}

// Stale reports whether current was edited after the comparison.
func (c *Changeset) Stale(current *architecture.Snapshot) bool {
	return c == nil || current == nil || current.Revision() != c.Revision
}

// Resolve approves or rejects a pending change. Rejecting restores the old
// value into current; if that fails the change stays pending. Approved and
// rejected are final.
func (c *Changeset) Resolve(id string, action Action, current *architecture.Snapshot) (*Change, error) {
	change, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	if !change.IsPending() {
		return change, fmt.Errorf("%w: %s is %s", errors.ErrAlreadyResolved, id, change.Disposition)
	}

	switch action {
	case Approve:
		change.Disposition = Approved
	case Reject:
		if current == nil {
			return nil, errors.NewValidationError("current", nil, "a current snapshot is required to reject a change")
		}
		if err := revert(change, current); err != nil {
			return nil, errors.WrapResource("reject", "change", id, err)
		}
		change.Disposition = Rejected
		c.Revision = current.Revision()
	default:
		return nil, errors.NewValidationError("action", action, "must be approve or reject")
	}

	now := utc.Now()
	change.ResolvedAt = &now
	return change, nil
}

// ResolveAll applies the same action to every pending change, in order.
func (c *Changeset) ResolveAll(action Action, current *architecture.Snapshot) (int, error) {
	n := 0
	for _, change := range c.Pending() {
		if _, err := c.Resolve(change.ID, action, current); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// revert undoes change in current.
func revert(change *Change, current *architecture.Snapshot) error {
	switch change.Kind {
	case KindModifiedCell:
		if change.Column == constants.ColumnMappedSymbol {
			return current.RestoreMatch(change.RowID, change.OldValue, change.OldConfirmed)
		}
		return current.RestoreCell(change.RowID, change.Column, change.OldValue)
	case KindEnabledToggled:
		return current.RestoreEnabled(change.RowID, valueBool(change.OldValue))
	case KindAddedRow:
		return current.PurgeRow(change.RowID)
	case KindRemovedRow:
		if change.Row == nil {
			return errors.NewValidationError("row", change.ID, "removed row has no recorded content")
		}
		return current.RestoreRow(*change.Row)
	default:
		return errors.NewValidationError("kind", change.Kind, "unknown change kind")
	}
}

// ApplyApproved returns a copy of baseline with every approved change folded
// in. Pending and rejected changes are ignored. The result is editable.
func (c *Changeset) ApplyApproved(baseline *architecture.Snapshot) (*architecture.Snapshot, error) {
	out := architecture.New()
	if baseline != nil {
		out = baseline.Clone()
	}

	for _, change := range c.WithDisposition(Approved) {
		var err error
		switch change.Kind {
		case KindModifiedCell:
			if change.Column == constants.ColumnMappedSymbol {
				err = out.RestoreMatch(change.RowID, change.NewValue, change.NewConfirmed)
			} else {
				err = out.RestoreCell(change.RowID, change.Column, change.NewValue)
			}
		case KindEnabledToggled:
			err = out.RestoreEnabled(change.RowID, valueBool(change.NewValue))
		case KindAddedRow:
			if change.Row == nil {
				err = errors.NewValidationError("row", change.ID, "added row has no recorded content")
			} else {
				err = out.RestoreRow(*change.Row)
			}
		case KindRemovedRow:
			err = out.RemoveRow(change.RowID)
		}
		if err != nil {
			return nil, errors.WrapResource("apply", "change", change.ID, err)
		}
	}
	return out, nil
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	s := c.Summary()
	var parts []string
	if s.AddedRows > 0 {
		parts = append(parts, fmt.Sprintf("%d rows added", s.AddedRows))
	}
	if s.RemovedRows > 0 {
		parts = append(parts, fmt.Sprintf("%d rows removed", s.RemovedRows))
	}
	if s.ModifiedCells > 0 {
		parts = append(parts, fmt.Sprintf("%d cells modified", s.ModifiedCells))
	}
	if s.EnabledToggles > 0 {
		parts = append(parts, fmt.Sprintf("%d rows toggled", s.EnabledToggles))
	}

	return fmt.Sprintf("Changeset: %s (Total: %d changes, %d pending)", strings.Join(parts, ", "), s.Total, s.Pending)
}

// Print writes a detailed, human-readable view of the changeset.
func (c *Changeset) Print(w io.Writer) {
	_, _ = fmt.Fprintln(w, c.String())
	if c.IsEmpty() {
		return
	}
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))
	for _, change := range c.Changes {
		_, _ = fmt.Fprintf(w, "  %s %-9s %s\n", symbolFor(change.Kind), change.Disposition, change)
	}
}

func symbolFor(kind ChangeKind) string {
	switch kind {
	case KindAddedRow:
		return "➕"
	case KindRemovedRow:
		return "➖"
	case KindEnabledToggled:
		return "⏯"
	default:
		return "🔄"
	}
}

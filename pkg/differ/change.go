package differ

import (
	"fmt"
	"strconv"

	"github.com/agentstation/utc"

	"github.com/agentstation/archsync/pkg/architecture"
)

// ChangeKind classifies a change.
type ChangeKind string

const (
	// KindAddedRow is a row present only in current.
	KindAddedRow ChangeKind = "added-row"
	// KindRemovedRow is a live baseline row missing or tombstoned in current.
	KindRemovedRow ChangeKind = "removed-row"
	// KindModifiedCell is a cell whose value differs.
	KindModifiedCell ChangeKind = "modified-cell"
	// KindEnabledToggled is a row whose enabled flag differs.
	KindEnabledToggled ChangeKind = "enabled-toggled"
)

// Disposition is the review state of a change.
type Disposition string

const (
	// Pending changes await a decision.
	Pending Disposition = "pending"
	// Approved changes are folded into the next baseline.
	Approved Disposition = "approved"
	// Rejected changes have been reverted in current.
	Rejected Disposition = "rejected"
)

// Action is a review decision.
type Action string

const (
	// Approve accepts the new value.
	Approve Action = "approve"
	// Reject restores the old value into current.
	Reject Action = "reject"
)

// ParseAction converts user input to an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case Approve, "a", "accept":
		return Approve, nil
	case Reject, "r", "revert":
		return Reject, nil
	default:
		return "", fmt.Errorf("unknown action %q (want approve or reject)", s)
	}
}

// Change is one classified difference between baseline and current.
type Change struct {
	ID          string             `json:"id" yaml:"id"`
	Kind        ChangeKind         `json:"kind" yaml:"kind"`
	RowID       architecture.RowID `json:"row_id" yaml:"row_id"`
	Column      string             `json:"column,omitempty" yaml:"column,omitempty"`
	OldValue    architecture.Value `json:"old_value" yaml:"old_value"`
	NewValue    architecture.Value `json:"new_value" yaml:"new_value"`
	Row         *architecture.Row  `json:"row,omitempty" yaml:"row,omitempty"` // full row for added/removed changes
	Disposition Disposition        `json:"disposition" yaml:"disposition"`
	ResolvedAt  *utc.Time          `json:"resolved_at,omitempty" yaml:"resolved_at,omitempty"`

	// OldConfirmed and NewConfirmed carry the row's confirmed flag on each
	// side of a Mapped Symbol change.
	OldConfirmed bool `json:"old_confirmed,omitempty" yaml:"old_confirmed,omitempty"`
	NewConfirmed bool `json:"new_confirmed,omitempty" yaml:"new_confirmed,omitempty"`
}

// IsPending reports whether the change awaits a decision.
func (c *Change) IsPending() bool {
	return c.Disposition == Pending
}

// String returns a one-line description.
func (c *Change) String() string {
	switch c.Kind {
	case KindAddedRow:
		return fmt.Sprintf("%s: added row %q", c.ID, c.NewValue.String())
	case KindRemovedRow:
		return fmt.Sprintf("%s: removed row %q", c.ID, c.OldValue.String())
	case KindEnabledToggled:
		return fmt.Sprintf("%s: enabled %s → %s", c.ID, c.OldValue.String(), c.NewValue.String())
	default:
		return fmt.Sprintf("%s: %s %q → %q", c.ID, c.Column, c.OldValue.String(), c.NewValue.String())
	}
}

func rowChangeID(id architecture.RowID) string {
	return "r" + id.String()
}

func enabledChangeID(id architecture.RowID) string {
	return rowChangeID(id) + "/enabled"
}

func cellChangeID(id architecture.RowID, column string) string {
	return rowChangeID(id) + "/cell/" + column
}

func boolValue(b bool) architecture.Value {
	return architecture.Text(strconv.FormatBool(b))
}

func valueBool(v architecture.Value) bool {
	b, _ := strconv.ParseBool(v.String())
	return b
}

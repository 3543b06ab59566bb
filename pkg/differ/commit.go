package differ

import (
	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/errors"
)

// Commit promotes current to a new frozen baseline. It fails with an
// UnresolvedChangesError while any change is pending. A missing or stale
// changeset is recomputed first, so unreviewed edits always block. Without a
// working copy there is nothing to review and the baseline is committed as is.
func Commit(baseline, current *architecture.Snapshot, changes *Changeset) (*architecture.Snapshot, error) {
	if current == nil {
		if pending := changes.PendingIDs(); len(pending) > 0 {
			return nil, &errors.UnresolvedChangesError{Pending: pending}
		}
		if baseline == nil {
			return architecture.New().Freeze(), nil
		}
		return baseline.Clone().Freeze(), nil
	}
	if changes.Stale(current) {
		changes = Compare(baseline, current)
	}
	if pending := changes.PendingIDs(); len(pending) > 0 {
		return nil, &errors.UnresolvedChangesError{Pending: pending}
	}
	return current.Clone().Freeze(), nil
}

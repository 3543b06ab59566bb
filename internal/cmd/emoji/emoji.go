// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all commands.
package emoji

import "github.com/agentstation/archsync/pkg/differ"

// Status symbols.
const (
	// Success represents successful completion of an operation.
	Success = "✓"

	// Error represents failures.
	Error = "✗"

	// Warning represents non-critical issues such as broken links.
	Warning = "!"

	// Info represents informational messages.
	Info = "i"

	// Pending marks changes awaiting a decision.
	Pending = "?"

	// Watching marks the watch loop.
	Watching = "👀"
)

// Change kind symbols.
const (
	Added    = "+"
	Removed  = "-"
	Modified = "~"
	Toggled  = "⇄"
)

// ForKind returns the marker for a change kind.
func ForKind(kind differ.ChangeKind) string {
	switch kind {
	case differ.KindAddedRow:
		return Added
	case differ.KindRemovedRow:
		return Removed
	case differ.KindEnabledToggled:
		return Toggled
	default:
		return Modified
	}
}

// ForDisposition returns the marker for a review state.
func ForDisposition(d differ.Disposition) string {
	switch d {
	case differ.Approved:
		return Success
	case differ.Rejected:
		return Error
	default:
		return Pending
	}
}

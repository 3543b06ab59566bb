// Package constants provides shared constants used throughout the archsync codebase.
// This includes matching defaults, built-in column names, file permissions and
// project file names that must stay consistent between the CLI and the library.
package constants

import "time"

// Matching constants
const (
	// DefaultThreshold is the minimum confidence for an automatic match
	DefaultThreshold = 70

	// MinThreshold is the lowest accepted threshold
	MinThreshold = 0

	// MaxThreshold is the highest accepted threshold
	MaxThreshold = 100

	// DefaultTopCandidates is the number of ranked candidates offered per port
	DefaultTopCandidates = 10

	// PrefixWeight scales the shared-prefix bonus applied on top of edit distance
	PrefixWeight = 0.5
)

// Built-in column names. Built-in columns cannot be removed or renamed.
const (
	ColumnPort         = "Port/Interface"
	ColumnType         = "Type"
	ColumnMappedSymbol = "Mapped Symbol"
	ColumnConfidence   = "Confidence"
	ColumnReviewStatus = "Review Status"
)

// Review status values
const (
	ReviewNotReviewed = "Not Reviewed"
	ReviewInReview    = "In Review"
	ReviewReviewed    = "Reviewed"
	ReviewBrokenLink  = "Broken Link"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Project file names
const (
	// DefaultProjectDir is used when no project directory is configured
	DefaultProjectDir = ".archsync"

	// ManifestFile holds project identity and the last match record
	ManifestFile = "archsync.yaml"

	// BaselineFile holds the committed baseline snapshot
	BaselineFile = "baseline.yaml"

	// CurrentFile holds the working snapshot when it diverged from the baseline
	CurrentFile = "current.yaml"

	// ChangesFile holds the last comparison and its dispositions
	ChangesFile = "changes.yaml"

	// CatalogFile holds the symbol catalog used for the last match
	CatalogFile = "catalog.yaml"

	// ManifestVersion is the project layout version written to the manifest
	ManifestVersion = 1
)

// Timeout constants
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// WatchDebounce is how long watch waits for writes to settle before re-matching
	WatchDebounce = 500 * time.Millisecond
)

// Format constants
const (
	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)

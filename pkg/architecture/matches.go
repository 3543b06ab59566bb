package architecture

import (
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/symbols"
)

// Assignment is the matcher's verdict for one row. An empty Symbol means the
// row stays unmatched.
type Assignment struct {
	Symbol string
	Score  int
}

// Matched reports whether a symbol was assigned.
func (a Assignment) Matched() bool {
	return a.Symbol != ""
}

type applyOptions struct {
	overwriteConfirmed bool
	catalog            *symbols.Catalog
	delta              *symbols.Delta
}

// ApplyOption configures ApplyMatches.
type ApplyOption func(*applyOptions)

// OverwriteConfirmed lets automatic matches replace user-confirmed ones.
func OverwriteConfirmed() ApplyOption {
	return func(o *applyOptions) {
		o.overwriteConfirmed = true
	}
}

// WithCatalog enables broken-link detection: reviewed rows whose mapped symbol
// is absent from catalog are flagged.
func WithCatalog(catalog *symbols.Catalog) ApplyOption {
	return func(o *applyOptions) {
		o.catalog = catalog
	}
}

// WithDelta flags reviewed rows whose mapped symbol was removed or changed
// since the previous match.
func WithDelta(delta *symbols.Delta) ApplyOption {
	return func(o *applyOptions) {
		o.delta = delta
	}
}

// ApplyReport counts what ApplyMatches did.
type ApplyReport struct {
	Matched          int `json:"matched" yaml:"matched"`
	Unmatched        int `json:"unmatched" yaml:"unmatched"`
	SkippedConfirmed int `json:"skipped_confirmed" yaml:"skipped_confirmed"`
	BrokenLinks      int `json:"broken_links" yaml:"broken_links"`
}

// ApplyMatches writes matcher results into the Mapped Symbol and Confidence
// cells. Confirmed rows are left alone unless OverwriteConfirmed is given.
// Every referenced row must exist and be live; otherwise nothing changes.
func (s *Snapshot) ApplyMatches(results map[RowID]Assignment, opts ...ApplyOption) (ApplyReport, error) {
	o := &applyOptions{}
	for _, opt := range opts {
		opt(o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var report ApplyReport
	if err := s.writable(); err != nil {
		return report, err
	}
	for id, a := range results {
		if _, err := s.liveRow(id); err != nil {
			return report, err
		}
		if a.Score < constants.MinThreshold || a.Score > constants.MaxThreshold {
			return report, errors.NewValidationError("score", a.Score, "must be between 0 and 100")
		}
	}

	for _, r := range s.rows {
		if !r.Live() || !o.brokenLink(r) {
			continue
		}
		setCell(r, constants.ColumnReviewStatus, Text(constants.ReviewBrokenLink))
		report.BrokenLinks++
	}

	for _, r := range s.rows {
		a, ok := results[r.ID]
		if !ok {
			continue
		}
		if r.Confirmed {
			if !o.overwriteConfirmed {
				report.SkippedConfirmed++
				continue
			}
			r.Confirmed = false
		}
		if a.Matched() {
			setCell(r, constants.ColumnMappedSymbol, Text(a.Symbol))
			setCell(r, constants.ColumnConfidence, Int(a.Score))
			report.Matched++
		} else {
			setCell(r, constants.ColumnMappedSymbol, Empty())
			setCell(r, constants.ColumnConfidence, Empty())
			report.Unmatched++
		}
	}

	s.revision++
	return report, nil
}

func (o *applyOptions) brokenLink(r *Row) bool {
	if r.ReviewStatus() != constants.ReviewReviewed {
		return false
	}
	symbol := r.MatchedSymbol()
	if symbol == "" {
		return false
	}
	if o.catalog != nil {
		if _, ok := o.catalog.Lookup(symbol); !ok {
			return true
		}
	}
	return o.delta != nil && o.delta.Affects(symbol)
}

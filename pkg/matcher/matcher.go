// Package matcher assigns catalog symbols to architecture rows by name
// similarity.
//
// Matching is stateless: the same rows, catalog and threshold always produce
// the same results, ties included. Ties on score are broken by exact
// case-insensitive equality, then by kind (function before object before
// unknown), then by the lexicographically smallest name.
package matcher

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/logging"
	"github.com/agentstation/archsync/pkg/symbols"
)

// Result is the outcome for one row. Symbol is nil when the best candidate
// scored below the threshold; Score still reports that best score.
type Result struct {
	RowID  architecture.RowID `json:"row_id" yaml:"row_id"`
	Port   string             `json:"port" yaml:"port"`
	Symbol *symbols.Symbol    `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Score  int                `json:"score" yaml:"score"`
}

// Matched reports whether a symbol was assigned.
func (r Result) Matched() bool {
	return r.Symbol != nil
}

// Results maps row IDs to their outcome.
type Results map[architecture.RowID]Result

// Matched returns the number of rows that received a symbol.
func (rs Results) Matched() int {
	n := 0
	for _, r := range rs {
		if r.Matched() {
			n++
		}
	}
	return n
}

// Sorted returns the results ordered by row ID.
func (rs Results) Sorted() []Result {
	out := make([]Result, 0, len(rs))
	for _, r := range rs {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Result) int {
		return cmp.Compare(a.RowID, b.RowID)
	})
	return out
}

// Assignments converts results into the form a Snapshot applies.
func (rs Results) Assignments() map[architecture.RowID]architecture.Assignment {
	out := make(map[architecture.RowID]architecture.Assignment, len(rs))
	for id, r := range rs {
		a := architecture.Assignment{Score: r.Score}
		if r.Symbol != nil {
			a.Symbol = r.Symbol.Name
		}
		out[id] = a
	}
	return out
}

// Candidate is a scored symbol.
type Candidate struct {
	Symbol symbols.Symbol `json:"symbol" yaml:"symbol"`
	Score  int            `json:"score" yaml:"score"`
}

type options struct {
	kinds  []symbols.Kind
	logger *zerolog.Logger
}

// Option configures matching.
type Option func(*options)

// WithKinds restricts candidates to the given symbol kinds.
func WithKinds(kinds ...symbols.Kind) Option {
	return func(o *options) {
		o.kinds = append(o.kinds, kinds...)
	}
}

// WithLogger sets the logger for match diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrDefault(logger)
	}
}

// Match finds the best symbol for every enabled, live row with a non-empty
// Port/Interface cell. Rows whose best score is below threshold are reported
// unmatched.
func Match(rows []architecture.Row, catalog *symbols.Catalog, threshold int, opts ...Option) (Results, error) {
	if threshold < constants.MinThreshold || threshold > constants.MaxThreshold {
		return nil, errors.NewValidationError("threshold", threshold, "must be between 0 and 100")
	}
	o := &options{logger: &logging.Nop}
	for _, opt := range opts {
		opt(o)
	}

	pool := newPool(catalog, o.kinds)
	results := make(Results, len(rows))
	for _, row := range rows {
		port := strings.TrimSpace(row.Port())
		if !row.Enabled || row.Removed || port == "" {
			continue
		}

		result := Result{RowID: row.ID, Port: port}
		if best, ok := pool.best(port); ok {
			result.Score = best.Score
			if best.Score >= threshold {
				sym := best.Symbol
				result.Symbol = &sym
			}
		}
		results[row.ID] = result

		o.logger.Trace().
			Stringer("row", row.ID).
			Str("port", port).
			Int("score", result.Score).
			Bool("matched", result.Matched()).
			Msg("Scored row")
	}

	o.logger.Debug().
		Int("rows", len(results)).
		Int("matched", results.Matched()).
		Int("symbols", len(pool.entries)).
		Int("threshold", threshold).
		Msg("Matched rows against catalog")

	return results, nil
}

// Top returns up to limit candidates for name, best first. A limit of zero
// or less returns every candidate.
func Top(name string, catalog *symbols.Catalog, limit int, kinds ...symbols.Kind) []Candidate {
	pool := newPool(catalog, kinds)
	ranked := pool.rank(name)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

type entry struct {
	symbol symbols.Symbol
	form   form
}

// pool holds catalog symbols with their names pre-normalized.
type pool struct {
	entries []entry
}

func newPool(catalog *symbols.Catalog, kinds []symbols.Kind) *pool {
	list := catalog.OfKind(kinds...)
	p := &pool{entries: make([]entry, len(list))}
	for i, s := range list {
		p.entries[i] = entry{symbol: s, form: prepare(s.Name)}
	}
	return p
}

func (p *pool) best(port string) (Candidate, bool) {
	target := prepare(port)
	var best Candidate
	found := false
	for _, e := range p.entries {
		c := Candidate{Symbol: e.symbol, Score: target.score(e.form)}
		if !found || better(port, c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

func (p *pool) rank(port string) []Candidate {
	target := prepare(port)
	out := make([]Candidate, len(p.entries))
	for i, e := range p.entries {
		out[i] = Candidate{Symbol: e.symbol, Score: target.score(e.form)}
	}
	slices.SortFunc(out, func(a, b Candidate) int {
		switch {
		case better(port, a, b):
			return -1
		case better(port, b, a):
			return 1
		default:
			return 0
		}
	})
	return out
}

// better reports whether a beats b for port.
func better(port string, a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	aExact := strings.EqualFold(a.Symbol.Name, port)
	bExact := strings.EqualFold(b.Symbol.Name, port)
	if aExact != bExact {
		return aExact
	}
	if ra, rb := a.Symbol.Kind.Rank(), b.Symbol.Kind.Rank(); ra != rb {
		return ra < rb
	}
	return a.Symbol.Name < b.Symbol.Name
}

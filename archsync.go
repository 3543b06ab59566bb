// Package archsync keeps a hand-maintained architecture table in step with the
// symbols of a compiled binary.
//
// A Workspace holds a frozen baseline snapshot and an editable working copy
// that is created on the first edit. Symbols extracted from an ELF binary are
// matched to rows by name similarity; the working copy is then compared with
// the baseline, each difference is approved or rejected, and a commit makes
// the working copy the next baseline.
//
//	ws, _ := archsync.New(archsync.WithThreshold(70))
//	catalog, _ := ws.ExtractFile(ctx, "firmware.elf")
//	report, _ := ws.Match(catalog)
//	changes := ws.Compare()
//	_, _ = ws.ResolveAll(differ.Approve)
//	baseline, _ := ws.Commit()
//
// Every method is safe for concurrent use; operations are serialized.
package archsync

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/archsync/internal/store"
	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/differ"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/extract"
	"github.com/agentstation/archsync/pkg/logging"
	"github.com/agentstation/archsync/pkg/matcher"
	"github.com/agentstation/archsync/pkg/symbols"
)

// MatchRecord describes the last matching run.
type MatchRecord = store.MatchRecord

// MatchReport is the outcome of Match.
type MatchReport struct {
	Results matcher.Results          `json:"results" yaml:"results"`
	Applied architecture.ApplyReport `json:"applied" yaml:"applied"`
	Delta   *symbols.Delta           `json:"delta,omitempty" yaml:"delta,omitempty"`
	Record  MatchRecord              `json:"record" yaml:"record"`
}

// Workspace manages a baseline, its working copy and the review of the
// differences between them.
type Workspace interface {
	// Extract builds a symbol catalog from an in-memory binary
	Extract(data []byte, opts ...extract.Option) (*symbols.Catalog, error)

	// ExtractFile builds a symbol catalog from a binary on disk
	ExtractFile(ctx context.Context, path string, opts ...extract.Option) (*symbols.Catalog, error)

	// Match assigns catalog symbols to the working copy's rows
	Match(catalog *symbols.Catalog) (*MatchReport, error)

	// Edit runs fn against the working copy; on error nothing changes
	Edit(fn func(*architecture.Snapshot) error) error

	// Current returns a copy of the working copy, or of the baseline if nothing was edited
	Current() *architecture.Snapshot

	// Baseline returns the frozen baseline
	Baseline() *architecture.Snapshot

	// Compare diffs the working copy against the baseline and keeps the result for review
	Compare() *differ.Changeset

	// Changes returns the changeset under review, or nil
	Changes() *differ.Changeset

	// Resolve approves or rejects one change
	Resolve(id string, action differ.Action) (*differ.Change, error)

	// ResolveAll applies action to every pending change
	ResolveAll(action differ.Action) (int, error)

	// Commit promotes the working copy to the new baseline
	Commit() (*architecture.Snapshot, error)

	// ExportColumns returns the cells of every live enabled row, by column
	ExportColumns() map[string][]architecture.Value

	// Catalog returns the catalog used by the last Match, or nil
	Catalog() *symbols.Catalog

	// MatchRecord returns the record of the last Match, or nil
	MatchRecord() *MatchRecord

	// Save writes the project to its directory
	Save() error

	// Dir returns the project directory, empty for in-memory workspaces
	Dir() string

	// OnCommit registers a callback for commits
	OnCommit(CommitHook)

	// OnMatch registers a callback for match runs
	OnMatch(MatchHook)

	// OnResolve registers a callback for resolved changes
	OnResolve(ResolveHook)
}

// source identifies the binary behind the last extracted catalog.
type source struct {
	path   string
	digest string
}

// workspace is the internal implementation of the Workspace interface
type workspace struct {
	mu       sync.Mutex
	opts     *options
	logger   *zerolog.Logger
	manifest *store.Manifest
	baseline *architecture.Snapshot
	current  *architecture.Snapshot // nil until the first edit
	changes  *differ.Changeset
	catalog  *symbols.Catalog
	sources  map[*symbols.Catalog]source

	*hooks
}

// New creates an in-memory Workspace. Use WithDir to make it saveable.
func New(opts ...Option) (Workspace, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	baseline := architecture.New().Freeze()
	if o.baseline != nil {
		baseline = o.baseline.Clone().Freeze()
	}

	now := utc.Now()
	manifest := &store.Manifest{
		Version:   constants.ManifestVersion,
		ID:        uuid.New(),
		Name:      o.name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return newWorkspace(o, &store.Project{Manifest: manifest, Baseline: baseline}), nil
}

// Init creates a new project in dir and returns its Workspace.
func Init(dir string, opts ...Option) (Workspace, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}
	st := store.New(dir, store.WithLogger(logging.OrDefault(o.logger)))
	p, err := st.Init(o.name)
	if err != nil {
		return nil, err
	}
	if o.baseline != nil {
		p.Baseline = o.baseline.Clone().Freeze()
		if err := st.Save(p); err != nil {
			return nil, err
		}
	}
	o.dir = dir
	return newWorkspace(o, p), nil
}

// Open loads the project saved in dir.
func Open(dir string, opts ...Option) (Workspace, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}
	p, err := store.New(dir, store.WithLogger(logging.OrDefault(o.logger))).Load()
	if err != nil {
		return nil, err
	}
	o.dir = dir
	return newWorkspace(o, p), nil
}

func newWorkspace(o *options, p *store.Project) *workspace {
	return &workspace{
		opts:     o,
		logger:   logging.OrDefault(o.logger),
		manifest: p.Manifest,
		baseline: p.Baseline,
		current:  p.Current,
		changes:  p.Changes,
		catalog:  p.Catalog,
		sources:  make(map[*symbols.Catalog]source),
		hooks:    newHooks(),
	}
}

// Extract builds a symbol catalog from an in-memory binary.
func (w *workspace) Extract(data []byte, opts ...extract.Option) (*symbols.Catalog, error) {
	catalog, err := extract.Extract(data, w.extractOptions(opts)...)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sources[catalog] = source{digest: store.DigestBytes(data)}
	return catalog, nil
}

// ExtractFile builds a symbol catalog from a binary on disk.
func (w *workspace) ExtractFile(ctx context.Context, path string, opts ...extract.Option) (*symbols.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	catalog, err := extract.Extract(data, w.extractOptions(opts)...)
	if err != nil {
		return nil, errors.WrapResource("extract", "binary", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sources[catalog] = source{path: path, digest: store.DigestBytes(data)}
	return catalog, nil
}

func (w *workspace) extractOptions(opts []extract.Option) []extract.Option {
	all := make([]extract.Option, 0, len(w.opts.extract)+len(opts)+1)
	all = append(all, extract.WithLogger(w.logger))
	all = append(all, w.opts.extract...)
	return append(all, opts...)
}

// Match assigns catalog symbols to the working copy's rows. Rows whose
// reviewed symbol disappeared or changed since the previous match are marked
// as broken links.
func (w *workspace) Match(catalog *symbols.Catalog) (*MatchReport, error) {
	if catalog == nil {
		return nil, errors.NewValidationError("catalog", nil, "catalog cannot be nil")
	}

	report, err := w.match(catalog)
	if err != nil {
		return nil, err
	}
	w.triggerMatch(report)
	return report, nil
}

func (w *workspace) match(catalog *symbols.Catalog) (*MatchReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	work := w.working().Clone()
	results, err := matcher.Match(work.Rows(), catalog, w.opts.threshold,
		matcher.WithKinds(w.opts.kinds...),
		matcher.WithLogger(w.logger),
	)
	if err != nil {
		return nil, err
	}

	applyOpts := []architecture.ApplyOption{architecture.WithCatalog(catalog)}
	var delta *symbols.Delta
	if w.catalog != nil {
		delta = symbols.Compare(w.catalog, catalog)
		applyOpts = append(applyOpts, architecture.WithDelta(delta))
	}
	if w.opts.overwriteConfirmed {
		applyOpts = append(applyOpts, architecture.OverwriteConfirmed())
	}

	applied, err := work.ApplyMatches(results.Assignments(), applyOpts...)
	if err != nil {
		return nil, errors.WrapResource("match", "snapshot", "", err)
	}

	src := w.sources[catalog]
	record := MatchRecord{
		Binary:    src.path,
		Digest:    src.digest,
		Threshold: w.opts.threshold,
		Symbols:   catalog.Len(),
		Matched:   results.Matched(),
		MatchedAt: utc.Now(),
	}

	w.current = work
	w.catalog = catalog
	w.manifest.Match = &record
	clear(w.sources)

	w.logger.Info().
		Int("rows", len(results)).
		Int("matched", applied.Matched).
		Int("skipped_confirmed", applied.SkippedConfirmed).
		Int("broken_links", applied.BrokenLinks).
		Int("threshold", w.opts.threshold).
		Msg("Applied matches")

	return &MatchReport{Results: results, Applied: applied, Delta: delta, Record: record}, nil
}

// Edit runs fn against a copy of the working copy and keeps the result only
// when fn succeeds.
func (w *workspace) Edit(fn func(*architecture.Snapshot) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	work := w.working().Clone()
	if err := fn(work); err != nil {
		return err
	}
	w.current = work
	return nil
}

// working returns the snapshot edits apply to. Callers hold mu.
func (w *workspace) working() *architecture.Snapshot {
	if w.current != nil {
		return w.current
	}
	return w.baseline
}

// Current returns a copy of the working copy.
func (w *workspace) Current() *architecture.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.working().Clone()
}

// Baseline returns the frozen baseline.
func (w *workspace) Baseline() *architecture.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.baseline
}

// Compare diffs the working copy against the baseline. The changeset replaces
// any previous one, dispositions included.
func (w *workspace) Compare() *differ.Changeset {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.changes = differ.Compare(w.baseline, w.working())
	w.logger.Debug().Int("changes", w.changes.Len()).Msg("Compared working copy with baseline")
	return w.changes
}

// Changes returns the changeset under review.
func (w *workspace) Changes() *differ.Changeset {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changes
}

// Resolve approves or rejects one change of the last comparison.
func (w *workspace) Resolve(id string, action differ.Action) (*differ.Change, error) {
	change, err := w.resolve(id, action)
	if err != nil {
		return nil, err
	}
	w.triggerResolve([]differ.Change{*change})
	return change, nil
}

func (w *workspace) resolve(id string, action differ.Action) (*differ.Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.reviewable(); err != nil {
		return nil, err
	}
	change, err := w.changes.Resolve(id, action, w.current)
	if err != nil {
		return nil, err
	}
	w.logger.Debug().Str("change", id).Str("disposition", string(change.Disposition)).Msg("Resolved change")
	return change, nil
}

// ResolveAll applies action to every pending change.
func (w *workspace) ResolveAll(action differ.Action) (int, error) {
	resolved, err := w.resolveAll(action)
	w.triggerResolve(resolved)
	return len(resolved), err
}

func (w *workspace) resolveAll(action differ.Action) ([]differ.Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.reviewable(); err != nil {
		return nil, err
	}
	var resolved []differ.Change
	for _, c := range w.changes.Pending() {
		change, err := w.changes.Resolve(c.ID, action, w.current)
		if err != nil {
			return resolved, err
		}
		resolved = append(resolved, *change)
	}
	return resolved, nil
}

// reviewable checks that the changeset still describes the working copy.
// Callers hold mu.
func (w *workspace) reviewable() error {
	if w.changes == nil {
		return errors.NewNotFoundError("changeset", "(run compare first)")
	}
	if w.changes.Stale(w.working()) {
		return errors.NewValidationError("changeset", w.changes.Revision, "working copy changed since the last compare")
	}
	return nil
}

// Commit promotes the working copy to the new baseline. It fails while any
// change is pending or when the working copy changed after the last compare
// in ways nobody reviewed.
func (w *workspace) Commit() (*architecture.Snapshot, error) {
	previous, next, changes, err := w.commit()
	if err != nil {
		return nil, err
	}
	w.triggerCommit(previous, next, changes)
	return next, nil
}

func (w *workspace) commit() (previous, next *architecture.Snapshot, changes *differ.Changeset, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, err = differ.Commit(w.baseline, w.current, w.changes)
	if err != nil {
		return nil, nil, nil, err
	}

	previous, changes = w.baseline, w.changes
	now := utc.Now()
	w.baseline = next
	w.current = nil
	w.changes = nil
	w.manifest.CommittedAt = &now

	w.logger.Info().Int("rows", next.Len()).Msg("Committed new baseline")
	return previous, next, changes, nil
}

// ExportColumns returns the working copy's live enabled rows by column.
func (w *workspace) ExportColumns() map[string][]architecture.Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.working().ExportColumns()
}

// Catalog returns the catalog used by the last Match.
func (w *workspace) Catalog() *symbols.Catalog {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.catalog
}

// MatchRecord returns a copy of the last match record.
func (w *workspace) MatchRecord() *MatchRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.manifest.Match == nil {
		return nil
	}
	record := *w.manifest.Match
	return &record
}

// Dir returns the project directory.
func (w *workspace) Dir() string {
	return w.opts.dir
}

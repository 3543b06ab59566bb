package archsync

import (
	"github.com/agentstation/archsync/internal/store"
	"github.com/agentstation/archsync/pkg/errors"
)

// Save writes the baseline, working copy, changeset, catalog and manifest to
// the project directory. An unedited working copy is not written.
func (w *workspace) Save() error {
	if w.opts.dir == "" {
		return &errors.ConfigError{
			Component: "workspace",
			Message:   "no project directory configured",
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	p := &store.Project{
		Manifest: w.manifest,
		Baseline: w.baseline,
		Current:  w.current,
		Changes:  w.changes,
		Catalog:  w.catalog,
	}
	st := store.New(w.opts.dir, store.WithLogger(w.logger))
	if err := st.Save(p); err != nil {
		return errors.WrapResource("save", "project", w.opts.dir, err)
	}
	return nil
}

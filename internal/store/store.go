// Package store persists an archsync project directory: the manifest, the
// baseline and current snapshots, the last changeset and the catalog used for
// the last match. All files are YAML and are replaced atomically.
package store

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/differ"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/logging"
	"github.com/agentstation/archsync/pkg/symbols"
)

// MatchRecord describes the last matching run.
type MatchRecord struct {
	Binary    string   `json:"binary" yaml:"binary"`
	Digest    string   `json:"digest" yaml:"digest"` // blake3 of the binary, hex
	Threshold int      `json:"threshold" yaml:"threshold"`
	Symbols   int      `json:"symbols" yaml:"symbols"`
	Matched   int      `json:"matched" yaml:"matched"`
	MatchedAt utc.Time `json:"matched_at" yaml:"matched_at"`
}

// Manifest identifies a project.
type Manifest struct {
	Version     int          `json:"version" yaml:"version"`
	ID          uuid.UUID    `json:"id" yaml:"id"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	CreatedAt   utc.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt   utc.Time     `json:"updated_at" yaml:"updated_at"`
	CommittedAt *utc.Time    `json:"committed_at,omitempty" yaml:"committed_at,omitempty"`
	Match       *MatchRecord `json:"match,omitempty" yaml:"match,omitempty"`
}

// Project is everything stored in a project directory. Current, Changes and
// Catalog are nil when absent.
type Project struct {
	Manifest *Manifest
	Baseline *architecture.Snapshot
	Current  *architecture.Snapshot
	Changes  *differ.Changeset
	Catalog  *symbols.Catalog
}

// Store reads and writes one project directory.
type Store struct {
	dir    string
	logger *zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.OrDefault(logger)
	}
}

// New returns a Store rooted at dir. Nothing is touched on disk.
func New(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, logger: &logging.Nop}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the project directory.
func (s *Store) Dir() string {
	return s.dir
}

// Exists reports whether the directory holds a manifest.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path(constants.ManifestFile))
	return err == nil
}

// Init creates a new project with an empty frozen baseline.
func (s *Store) Init(name string) (*Project, error) {
	if s.Exists() {
		return nil, errors.NewValidationError("project", s.dir, "project already initialized")
	}
	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", s.dir, err)
	}

	now := utc.Now()
	p := &Project{
		Manifest: &Manifest{
			Version:   constants.ManifestVersion,
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Baseline: architecture.New().Freeze(),
	}
	if err := s.Save(p); err != nil {
		return nil, err
	}

	s.logger.Info().Str("dir", s.dir).Stringer("id", p.Manifest.ID).Msg("Initialized project")
	return p, nil
}

// Load reads the whole project.
func (s *Store) Load() (*Project, error) {
	p := &Project{Manifest: &Manifest{}}
	if err := s.readYAML(constants.ManifestFile, p.Manifest); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("project", s.dir)
		}
		return nil, err
	}

	baseline, err := s.loadSnapshot(constants.BaselineFile)
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		baseline = architecture.New()
	}
	p.Baseline = baseline.Freeze()

	if p.Current, err = s.loadSnapshot(constants.CurrentFile); err != nil {
		return nil, err
	}

	cs := &differ.Changeset{}
	if err := s.readYAML(constants.ChangesFile, cs); err == nil {
		p.Changes = cs
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var syms []symbols.Symbol
	if err := s.readYAML(constants.CatalogFile, &syms); err == nil {
		catalog, err := symbols.NewCatalog(syms...)
		if err != nil {
			return nil, errors.WrapResource("load", "catalog", constants.CatalogFile, err)
		}
		p.Catalog = catalog
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	s.logger.Debug().
		Str("dir", s.dir).
		Bool("current", p.Current != nil).
		Int("changes", p.Changes.Len()).
		Int("symbols", p.Catalog.Len()).
		Msg("Loaded project")
	return p, nil
}

// Save writes the whole project. Optional parts that are nil are removed
// from disk so a reload sees the same state.
func (s *Store) Save(p *Project) error {
	if p == nil || p.Manifest == nil || p.Baseline == nil {
		return errors.NewValidationError("project", nil, "manifest and baseline are required")
	}
	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", s.dir, err)
	}

	p.Manifest.UpdatedAt = utc.Now()
	if err := s.writeYAML(constants.ManifestFile, p.Manifest); err != nil {
		return err
	}
	if err := s.writeYAML(constants.BaselineFile, p.Baseline.Document()); err != nil {
		return err
	}

	if p.Current != nil {
		if err := s.writeYAML(constants.CurrentFile, p.Current.Document()); err != nil {
			return err
		}
	} else if err := s.remove(constants.CurrentFile); err != nil {
		return err
	}

	if p.Changes != nil {
		if err := s.writeYAML(constants.ChangesFile, p.Changes); err != nil {
			return err
		}
	} else if err := s.remove(constants.ChangesFile); err != nil {
		return err
	}

	if p.Catalog != nil {
		if err := s.writeYAML(constants.CatalogFile, p.Catalog.List()); err != nil {
			return err
		}
	}

	s.logger.Debug().Str("dir", s.dir).Msg("Saved project")
	return nil
}

func (s *Store) loadSnapshot(name string) (*architecture.Snapshot, error) {
	var doc architecture.Document
	if err := s.readYAML(name, &doc); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	snap, err := architecture.FromDocument(doc)
	if err != nil {
		return nil, errors.WrapResource("load", "snapshot", name, err)
	}
	return snap, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readYAML decodes a project file. A missing file returns the os error
// unchanged so callers can test it with os.IsNotExist.
func (s *Store) readYAML(name string, v any) error {
	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return errors.WrapIO("read", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	return nil
}

// writeYAML replaces a project file through a temp file and rename.
func (s *Store) writeYAML(name string, v any) error {
	path := s.path(name)
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

func (s *Store) remove(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("remove", s.path(name), err)
	}
	return nil
}

// Digest returns the hex blake3 digest of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WrapIO("read", path, err)
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.WrapIO("read", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestBytes returns the hex blake3 digest of data.
func DigestBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

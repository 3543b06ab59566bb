package archsync

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/archsync/internal/config"
	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/extract"
	"github.com/agentstation/archsync/pkg/symbols"
)

// Option is a function that configures a Workspace
type Option func(*options) error

type options struct {
	dir                string
	name               string
	baseline           *architecture.Snapshot
	threshold          int
	overwriteConfirmed bool
	kinds              []symbols.Kind
	extract            []extract.Option
	logger             *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		threshold: constants.DefaultThreshold,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithDir sets the project directory used by Save.
func WithDir(dir string) Option {
	return func(o *options) error {
		o.dir = dir
		return nil
	}
}

// WithName sets the project name recorded in the manifest.
func WithName(name string) Option {
	return func(o *options) error {
		o.name = name
		return nil
	}
}

// WithBaseline starts the workspace from a copy of baseline instead of an
// empty snapshot.
func WithBaseline(baseline *architecture.Snapshot) Option {
	return func(o *options) error {
		if baseline == nil {
			return errors.NewValidationError("baseline", nil, "baseline cannot be nil")
		}
		o.baseline = baseline
		return nil
	}
}

// WithThreshold sets the minimum score for an automatic match.
func WithThreshold(threshold int) Option {
	return func(o *options) error {
		if threshold < 0 || threshold > 100 {
			return errors.NewValidationError("threshold", threshold, "must be between 0 and 100")
		}
		o.threshold = threshold
		return nil
	}
}

// WithOverwriteConfirmed lets Match replace user-confirmed matches.
func WithOverwriteConfirmed(enabled bool) Option {
	return func(o *options) error {
		o.overwriteConfirmed = enabled
		return nil
	}
}

// WithKinds limits matching to symbols of the given kinds.
func WithKinds(kinds ...symbols.Kind) Option {
	return func(o *options) error {
		o.kinds = kinds
		return nil
	}
}

// WithExtractOptions sets default options for Extract and ExtractFile.
func WithExtractOptions(opts ...extract.Option) Option {
	return func(o *options) error {
		o.extract = append(o.extract, opts...)
		return nil
	}
}

// WithConfig applies validated settings.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.NewValidationError("config", nil, "config cannot be nil")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.threshold = cfg.Threshold
		o.overwriteConfirmed = cfg.OverwriteConfirmed
		if len(cfg.Include) > 0 {
			o.extract = append(o.extract, extract.WithInclude(cfg.Include...))
		}
		if len(cfg.Exclude) > 0 {
			o.extract = append(o.extract, extract.WithExclude(cfg.Exclude...))
		}
		if cfg.SkipLocals {
			o.extract = append(o.extract, extract.WithoutLocals())
		}
		if cfg.SkipSignatures {
			o.extract = append(o.extract, extract.WithoutSignatures())
		}
		return nil
	}
}

// WithLogger sets the workspace logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "logger cannot be nil")
		}
		o.logger = logger
		return nil
	}
}

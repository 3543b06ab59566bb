package extract

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/archsync/internal/pattern"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/logging"
)

type options struct {
	include    []string
	exclude    []string
	skipLocals bool
	signatures bool
	logger     *zerolog.Logger

	filter *pattern.Filter
}

func defaultOptions() *options {
	return &options{
		signatures: true,
		logger:     &logging.Nop,
	}
}

// Option configures an extraction.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	filter, err := pattern.NewFilter(o.include, o.exclude)
	if err != nil {
		return nil, errors.WrapValidation("pattern", err)
	}
	o.filter = filter
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithInclude keeps only symbols matching at least one pattern.
// Patterns are globs unless they look like regular expressions.
func WithInclude(patterns ...string) Option {
	return func(o *options) error {
		o.include = append(o.include, patterns...)
		return nil
	}
}

// WithExclude drops symbols matching any pattern.
func WithExclude(patterns ...string) Option {
	return func(o *options) error {
		o.exclude = append(o.exclude, patterns...)
		return nil
	}
}

// WithoutLocals drops symbols with local binding. Static helpers in different
// translation units often share a name, so this also avoids duplicate conflicts.
func WithoutLocals() Option {
	return func(o *options) error {
		o.skipLocals = true
		return nil
	}
}

// WithoutSignatures skips reading DWARF debug information.
func WithoutSignatures() Option {
	return func(o *options) error {
		o.signatures = false
		return nil
	}
}

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{
				Field:   "logger",
				Message: "cannot be nil",
			}
		}
		o.logger = logger
		return nil
	}
}

// Package app provides the application context and dependency management
// for the archsync CLI. It centralizes configuration, logging and the
// project workspace, and hands them to commands through the
// application.Application interface.
package app

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/archsync"
	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/output"
	"github.com/agentstation/archsync/internal/config"
	"github.com/agentstation/archsync/pkg/errors"
)

var _ application.Application = (*App)(nil)

// App represents the archsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config   *Config
	viper    *viper.Viper
	settings *config.Config

	// Logger
	logger *zerolog.Logger

	// Workspace (lazy-initialized, singleton)
	mu        sync.Mutex
	workspace archsync.Workspace
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, v, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg
	app.viper = v

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the CLI configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the explicit --format value, or a format chosen from
// whether stdout is a terminal.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Settings returns the validated extraction and matching settings.
// Settings are loaded on first use, after flags have been bound.
func (a *App) Settings() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.settings == nil {
		if cfg, err := config.Load(a.viper); err == nil {
			a.settings = cfg
		} else {
			a.logger.Warn().Err(err).Msg("Invalid settings, using defaults")
			a.settings = config.Default()
		}
	}
	return a.settings
}

// loadSettings validates settings and reports errors, unlike Settings.
func (a *App) loadSettings() error {
	cfg, err := config.Load(a.viper)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.settings = cfg
	a.mu.Unlock()
	return nil
}

// Workspace opens the configured project, creating the instance lazily.
func (a *App) Workspace() (archsync.Workspace, error) {
	settings := a.Settings()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.workspace != nil {
		return a.workspace, nil
	}

	ws, err := archsync.Open(settings.Project, a.workspaceOptions(settings)...)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewConfigError("project", "no project in "+settings.Project+" (run archsync init)", err)
		}
		return nil, errors.WrapResource("open", "project", settings.Project, err)
	}

	a.workspace = ws
	return ws, nil
}

// InitWorkspace creates a new project in the configured directory.
func (a *App) InitWorkspace(name string) (archsync.Workspace, error) {
	settings := a.Settings()

	a.mu.Lock()
	defer a.mu.Unlock()

	opts := append(a.workspaceOptions(settings), archsync.WithName(name))
	ws, err := archsync.Init(settings.Project, opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "project", settings.Project, err)
	}

	a.workspace = ws
	return ws, nil
}

func (a *App) workspaceOptions(settings *config.Config) []archsync.Option {
	return []archsync.Option{
		archsync.WithConfig(settings),
		archsync.WithLogger(a.logger),
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom CLI configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithViper sets the settings source (useful for testing).
func WithViper(v *viper.Viper) Option {
	return func(a *App) error {
		a.viper = v
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithWorkspace sets a custom workspace (useful for testing).
func WithWorkspace(ws archsync.Workspace) Option {
	return func(a *App) error {
		a.workspace = ws
		return nil
	}
}

// Package application provides the application interface for archsync commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            ws, err := app.Workspace()
//	            if err != nil {
//	                return err
//	            }
//	            // ... use ws
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    WorkspaceFunc: func() (archsync.Workspace, error) {
//	        return archsync.New()
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/archsync"
	"github.com/agentstation/archsync/internal/config"
)

// Application provides the application interface that commands need.
// The App struct from cmd/archsync/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Workspace opens the configured project directory.
	// The same instance is returned on every call.
	Workspace() (archsync.Workspace, error)

	// InitWorkspace creates a new project in the configured directory.
	InitWorkspace(name string) (archsync.Workspace, error)

	// Settings returns the validated extraction and matching settings.
	Settings() *config.Config

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

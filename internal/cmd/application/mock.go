// Package application provides test doubles for the command application interface.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/archsync"
	"github.com/agentstation/archsync/internal/config"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	ws, _ := archsync.New()
//	mock := &application.Mock{
//	    WorkspaceFunc: func() (archsync.Workspace, error) { return ws, nil },
//	}
//	cmd := row.NewCommand(mock)
type Mock struct {
	WorkspaceFunc     func() (archsync.Workspace, error)
	InitWorkspaceFunc func(name string) (archsync.Workspace, error)
	SettingsFunc      func() *config.Config
	LoggerFunc        func() *zerolog.Logger
	OutputFormatFunc  func() string
	VersionFunc       func() string
	CommitFunc        func() string
	DateFunc          func() string
	BuiltByFunc       func() string
}

// Workspace returns a workspace using the mock function or nil.
func (m *Mock) Workspace() (archsync.Workspace, error) {
	if m.WorkspaceFunc != nil {
		return m.WorkspaceFunc()
	}
	return nil, nil
}

// InitWorkspace returns a workspace using the mock function or nil.
func (m *Mock) InitWorkspace(name string) (archsync.Workspace, error) {
	if m.InitWorkspaceFunc != nil {
		return m.InitWorkspaceFunc(name)
	}
	return nil, nil
}

// Settings returns settings using the mock function or the defaults.
func (m *Mock) Settings() *config.Config {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return config.Default()
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}

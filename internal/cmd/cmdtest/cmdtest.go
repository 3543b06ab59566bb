// Package cmdtest runs commands against mock applications in tests.
package cmdtest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/archsync"
	"github.com/agentstation/archsync/internal/cmd/application"
	"github.com/agentstation/archsync/internal/elftest"
)

// Result holds what a command printed.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Run executes cmd with args and captures its output.
func Run(cmd *cobra.Command, args ...string) Result {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// Firmware returns the symbols written by WriteFirmware.
func Firmware() []elftest.Sym {
	return []elftest.Sym{
		elftest.Func("UART_Tx", 0x401000, 16),
		elftest.Func("UART_Rx", 0x401010, 16),
		elftest.Func("SPI_Init", 0x401020, 8),
		elftest.Object("rx_buffer", 0x404000, 256),
	}
}

// WriteELF writes an image holding syms to dir/name and returns its path.
func WriteELF(t *testing.T, dir, name string, syms ...elftest.Sym) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, (&elftest.Builder{Syms: syms}).Build(), 0o644))
	return path
}

// WriteFirmware writes the standard test image to a temporary directory.
func WriteFirmware(t *testing.T) string {
	t.Helper()
	return WriteELF(t, t.TempDir(), "firmware.elf", Firmware()...)
}

// App returns a mock application serving ws in the given output format.
func App(ws archsync.Workspace, format string) *application.Mock {
	return &application.Mock{
		WorkspaceFunc:    func() (archsync.Workspace, error) { return ws, nil },
		OutputFormatFunc: func() string { return format },
	}
}

// Workspace returns an in-memory workspace with a threshold of 60.
func Workspace(t *testing.T) archsync.Workspace {
	t.Helper()
	ws, err := archsync.New(archsync.WithThreshold(60))
	require.NoError(t, err)
	return ws
}

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/archsync"
	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/internal/elftest"
	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
)

// run executes one CLI invocation with a fresh App, like a separate process.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a, err := New("1.0.0", "abc", "today", "test")
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	root := a.createRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err = root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func firmware(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "firmware.elf")
	image := (&elftest.Builder{Syms: []elftest.Sym{
		elftest.Func("UART_Tx", 0x401000, 16),
		elftest.Func("UART_Rx", 0x401010, 16),
		elftest.Func("SPI_Init", 0x401020, 8),
	}}).Build()
	require.NoError(t, os.WriteFile(path, image, 0o644))
	return path
}

func TestAppImplementsApplication(t *testing.T) {
	var _ application.Application = (*App)(nil)

	a, err := New("1.0.0", "abc", "today", "test")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", a.Version())
	assert.Equal(t, "abc", a.Commit())
	assert.Equal(t, "today", a.Date())
	assert.Equal(t, "test", a.BuiltBy())
	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Settings())
}

func TestAppOptions(t *testing.T) {
	ws, err := archsync.New()
	require.NoError(t, err)

	a, err := New("dev", "", "", "", WithWorkspace(ws), WithConfig(&Config{Format: "yaml"}))
	require.NoError(t, err)

	got, err := a.Workspace()
	require.NoError(t, err)
	assert.Same(t, ws, got)
	assert.Equal(t, "yaml", a.OutputFormat())
}

func TestWorkspaceMissingProject(t *testing.T) {
	t.Setenv("ARCHSYNC_PROJECT", filepath.Join(t.TempDir(), "none"))

	_, err := run(t, "row", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archsync init")
	assert.True(t, errors.IsNotFound(err))
}

func TestInvalidSettings(t *testing.T) {
	_, err := run(t, "--threshold", "150", "version")
	assert.True(t, errors.IsValidationError(err))
}

func TestEndToEnd(t *testing.T) {
	project := filepath.Join(t.TempDir(), "arch")
	bin := firmware(t)
	p := []string{"-p", project, "-o", "json"}

	_, err := run(t, append(p, "init", "demo")...)
	require.NoError(t, err)

	_, err = run(t, append(p, "row", "add", "UART_Transmit", "Type=uint8")...)
	require.NoError(t, err)
	_, err = run(t, append(p, "column", "add", "Owner")...)
	require.NoError(t, err)

	out, err := run(t, append(p, "--threshold", "60", "match", bin)...)
	require.NoError(t, err)
	var report archsync.MatchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Applied.Matched)

	out, err = run(t, append(p, "diff")...)
	require.NoError(t, err)
	var changes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &changes))
	require.Len(t, changes, 1)
	assert.Equal(t, "added-row", changes[0]["kind"])

	_, err = run(t, append(p, "commit")...)
	assert.True(t, errors.IsUnresolvedChanges(err))

	_, err = run(t, append(p, "resolve", "approve", "--all")...)
	require.NoError(t, err)
	_, err = run(t, append(p, "commit")...)
	require.NoError(t, err)

	out, err = run(t, append(p, "export")...)
	require.NoError(t, err)
	var export map[string][]architecture.Value
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	require.Len(t, export[constants.ColumnMappedSymbol], 1)
	assert.Equal(t, "UART_Tx", export[constants.ColumnMappedSymbol][0].String())
	assert.Contains(t, export, "Owner")

	ws, err := archsync.Open(project)
	require.NoError(t, err)
	assert.Equal(t, 1, ws.Baseline().Len())
	assert.Nil(t, ws.Changes())
	require.NotNil(t, ws.MatchRecord())
	assert.Equal(t, bin, ws.MatchRecord().Binary)
}

func TestVersionFlag(t *testing.T) {
	a, err := New("1.0.0", "abc", "today", "test")
	require.NoError(t, err)

	var stdout bytes.Buffer
	root := a.createRootCommand()
	root.SetOut(&stdout)
	root.SetArgs([]string{"--version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "archsync 1.0.0\n", stdout.String())
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "-o", "xml", "version")
	assert.True(t, errors.IsValidationError(err))
}

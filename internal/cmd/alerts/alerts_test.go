package alerts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/archsync/internal/cmd/output"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "unknown(9)", Level(9).String())
	assert.Equal(t, "✓", LevelSuccess.Icon())
}

func TestWriterTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, output.FormatTable, false)

	require.NoError(t, w.Warning("2 reviewed rows lost their symbol", "row 3", "row 5"))
	assert.Equal(t, "! 2 reviewed rows lost their symbol\n   row 3\n   row 5\n", buf.String())
}

func TestWriterStructured(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, output.FormatJSON, false)

	require.NoError(t, w.Success("Committed baseline with 4 rows"))
	assert.JSONEq(t, `{"level":"success","message":"Committed baseline with 4 rows"}`, buf.String())

	buf.Reset()
	w = NewWriter(&buf, output.FormatYAML, true)
	require.NoError(t, w.Info("Catalogs are identical"))
	assert.Contains(t, buf.String(), "level: info")
}

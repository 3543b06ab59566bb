package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/archsync/internal/cmd/application"
	"github.com/agentstation/archsync/internal/cmd/cmdtest"
)

func TestVersionCommand(t *testing.T) {
	app := &application.Mock{
		VersionFunc:      func() string { return "1.2.3" },
		CommitFunc:       func() string { return "abc123" },
		OutputFormatFunc: func() string { return "json" },
	}

	res := cmdtest.Run(NewCommand(app))
	require.NoError(t, res.Err)

	var info Info
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.Commit)
	assert.Equal(t, "unknown", info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestVersionCommandTable(t *testing.T) {
	res := cmdtest.Run(NewCommand(&application.Mock{}))
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "dev")
	assert.Contains(t, res.Stdout, runtime.GOOS)
}

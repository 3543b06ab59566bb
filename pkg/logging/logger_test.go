package logging_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/archsync/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Default().Info().Msg("info message")
	logging.Default().Err(errors.New("boom")).Msg("failed")

	output := buf.String()
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "boom")

	component := logging.Component("store")
	component.Info().Msg("saved")
	assert.Contains(t, buf.String(), `"component":"store"`)
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.OrDefault(nil))

	nop := zerolog.Nop()
	assert.Same(t, &nop, logging.OrDefault(&nop))
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithBinary(ctx, "firmware.elf")
	ctx = logging.WithProject(ctx, ".archsync")
	ctx = logging.WithOperation(ctx, "match")
	ctx = logging.WithError(ctx, errors.New("ignored until logged"))

	logging.FromContext(ctx).Info().Msg("test message")

	testLogger.AssertContains(t, "firmware.elf")
	testLogger.AssertContains(t, ".archsync")
	testLogger.AssertContains(t, `"operation":"match"`)
	testLogger.AssertContains(t, "ignored until logged")
	testLogger.AssertContains(t, "test message")
}

func TestFromContextWithoutLogger(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.Ctx(nil))
}

func TestWithErrorNil(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, logging.WithError(ctx, nil))
}

func TestNewLoggerFromConfig(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	t.Run("file output json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "archsync.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "warn",
			Format: "json",
			Output: path,
		})

		logger.Info().Msg("hidden")
		logger.Warn().Str("row", "r1").Msg("visible")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hidden")
		assert.Contains(t, string(data), `"row":"r1"`)
	})

	t.Run("discard", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "debug", Output: "discard"})
		assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "loud", Output: "discard"})
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("nil config", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(nil)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)
	assert.Empty(t, tl.Lines())

	tl.Debug().Msg("first")
	tl.Info().Msg("second")

	assert.Len(t, tl.Lines(), 2)
	assert.True(t, strings.Contains(tl.Output(), "first"))
	tl.AssertNotContains(t, "third")

	ev := tl.Event("second")
	require.NotNil(t, ev)
	assert.Equal(t, "info", ev["level"])
	assert.Nil(t, tl.Event("third"))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"TRACE":   zerolog.TraceLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "1")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "discard")

	cfg := logging.ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "discard", cfg.Output)

	t.Setenv("LOG_LEVEL", "error")
	assert.Equal(t, "error", logging.ConfigFromEnv().Level)
}

package app

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/archsync/pkg/logging"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger builds the CLI logger. The level comes from, in order: --log-level,
// --quiet, --verbose, LOG_LEVEL (already folded into LogLevel), then info.
// A rejected setting is reported through the new logger itself.
func NewLogger(config *Config) zerolog.Logger {
	level, problem := determineLogLevel(config)

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
	if problem != "" {
		logger.Warn().Str("level", level).Msg(problem)
	}
	return logger
}

// determineLogLevel returns the level to use and, when a setting had to be
// overridden, a message saying so.
func determineLogLevel(config *Config) (string, string) {
	switch {
	case config.LogLevel != "":
		if !slices.Contains(logLevels, config.LogLevel) {
			return "info", "invalid log level " + config.LogLevel
		}
		return config.LogLevel, ""
	case config.Verbose && config.Quiet:
		return "warn", "both --verbose and --quiet given"
	case config.Quiet:
		return "warn", ""
	case config.Verbose:
		return "debug", ""
	default:
		return "info", ""
	}
}

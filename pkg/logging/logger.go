// Package logging provides structured logging for archsync using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("binary", "firmware.elf").Int("symbols", 412).Msg("Extracted catalog")
//
//	ctx := logging.WithBinary(context.Background(), "firmware.elf")
//	logging.FromContext(ctx).Debug().Msg("Matching rows")
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Nop discards everything. Library packages start from it so that nothing
// is logged unless a logger is passed in.
var Nop = zerolog.Nop()

var defaultLogger = NewLoggerFromConfig(ConfigFromEnv())

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// OrDefault returns l, or the default logger when l is nil.
func OrDefault(l *zerolog.Logger) *zerolog.Logger {
	if l == nil {
		return Default()
	}
	return l
}

// Component returns a child of the default logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Default().With().Str("component", name).Logger()
}

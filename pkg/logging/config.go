package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/archsync/pkg/constants"
)

// Config describes where and how log events are written.
type Config struct {
	Level      string // trace, debug, info, warn, error, off
	Format     string // json, console or auto (console on a terminal)
	Output     string // stderr, stdout, discard or a file path
	TimeFormat string // kitchen, rfc3339, unix or a Go layout
	NoColor    bool
	AddCaller  bool
}

// DefaultConfig returns info-level automatic output to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// ConfigFromEnv starts from DefaultConfig and applies LOG_LEVEL, LOG_FORMAT
// and LOG_OUTPUT. DEBUG raises the level to debug when LOG_LEVEL is unset.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	} else if os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	return cfg
}

// NewLoggerFromConfig builds a logger. A nil cfg means DefaultConfig. The
// global zerolog level follows the configured level.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(cfg.writer()).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// Configure replaces the default logger.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ParseLevel maps a level name to a zerolog level. Unknown names give info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "", "info":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "off", "none", "disabled":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && l != zerolog.NoLevel {
		return l
	}
	return zerolog.InfoLevel
}

func (cfg *Config) writer() io.Writer {
	out := openOutput(cfg.Output)

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = "console"
		}
	}
	if format != "console" && format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeLayout(cfg.TimeFormat),
		NoColor:    cfg.NoColor,
	}
}

func openOutput(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr
	}
	return f
}

func timeLayout(format string) string {
	switch strings.ToLower(format) {
	case "", "kitchen":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	case "unix", "epoch":
		return ""
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}

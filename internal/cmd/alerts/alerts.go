// Package alerts writes status notifications (saved, committed, broken
// link, ...) in the active output format.
package alerts

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/agentstation/archsync/internal/cmd/emoji"
	"github.com/agentstation/archsync/internal/cmd/output"
)

// Level represents the severity of an alert.
type Level int

const (
	// LevelError indicates a failure or error condition.
	LevelError Level = iota
	// LevelWarning indicates a potential issue such as a broken link.
	LevelWarning
	// LevelInfo indicates general informational messages.
	LevelInfo
	// LevelSuccess indicates successful completion of an operation.
	LevelSuccess
)

// String returns the string representation of the alert level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Icon returns the marker printed before table-format alerts.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return emoji.Error
	case LevelWarning:
		return emoji.Warning
	case LevelSuccess:
		return emoji.Success
	default:
		return emoji.Info
	}
}

func (l Level) color() string {
	switch l {
	case LevelError:
		return "\033[31m"
	case LevelWarning:
		return "\033[33m"
	case LevelSuccess:
		return "\033[32m"
	default:
		return "\033[36m"
	}
}

const reset = "\033[0m"

// Alert represents a status notification.
type Alert struct {
	Level   Level
	Message string
	Details []string
}

// New creates a new alert with the given level and message.
func New(level Level, message string, details ...string) *Alert {
	return &Alert{Level: level, Message: message, Details: details}
}

// String returns a string representation of the alert.
func (a *Alert) String() string {
	return a.Level.Icon() + " " + a.Message
}

type alertData struct {
	Level   string   `json:"level" yaml:"level"`
	Message string   `json:"message" yaml:"message"`
	Details []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Writer prints alerts.
type Writer struct {
	w      io.Writer
	format output.Format
	color  bool
}

// NewWriter creates a Writer for w. Color is used only for table output
// on a terminal and never when noColor is set.
func NewWriter(w io.Writer, format output.Format, noColor bool) *Writer {
	color := false
	if f, ok := w.(*os.File); ok && !noColor && format.IsTable() {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Writer{w: w, format: format, color: color}
}

// Write prints a single alert.
func (aw *Writer) Write(a *Alert) error {
	if !aw.format.IsTable() {
		return output.NewFormatter(aw.format).Format(aw.w, alertData{
			Level:   a.Level.String(),
			Message: a.Message,
			Details: a.Details,
		})
	}

	line := a.String()
	if aw.color {
		line = a.Level.color() + line + reset
	}
	if _, err := fmt.Fprintln(aw.w, line); err != nil {
		return err
	}
	for _, detail := range a.Details {
		if _, err := fmt.Fprintf(aw.w, "   %s\n", detail); err != nil {
			return err
		}
	}
	return nil
}

// Success prints a success alert.
func (aw *Writer) Success(message string, details ...string) error {
	return aw.Write(New(LevelSuccess, message, details...))
}

// Warning prints a warning alert.
func (aw *Writer) Warning(message string, details ...string) error {
	return aw.Write(New(LevelWarning, message, details...))
}

// Info prints an informational alert.
func (aw *Writer) Info(message string, details ...string) error {
	return aw.Write(New(LevelInfo, message, details...))
}

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger records JSON log events in memory for assertions.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// NewTestLogger returns a trace-level logger writing to memory. The global
// level is restored when the test ends.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	previous := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &TestLogger{Logger: &logger, Buffer: buf}
}

// Output returns everything logged so far.
func (tl *TestLogger) Output() string {
	return tl.Buffer.String()
}

// Lines returns one entry per logged event.
func (tl *TestLogger) Lines() []string {
	out := strings.TrimSpace(tl.Output())
	if out == "" {
		return []string{}
	}
	return strings.Split(out, "\n")
}

// Events decodes the logged events. Lines that are not JSON are skipped.
func (tl *TestLogger) Events() []map[string]any {
	var events []map[string]any
	for _, line := range tl.Lines() {
		var ev map[string]any
		if json.Unmarshal([]byte(line), &ev) == nil {
			events = append(events, ev)
		}
	}
	return events
}

// Event returns the first event with the given message, or nil.
func (tl *TestLogger) Event(message string) map[string]any {
	for _, ev := range tl.Events() {
		if ev[zerolog.MessageFieldName] == message {
			return ev
		}
	}
	return nil
}

// AssertContains fails the test when the output lacks substr.
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !strings.Contains(tl.Output(), substr) {
		t.Errorf("log output does not contain %q\noutput:\n%s", substr, tl.Output())
	}
}

// AssertNotContains fails the test when the output contains substr.
func (tl *TestLogger) AssertNotContains(t testing.TB, substr string) {
	t.Helper()
	if strings.Contains(tl.Output(), substr) {
		t.Errorf("log output should not contain %q\noutput:\n%s", substr, tl.Output())
	}
}

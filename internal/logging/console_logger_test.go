package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Info("fetched %d rows", 42)

	got := buf.String()
	if got != "fetched 42 rows\n" {
		t.Errorf("Info output = %q, want %q", got, "fetched 42 rows\n")
	}
}

func TestConsoleLogger_VerboseSuppressed(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Verbose("should not appear")

	if buf.Len() != 0 {
		t.Errorf("Verbose produced output in non-verbose mode: %q", buf.String())
	}
}

func TestConsoleLogger_VerboseEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true)

	logger.Verbose("attempt %d", 3)

	got := buf.String()
	if !strings.HasPrefix(got, "[VERBOSE] ") {
		t.Errorf("Verbose output missing prefix: %q", got)
	}
	if !strings.Contains(got, "attempt 3") {
		t.Errorf("Verbose output missing message: %q", got)
	}
}

func TestConsoleLogger_ErrorPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Error("query %q failed", "daily_orders")

	got := buf.String()
	if !strings.HasPrefix(got, "[ERROR] ") {
		t.Errorf("Error output missing prefix: %q", got)
	}
}

func TestConsoleLogger_NoArgsLiteralPercent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	// Messages without args must not be re-interpreted as format strings.
	logger.Info("progress 100%")

	if got := buf.String(); got != "progress 100%\n" {
		t.Errorf("Info output = %q, want %q", got, "progress 100%\n")
	}
}

func TestNullLogger_Discards(t *testing.T) {
	logger := NewNullLogger()

	// Must not panic regardless of arguments.
	logger.Verbose("x %d", 1)
	logger.Info("y")
	logger.Error("z %v", nil)
}

package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewConsoleFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Level = "WARN"

	l, err := New(config, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Info("hidden message")
	l.Warn("visible message", "session", "ab12")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Error("INFO message should be filtered at WARN level")
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "session=ab12") {
		t.Errorf("Expected warning with attributes, got %q", out)
	}
}

func TestNewJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.ConsoleFormat = "json"

	l, err := New(config, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Info("placed", "tile", "cross")
	if !strings.Contains(buf.String(), `"tile":"cross"`) {
		t.Errorf("Expected JSON output, got %q", buf.String())
	}
}

func TestNewWritesToFileAndConsole(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "game.log")
	config := DefaultConfig()
	config.FileEnabled = true
	config.FilePath = path

	l, err := New(config, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Error("both outputs")

	if !strings.Contains(buf.String(), "both outputs") {
		t.Error("Expected message on console")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file: %v", err)
	}
	if !strings.Contains(string(data), "both outputs") {
		t.Errorf("Expected message in file, got %q", data)
	}
}

func TestNewRejectsFileWithoutPath(t *testing.T) {
	config := DefaultConfig()
	config.FileEnabled = true
	config.FilePath = ""
	if _, err := New(config, nil); err == nil {
		t.Error("Expected error when file logging has no path")
	}
}

func TestPackageFunctionsBeforeInitialize(t *testing.T) {
	// Must not panic without Initialize
	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warningf("warn %d", 3)
	Errorf("error %d", 4)
}

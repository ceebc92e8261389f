package logging

import (
	"bytes"
	"encoding/json"
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
		hasError bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError != (err != nil) {
				t.Fatalf("unexpected error state: %v", err)
			}
			if level != test.expected {
				t.Errorf("expected %v, got %v", test.expected, level)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("expected json, got %v %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestJSONOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, slog.LevelInfo, FormatJSON)

	l.Debug("hidden")
	l.Info("saved", "path", "notes/a.md")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["msg"] != "saved" || entry["path"] != "notes/a.md" {
		t.Errorf("unexpected entry %v", entry)
	}

	child := l.With("session", "x")
	l.SetLevel(slog.LevelDebug)
	child.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("expected derived logger to follow SetLevel")
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "draftpad.log")
	l, err := New(Config{Level: slog.LevelInfo, Output: "file", FilePath: path, Component: "edit"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hello")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "msg=hello") || !strings.Contains(string(b), "component=edit") {
		t.Errorf("unexpected log contents %q", b)
	}
}

func TestUnknownOutput(t *testing.T) {
	if _, err := New(Config{Output: "syslog"}); err == nil {
		t.Error("expected error for unknown output")
	}
}

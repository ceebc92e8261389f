// Package logging builds the slog loggers used across draftpad.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format represents the output format for logs.
type Format int

const (
	// FormatText outputs human-readable text logs.
	FormatText Format = iota
	// FormatJSON outputs JSON-structured logs.
	FormatJSON
)

// Config holds the logging configuration.
type Config struct {
	Level  slog.Level
	Format Format

	// Output is "stderr", "stdout", "file" or "discard".
	Output string

	// FilePath is the log file when Output is "file".
	FilePath string

	Component string
}

// Logger wraps slog.Logger with a runtime-adjustable level.
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// New creates a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	l := &Logger{level: new(slog.LevelVar)}
	l.level.Set(cfg.Level)

	var w io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	case "discard":
		w = io.Discard
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("log file path is required")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, l.closer = f, f
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	l.Logger = slog.New(newHandler(w, cfg.Format, l.level, cfg.Component))
	return l, nil
}

// NewWriter creates a Logger writing to w.
func NewWriter(w io.Writer, level slog.Level, format Format) *Logger {
	l := &Logger{level: new(slog.LevelVar)}
	l.level.Set(level)
	l.Logger = slog.New(newHandler(w, format, l.level, ""))
	return l
}

func newHandler(w io.Writer, format Format, level slog.Leveler, component string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	if component != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("component", component)})
	}
	return h
}

// SetLevel changes the minimum level of l and every logger derived from it.
func (l *Logger) SetLevel(level slog.Level) { l.level.Set(level) }

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level { return l.level.Level() }

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// ParseLevel parses a level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat parses "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// Package config handles configuration loading and validation for draftpad.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Backends.
const (
	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
)

// Duration is a time.Duration written as "30s" in config files.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the full draftpad configuration.
type Config struct {
	Backend     string         `toml:"backend" json:"backend" yaml:"backend"`
	DBPath      string         `toml:"db_path" json:"db_path" yaml:"db_path"`
	FilesURL    string         `toml:"files_url" json:"files_url" yaml:"files_url"`
	SearchURL   string         `toml:"search_url" json:"search_url" yaml:"search_url"`
	Listen      string         `toml:"listen" json:"listen" yaml:"listen"`
	StrictSpans bool           `toml:"strict_spans" json:"strict_spans" yaml:"strict_spans"`
	Autosave    AutosaveConfig `toml:"autosave" json:"autosave" yaml:"autosave"`
	Search      SearchConfig   `toml:"search" json:"search" yaml:"search"`
	HTTP        HTTPConfig     `toml:"http" json:"http" yaml:"http"`
	Log         LogConfig      `toml:"log" json:"log" yaml:"log"`
}

// AutosaveConfig controls the autosave debounce.
type AutosaveConfig struct {
	QuietPeriod Duration `toml:"quiet_period" json:"quiet_period" yaml:"quiet_period"`
}

// SearchConfig controls search and related-file lookups.
type SearchConfig struct {
	Debounce     Duration `toml:"debounce" json:"debounce" yaml:"debounce"`
	RelatedLimit int      `toml:"related_limit" json:"related_limit" yaml:"related_limit"`
}

// HTTPConfig controls the remote backend clients.
type HTTPConfig struct {
	Timeout Duration `toml:"timeout" json:"timeout" yaml:"timeout"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `toml:"level" json:"level" yaml:"level"`
	Format string `toml:"format" json:"format" yaml:"format"`
	File   string `toml:"file" json:"file" yaml:"file"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:   BackendSQLite,
		DBPath:    DefaultDBPath(),
		FilesURL:  "http://localhost:8080",
		SearchURL: "http://localhost:8080",
		Listen:    "127.0.0.1:8080",
		Autosave:  AutosaveConfig{QuietPeriod: Duration(30 * time.Second)},
		Search:    SearchConfig{Debounce: Duration(300 * time.Millisecond), RelatedLimit: 5},
		HTTP:      HTTPConfig{Timeout: Duration(30 * time.Second)},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Dir returns the draftpad data directory.
func Dir() string {
	if v := os.Getenv("DRAFTPAD_HOME"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".draftpad")
}

// DefaultDBPath returns the default SQLite database location.
func DefaultDBPath() string {
	return filepath.Join(Dir(), "draftpad.db")
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// ApplyEnvOverrides overlays DRAFTPAD_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DRAFTPAD_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("DRAFTPAD_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("DRAFTPAD_FILES_URL"); v != "" {
		c.FilesURL = v
	}
	if v := os.Getenv("DRAFTPAD_SEARCH_URL"); v != "" {
		c.SearchURL = v
	}
	if v := os.Getenv("DRAFTPAD_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("DRAFTPAD_AUTOSAVE_QUIET_PERIOD"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Autosave.QuietPeriod = Duration(d)
		}
	}
	if v := os.Getenv("DRAFTPAD_SEARCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Search.Debounce = Duration(d)
		}
	}
	if v := os.Getenv("DRAFTPAD_STRICT_SPANS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.StrictSpans = b
		}
	}
	if v := os.Getenv("DRAFTPAD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DRAFTPAD_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

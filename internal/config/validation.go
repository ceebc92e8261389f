package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			add("db_path", "required for the sqlite backend")
		}
	case BackendHTTP:
		for field, raw := range map[string]string{"files_url": c.FilesURL, "search_url": c.SearchURL} {
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				add(field, "must be an http(s) URL, got %q", raw)
			}
		}
	default:
		add("backend", "must be %q or %q, got %q", BackendSQLite, BackendHTTP, c.Backend)
	}

	if c.Autosave.QuietPeriod <= 0 {
		add("autosave.quiet_period", "must be positive")
	}
	if c.Search.Debounce < 0 {
		add("search.debounce", "must not be negative")
	}
	if c.Search.RelatedLimit < 0 {
		add("search.related_limit", "must not be negative")
	}
	if c.HTTP.Timeout < 0 {
		add("http.timeout", "must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level", "unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		add("log.format", "must be text or json, got %q", c.Log.Format)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

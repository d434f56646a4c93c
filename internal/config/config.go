// Package config loads testrig run settings from YAML.
//
// Every field is optional; missing fields keep their Default values and
// command-line flags override whatever the file sets.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/testrig/internal/engine"
)

// Output formats accepted by Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds run settings.
type Config struct {
	// Timeout is the default Wait timeout, e.g. "250ms".
	Timeout time.Duration `yaml:"timeout"`

	// TimeoutMessage is the failure message of a timed-out Wait.
	TimeoutMessage string `yaml:"timeout_message"`

	// Format selects CLI output: "text" or "json".
	Format string `yaml:"format"`

	// Quiet disables the console listener.
	Quiet bool `yaml:"quiet"`

	// Store is the SQLite run history path. Empty disables history.
	Store string `yaml:"store,omitempty"`

	// Filter is a glob over suite names; empty runs every suite.
	Filter string `yaml:"filter,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Timeout:        engine.DefaultWaitTimeout,
		TimeoutMessage: engine.DefaultWaitMessage,
		Format:         FormatText,
		LogLevel:       "warn",
	}
}

// Load reads a YAML config file on top of Default.
// Unknown fields are rejected so typos surface early. An empty file yields
// the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data on top of Default and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	var errs []error

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("format must be %q or %q, got %q", FormatText, FormatJSON, c.Format))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Filter != "" {
		if _, err := path.Match(c.Filter, ""); err != nil {
			errs = append(errs, fmt.Errorf("filter %q: %w", c.Filter, err))
		}
	}

	return errors.Join(errs...)
}

// ParseLevel maps a log_level value to a slog.Level. Empty means warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
}

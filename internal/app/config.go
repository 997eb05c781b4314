package app

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds the parsed command line. It is built once and not modified
// afterwards.
type Config struct {
	ProgName string

	// Command is the base command: program name plus fixed leading
	// arguments.
	Command []string
	// Args are forwarded verbatim to both invocations.
	Args []string

	// DryRunFlag is only meaningful when DryRunFlagSet is true; otherwise
	// the flag comes from the settings files.
	DryRunFlag    string
	DryRunFlagSet bool
	Verbose       bool

	// SettingsPath is an explicit settings file or directory. Empty means
	// the default location.
	SettingsPath string

	LogLevel  string
	LogFormat string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, errors.New("no command given")
	}
	if cfg.DryRunFlagSet && cfg.DryRunFlag == "" {
		return nil, errors.New("the dry-run option cannot be empty")
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "warn"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.Command = append([]string(nil), cfg.Command...)
	cfg.Args = append([]string(nil), cfg.Args...)
	return &cfg, nil
}

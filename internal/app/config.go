package app

import "errors"

// Config holds everything a single composer invocation needs, as collected
// from the command line. File-configured values are merged in by NewApp.
type Config struct {
	// LaunchPath is the root launch description. Required.
	LaunchPath string
	// ConfigPath is an optional composer configuration file.
	ConfigPath string
	// PackagePaths are extra package search roots, ahead of any
	// configured in the file.
	PackagePaths []string
	// Arguments override the root description's argument defaults.
	Arguments map[string]string
	// Format selects the output rendering: "text" or "json".
	Format string
	// Run starts the resolved nodes instead of printing them.
	Run bool
	// LenientBindings downgrades unknown-argument bindings to warnings.
	LenientBindings bool

	// LogFormat and LogLevel are empty unless set explicitly; the
	// configuration file fills the gap, then defaults apply.
	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LaunchPath == "" {
		return nil, errors.New("LaunchPath is a required configuration field and cannot be empty")
	}
	if cfg.Format != "" && cfg.Format != "text" && cfg.Format != "json" {
		return nil, errors.New("Format must be 'text' or 'json'")
	}
	return &cfg, nil
}

package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads a configuration file and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Model, error)
}

// Model is the unified representation of a composer configuration file.
// Zero values mean "not set"; the application layers CLI flags on top.
type Model struct {
	// PackagePaths are the roots scanned for package.xml manifests.
	PackagePaths []string
	// StrictBindings selects the policy for bindings that target an
	// undeclared argument. Nil means not configured.
	StrictBindings *bool
	// Arguments are default overrides applied to the root description.
	Arguments map[string]string
	// LogFormat is "text" or "json".
	LogFormat string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

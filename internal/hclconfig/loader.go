// Package hclconfig is the HCL implementation of the config.Loader
// interface.
package hclconfig

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/launchcompose/internal/config"
	"github.com/vk/launchcompose/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot mirrors the attributes a composer configuration file may carry.
type fileRoot struct {
	PackagePaths   []string          `hcl:"package_paths,optional"`
	StrictBindings *bool             `hcl:"strict_bindings,optional"`
	Arguments      map[string]string `hcl:"arguments,optional"`
	LogFormat      string            `hcl:"log_format,optional"`
	LogLevel       string            `hcl:"log_level,optional"`
}

// Load parses one HCL configuration file into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	model := &config.Model{
		PackagePaths:   root.PackagePaths,
		StrictBindings: root.StrictBindings,
		Arguments:      root.Arguments,
		LogFormat:      root.LogFormat,
		LogLevel:       root.LogLevel,
	}
	logger.Debug("Configuration loaded.", "file", path, "package_paths", len(model.PackagePaths), "arguments", len(model.Arguments))
	return model, nil
}

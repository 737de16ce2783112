package app

import (
	"context"
	"fmt"

	"github.com/vk/launchcompose/internal/expand"
	"github.com/vk/launchcompose/internal/launcher"
	"github.com/vk/launchcompose/internal/pkgindex"
	"github.com/vk/launchcompose/internal/render"
)

// Run executes one composition pass: build the package index, expand the
// launch description, then render the node set or start it.
func (a *App) Run(ctx context.Context) error {
	ctx = a.context(ctx)
	a.logger.Debug("App.Run method started.")

	index, err := pkgindex.Build(ctx, a.settings.packagePaths)
	if err != nil {
		return fmt.Errorf("failed to build package index: %w", err)
	}
	a.logger.Debug("Package index built.", "packages", index.Len())

	result, err := expand.Expand(ctx, a.settings.launchPath, expand.Options{
		Environ:        a.environ,
		Packages:       index,
		Arguments:      a.settings.arguments,
		StrictBindings: a.settings.strict,
	})
	if err != nil {
		return fmt.Errorf("expansion failed: %w", err)
	}
	a.logger.Info("Launch description expanded.", "file", a.settings.launchPath, "nodes", len(result.Nodes))

	if a.settings.run {
		if len(result.Nodes) == 0 {
			a.logger.Warn("No nodes in expanded description, nothing to launch.")
			return nil
		}
		a.logger.Info("Starting resolved nodes.", "count", len(result.Nodes))
		if err := launcher.Run(ctx, result, launcher.Options{Packages: index, Stdout: a.outW, Stderr: a.outW}); err != nil {
			return fmt.Errorf("launch failed: %w", err)
		}
		a.logger.Info("All nodes exited.")
		return nil
	}

	switch a.settings.format {
	case "json":
		return render.JSON(a.outW, result)
	default:
		return render.Text(a.outW, result)
	}
}

// Package launcher starts the resolved node set as OS processes and
// supervises them. The first process failure cancels the rest; interrupt
// handling arrives through the caller's context.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/vk/launchcompose/internal/ctxlog"
	"github.com/vk/launchcompose/internal/expand"
	"github.com/vk/launchcompose/internal/params"
)

// PackageResolver locates a package's share directory, used to find node
// executables installed next to it.
type PackageResolver interface {
	Share(name string) (string, error)
}

// Options configures a launch run.
type Options struct {
	// Packages resolves node executables installed under a package's
	// lib directory. Nil falls back to PATH lookup only.
	Packages PackageResolver
	// Stdout and Stderr receive the child processes' output. Nil means
	// the composer's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts every node and blocks until all have exited. The returned
// error is the first process failure, if any. Context cancellation stops
// all children.
func Run(ctx context.Context, res *expand.Result, opts Options) error {
	logger := ctxlog.FromContext(ctx)
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(res.Nodes))

	for _, node := range res.Nodes {
		bin, err := findExecutable(node, opts.Packages)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}

		cmd := exec.CommandContext(ctx, bin, nodeArgs(node)...)
		cmd.Stdout = opts.Stdout
		cmd.Stderr = opts.Stderr

		logger.Info("Starting node.", "node", node.Namespace+"/"+node.Name, "executable", bin)
		if err := cmd.Start(); err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("failed to start node %s: %w", node.Name, err)
		}

		wg.Add(1)
		go func(name string, cmd *exec.Cmd) {
			defer wg.Done()
			if err := cmd.Wait(); err != nil && ctx.Err() == nil {
				logger.Error("Node exited with failure.", "node", name, "error", err)
				errCh <- fmt.Errorf("node %s: %w", name, err)
				cancel()
				return
			}
			logger.Debug("Node exited.", "node", name)
		}(node.Name, cmd)
	}

	wg.Wait()
	close(errCh)
	return <-errCh
}

// findExecutable locates the node binary: first under the package's lib
// directory, then next to its share directory, finally on PATH.
func findExecutable(node expand.Node, packages PackageResolver) (string, error) {
	if packages != nil {
		if share, err := packages.Share(node.Package); err == nil {
			for _, candidate := range []string{
				filepath.Join(share, "lib", node.Executable),
				filepath.Join(share, node.Executable),
			} {
				if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
					return candidate, nil
				}
			}
		}
	}
	bin, err := exec.LookPath(node.Executable)
	if err != nil {
		return "", fmt.Errorf("executable %q for node %s not found: %w", node.Executable, node.Name, err)
	}
	return bin, nil
}

// nodeArgs renders the standard ROS-style command line: remappings and
// parameters after a --ros-args separator.
func nodeArgs(node expand.Node) []string {
	if len(node.Remaps) == 0 && len(node.Params) == 0 {
		return nil
	}
	args := []string{"--ros-args"}
	for _, r := range node.Remaps {
		args = append(args, "-r", r.From+":="+r.To)
	}
	for _, p := range node.Params {
		args = append(args, "-p", p.Name+":="+params.Format(p.Value))
	}
	return args
}

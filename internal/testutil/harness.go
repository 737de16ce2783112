// Package testutil provides a standardized harness for end-to-end composer
// tests: it materializes a fixture tree in a temporary directory, runs the
// App against it, and captures all output.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/launchcompose/internal/app"
	"github.com/vk/launchcompose/internal/hclconfig"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Fixture describes one end-to-end composer run. Files are written relative
// to a fresh temporary directory; the packages/ subdirectory is always used
// as the package search path.
type Fixture struct {
	// Files maps relative paths to file contents.
	Files map[string]string
	// Launch is the relative path of the root launch description.
	Launch string
	// Config is optional composer configuration HCL, written to
	// launchcompose.hcl and passed via ConfigPath.
	Config string
	// Env is the environment snapshot for $(env). Never the process
	// environment.
	Env map[string]string
	// Args are top-level argument overrides.
	Args map[string]string
	// Format selects text or json output; empty means text.
	Format string
	// Lenient downgrades binding mismatches to warnings.
	Lenient bool
	// Run starts the resolved nodes instead of rendering them.
	Run bool
}

// HarnessResult holds the outcomes of an end-to-end run.
type HarnessResult struct {
	// Output is everything the app wrote: logs and rendered output.
	Output string
	Err    error
	Dir    string
}

// RunComposerTest materializes the fixture and runs the App once.
func RunComposerTest(t *testing.T, fx Fixture) *HarnessResult {
	t.Helper()
	return RunComposerTestWithContext(context.Background(), t, fx)
}

// RunComposerTestWithContext is RunComposerTest with a caller-provided
// context, for cancellation tests.
func RunComposerTestWithContext(ctx context.Context, t *testing.T, fx Fixture) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range fx.Files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	configPath := ""
	if fx.Config != "" {
		configPath = filepath.Join(tmpDir, "launchcompose.hcl")
		require.NoError(t, os.WriteFile(configPath, []byte(fx.Config), 0644))
	}

	cfg, err := app.NewConfig(app.Config{
		LaunchPath:      filepath.Join(tmpDir, fx.Launch),
		ConfigPath:      configPath,
		PackagePaths:    []string{filepath.Join(tmpDir, "packages")},
		Arguments:       fx.Args,
		Format:          fx.Format,
		Run:             fx.Run,
		LenientBindings: fx.Lenient,
		LogLevel:        "debug",
	})
	require.NoError(t, err)

	buf := &SafeBuffer{}
	composerApp := app.NewApp(buf, cfg, hclconfig.NewLoader())
	composerApp.SetEnviron(fx.Env)

	runErr := composerApp.Run(ctx)
	return &HarnessResult{Output: buf.String(), Err: runErr, Dir: tmpDir}
}

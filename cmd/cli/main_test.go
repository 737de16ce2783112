package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// A config file with a syntax error is guaranteed to panic during the
	// loading phase inside app.NewApp().
	tempDir := t.TempDir()
	launchPath := filepath.Join(tempDir, "main.launch.xml")
	require.NoError(t, os.WriteFile(launchPath, []byte(`<launch/>`), 0600))
	configPath := filepath.Join(tempDir, "launchcompose.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(`package_paths = [`), 0600))

	out := &bytes.Buffer{}
	err := run(out, []string{"-config", configPath, launchPath})

	require.Error(t, err, "run() should have returned an error after recovering from a panic")
	require.Contains(t, err.Error(), "application startup panicked")
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ExpansionErrorPropagates(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	launchPath := filepath.Join(tempDir, "main.launch.xml")
	require.NoError(t, os.WriteFile(launchPath, []byte(`<launch><arg name="x" default="$(var missing)"/></launch>`), 0600))

	out := &bytes.Buffer{}
	err := run(out, []string{launchPath})

	require.Error(t, err)
	require.Contains(t, err.Error(), "unresolved variable")
}

package hclconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launchcompose.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
package_paths   = ["/opt/ros/install", "./packages"]
strict_bindings = false
log_format      = "json"
log_level       = "debug"

arguments = {
  vehicle_id   = "x1"
  imu_raw_name = "/sensing/imu_raw"
}
`)
	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"/opt/ros/install", "./packages"}, model.PackagePaths)
	require.NotNil(t, model.StrictBindings)
	require.False(t, *model.StrictBindings)
	require.Equal(t, "json", model.LogFormat)
	require.Equal(t, "debug", model.LogLevel)
	require.Equal(t, "x1", model.Arguments["vehicle_id"])
}

func TestLoad_EmptyConfigLeavesEverythingUnset(t *testing.T) {
	path := writeConfig(t, "")
	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Empty(t, model.PackagePaths)
	require.Nil(t, model.StrictBindings)
	require.Empty(t, model.Arguments)
}

func TestLoad_Errors(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)

	path := writeConfig(t, `unknown_setting = true`)
	_, err = NewLoader().Load(context.Background(), path)
	require.Error(t, err)

	path = writeConfig(t, `package_paths = "not-a-list`)
	_, err = NewLoader().Load(context.Background(), path)
	require.Error(t, err)
}

package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/launchcompose/internal/testutil"
)

// rootWithStrayBinding binds an argument the included description never
// declares.
func rootWithStrayBinding() map[string]string {
	files := imuFiles()
	files["stray.launch.xml"] = `<launch>
  <include file="$(find-pkg-share imu_corrector)/launch/imu_corrector.launch.xml">
    <arg name="param_file" value="$(find-pkg-share individual_params)/config/public/default/aip_x1/imu_corrector.param.yaml"/>
    <arg name="not_an_argument" value="whatever"/>
  </include>
</launch>
`
	return files
}

func TestBindings_StrictModeFails(t *testing.T) {
	result := testutil.RunComposerTest(t, testutil.Fixture{
		Files:  rootWithStrayBinding(),
		Launch: "stray.launch.xml",
	})
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "argument binding mismatch")
	require.Contains(t, result.Err.Error(), "not_an_argument")
}

func TestBindings_LenientModeWarnsAndIgnores(t *testing.T) {
	result := testutil.RunComposerTest(t, testutil.Fixture{
		Files:   rootWithStrayBinding(),
		Launch:  "stray.launch.xml",
		Lenient: true,
	})
	require.NoError(t, result.Err)
	require.Contains(t, result.Output, "Ignoring binding for undeclared argument")
	require.Contains(t, result.Output, "node /imu_corrector")
}

func TestBindings_OverrideWinsOverDefault(t *testing.T) {
	files := imuFiles()
	files["override.launch.xml"] = `<launch>
  <include file="$(find-pkg-share imu_corrector)/launch/imu_corrector.launch.xml">
    <arg name="input_topic" value="/custom/topic"/>
    <arg name="param_file" value="$(find-pkg-share individual_params)/config/public/default/aip_x1/imu_corrector.param.yaml"/>
  </include>
</launch>
`
	result := testutil.RunComposerTest(t, testutil.Fixture{
		Files:  files,
		Launch: "override.launch.xml",
	})
	require.NoError(t, result.Err)
	// bound value overrides the include's own default
	require.Contains(t, result.Output, "remap input -> /custom/topic")
	// unbound argument keeps its declared default
	require.Contains(t, result.Output, "remap output -> imu_data")
}

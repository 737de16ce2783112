package integration_tests

// The shared fixture mirrors an IMU sensing pipeline: a root description
// that wires an IMU corrector and a gyro bias estimator from the
// imu_corrector package, with per-vehicle calibration supplied by the
// individual_params package.

const imuRootXML = `<launch>
  <arg name="launch_driver" default="true"/>
  <arg name="vehicle_id" default="$(env VEHICLE_ID default)"/>
  <arg name="imu_raw_name" default="/sensing/lidar/front_center/livox/imu"/>
  <arg name="imu_corrector_param_file" default="$(find-pkg-share individual_params)/config/public/$(var vehicle_id)/aip_x1/imu_corrector.param.yaml"/>

  <group>
    <push-ros-namespace namespace="imu"/>

    <include file="$(find-pkg-share imu_corrector)/launch/imu_corrector.launch.xml">
      <arg name="input_topic" value="$(var imu_raw_name)"/>
      <arg name="output_topic" value="imu_data"/>
      <arg name="param_file" value="$(var imu_corrector_param_file)"/>
    </include>

    <include file="$(find-pkg-share imu_corrector)/launch/gyro_bias_estimator.launch.xml">
      <arg name="input_imu_raw" value="$(var imu_raw_name)"/>
      <arg name="input_odom" value="/localization/kinematic_state"/>
      <arg name="imu_corrector_param_file" value="$(var imu_corrector_param_file)"/>
    </include>
  </group>
</launch>
`

const imuCorrectorXML = `<launch>
  <arg name="input_topic" default="imu_raw"/>
  <arg name="output_topic" default="imu_data"/>
  <arg name="param_file"/>

  <node pkg="imu_corrector" exec="imu_corrector_node" name="imu_corrector">
    <param from="$(var param_file)"/>
    <remap from="input" to="$(var input_topic)"/>
    <remap from="output" to="$(var output_topic)"/>
  </node>
</launch>
`

const gyroBiasEstimatorXML = `<launch>
  <arg name="input_imu_raw" default="imu_raw"/>
  <arg name="input_odom" default="/localization/kinematic_state"/>
  <arg name="imu_corrector_param_file"/>

  <node pkg="imu_corrector" exec="gyro_bias_estimator" name="gyro_bias_estimator">
    <param name="gyro_bias_threshold" value="0.0015"/>
    <param from="$(var imu_corrector_param_file)"/>
    <remap from="imu_raw" to="$(var input_imu_raw)"/>
    <remap from="odom" to="$(var input_odom)"/>
  </node>
</launch>
`

const imuParamYAML = `/**:
  ros__parameters:
    angular_velocity_offset_x: 0.0
    angular_velocity_offset_y: 0.0
    angular_velocity_offset_z: 0.0
    angular_velocity_stddev_xx: 0.03
`

// imuFiles returns a fresh copy of the fixture tree.
func imuFiles() map[string]string {
	return map[string]string{
		"imu.launch.xml": imuRootXML,
		"packages/imu_corrector/package.xml":                           `<package format="3"><name>imu_corrector</name></package>`,
		"packages/imu_corrector/launch/imu_corrector.launch.xml":       imuCorrectorXML,
		"packages/imu_corrector/launch/gyro_bias_estimator.launch.xml": gyroBiasEstimatorXML,
		"packages/individual_params/package.xml":                       `<package format="3"><name>individual_params</name></package>`,
		"packages/individual_params/config/public/default/aip_x1/imu_corrector.param.yaml": imuParamYAML,
		"packages/individual_params/config/public/x2/aip_x1/imu_corrector.param.yaml":      imuParamYAML,
	}
}

package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/launchcompose/internal/expand"
	"github.com/vk/launchcompose/internal/params"
)

func sampleResult() *expand.Result {
	return &expand.Result{Nodes: []expand.Node{
		{
			Package:    "imu_corrector",
			Executable: "imu_corrector_node",
			Name:       "imu_corrector",
			Namespace:  "/imu",
			Params: []params.Param{
				{Name: "angular_velocity_offset_x", Value: cty.NumberFloatVal(0)},
				{Name: "frame_id", Value: cty.StringVal("imu_link")},
			},
			Remaps: []expand.Remap{
				{From: "input", To: "/sensing/lidar/front_center/livox/imu"},
			},
		},
		{
			Package:    "imu_corrector",
			Executable: "gyro_bias_estimator",
			Name:       "gyro_bias_estimator",
			Namespace:  "/",
		},
	}}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleResult()))

	out := buf.String()
	require.Contains(t, out, "node /imu/imu_corrector (package imu_corrector, executable imu_corrector_node)")
	require.Contains(t, out, "  param frame_id = imu_link")
	require.Contains(t, out, "  remap input -> /sensing/lidar/front_center/livox/imu")
	require.Contains(t, out, "node /gyro_bias_estimator")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleResult()))

	var doc struct {
		Nodes []struct {
			Name       string `json:"name"`
			Namespace  string `json:"namespace"`
			Parameters []struct {
				Name  string `json:"name"`
				Value any    `json:"value"`
			} `json:"parameters"`
			Remappings []struct {
				From string `json:"from"`
				To   string `json:"to"`
			} `json:"remappings"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Nodes, 2)
	require.Equal(t, "/imu", doc.Nodes[0].Namespace)
	require.Equal(t, "imu_link", doc.Nodes[0].Parameters[1].Value)
	require.Equal(t, "input", doc.Nodes[0].Remappings[0].From)
	require.Empty(t, doc.Nodes[1].Parameters)
}

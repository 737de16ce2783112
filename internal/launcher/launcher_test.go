package launcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/launchcompose/internal/expand"
	"github.com/vk/launchcompose/internal/params"
	"github.com/vk/launchcompose/internal/pkgindex"
)

// writeScript installs an executable shell script under the package's lib
// directory, the layout findExecutable expects.
func writeScript(t *testing.T, shareDir, name, body string) {
	t.Helper()
	libDir := filepath.Join(shareDir, "lib")
	require.NoError(t, os.MkdirAll(libDir, 0755))
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(libDir, name), []byte(script), 0755))
}

func testIndex(t *testing.T) (*pkgindex.Index, string) {
	t.Helper()
	share := t.TempDir()
	idx := pkgindex.New()
	idx.Add("testpkg", share)
	return idx, share
}

func TestRun_AllNodesSucceed(t *testing.T) {
	idx, share := testIndex(t)
	writeScript(t, share, "ok_node", "exit 0")

	res := &expand.Result{Nodes: []expand.Node{
		{Package: "testpkg", Executable: "ok_node", Name: "a", Namespace: "/"},
		{Package: "testpkg", Executable: "ok_node", Name: "b", Namespace: "/"},
	}}
	require.NoError(t, Run(context.Background(), res, Options{Packages: idx}))
}

func TestRun_FailurePropagates(t *testing.T) {
	idx, share := testIndex(t)
	writeScript(t, share, "bad_node", "exit 3")

	res := &expand.Result{Nodes: []expand.Node{
		{Package: "testpkg", Executable: "bad_node", Name: "estimator", Namespace: "/"},
	}}
	err := Run(context.Background(), res, Options{Packages: idx})
	require.Error(t, err)
	require.Contains(t, err.Error(), "node estimator")
}

func TestRun_FailureCancelsSiblings(t *testing.T) {
	idx, share := testIndex(t)
	writeScript(t, share, "bad_node", "exit 1")
	writeScript(t, share, "slow_node", "sleep 30")

	res := &expand.Result{Nodes: []expand.Node{
		{Package: "testpkg", Executable: "slow_node", Name: "slow", Namespace: "/"},
		{Package: "testpkg", Executable: "bad_node", Name: "bad", Namespace: "/"},
	}}

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), res, Options{Packages: idx}) }()

	select {
	case err := <-done:
		require.Error(t, err)
		require.Contains(t, err.Error(), "node bad")
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after sibling failure")
	}
}

func TestRun_PassesRosArgs(t *testing.T) {
	idx, share := testIndex(t)
	outFile := filepath.Join(t.TempDir(), "args.txt")
	writeScript(t, share, "echo_node", `echo "$@" > `+outFile)

	res := &expand.Result{Nodes: []expand.Node{{
		Package:    "testpkg",
		Executable: "echo_node",
		Name:       "echo",
		Namespace:  "/imu",
		Params:     []params.Param{{Name: "gyro_bias_threshold", Value: cty.NumberFloatVal(0.0015)}},
		Remaps:     []expand.Remap{{From: "input", To: "/sensing/imu_raw"}},
	}}}
	require.NoError(t, Run(context.Background(), res, Options{Packages: idx}))

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	require.Equal(t, "--ros-args -r input:=/sensing/imu_raw -p gyro_bias_threshold:=0.0015\n", string(data))
}

func TestRun_MissingExecutable(t *testing.T) {
	idx, _ := testIndex(t)
	res := &expand.Result{Nodes: []expand.Node{
		{Package: "testpkg", Executable: "launchcompose-no-such-binary", Name: "ghost", Namespace: "/"},
	}}
	err := Run(context.Background(), res, Options{Packages: idx})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

package expand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScope_Lifecycle(t *testing.T) {
	s := NewScope(nil, nil)
	require.Equal(t, StateDeclared, s.State())

	require.NoError(t, s.Declare("vehicle_id", "default"))
	require.Equal(t, StateResolving, s.State())

	s.Seal()
	require.Equal(t, StateResolved, s.State())
	require.Panics(t, func() { s.Declare("x", "y") })
	require.Panics(t, func() { s.Set("x", "y") })

	// reads stay legal after sealing
	v, ok := s.Lookup("vehicle_id")
	require.True(t, ok)
	require.Equal(t, "default", v)
}

func TestScope_DeclareRejectsRedeclaration(t *testing.T) {
	s := NewScope(nil, nil)
	require.NoError(t, s.Declare("a", "1"))
	require.Error(t, s.Declare("a", "2"))
}

func TestScope_ChildInheritsLookups(t *testing.T) {
	parent := NewScope(nil, nil)
	require.NoError(t, parent.Declare("imu_raw_name", "/sensing/imu_raw"))

	child := parent.Child()
	v, err := child.LookupVar("imu_raw_name")
	require.NoError(t, err)
	require.Equal(t, "/sensing/imu_raw", v)

	// shadowing in the child does not touch the parent
	require.NoError(t, child.Declare("imu_raw_name", "/other"))
	v, ok := parent.Lookup("imu_raw_name")
	require.True(t, ok)
	require.Equal(t, "/sensing/imu_raw", v)
}

func TestScope_DetachedSharesNothingButEnviron(t *testing.T) {
	env := map[string]string{"VEHICLE_ID": "x1"}
	parent := NewScope(env, nil)
	require.NoError(t, parent.Declare("secret", "value"))

	det := parent.Detached()
	_, err := det.LookupVar("secret")
	var ee *Error
	require.ErrorAs(t, err, &ee)
	require.Equal(t, UnresolvedVariable, ee.Kind)

	v, ok := det.LookupEnv("VEHICLE_ID")
	require.True(t, ok)
	require.Equal(t, "x1", v)
}

func TestScope_SetShadowsInsteadOfMutatingParent(t *testing.T) {
	parent := NewScope(nil, nil)
	require.NoError(t, parent.Declare("mode", "a"))

	child := parent.Child()
	child.Set("mode", "b")

	// the child sees the assignment, the parent keeps its binding
	v, err := child.LookupVar("mode")
	require.NoError(t, err)
	require.Equal(t, "b", v)
	v, _ = parent.Lookup("mode")
	require.Equal(t, "a", v)

	child.Set("fresh", "1")
	_, ok := parent.Lookup("fresh")
	require.False(t, ok)
}

func TestScope_PackageShareWithoutPaths(t *testing.T) {
	s := NewScope(nil, nil)
	_, err := s.PackageShare("imu_corrector")
	var ee *Error
	require.ErrorAs(t, err, &ee)
	require.Equal(t, MissingPackage, ee.Kind)
}

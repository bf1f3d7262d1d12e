package modules

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	v := vm.New()
	v.SetLoader(NewLoader(t.TempDir()))
	return v
}

func TestStdMathRegistered(t *testing.T) {
	v := newTestVM(t)

	factory, ok := Lookup("std.math")
	require.True(t, ok)
	modObj, loadErr := factory(v)
	require.NoError(t, loadErr)

	sqrt, ok := modObj.Exports["sqrt"]
	require.True(t, ok, "std.math should export sqrt")
	assert.Equal(t, vm.VNative, sqrt.Type)

	result, callErr := v.CallNoArgs(sqrt, vm.NumberVal(9))
	require.NoError(t, callErr)
	assert.Equal(t, float64(3), result.AsNumber())
}

func TestStdSerdeJSONRoundTrip(t *testing.T) {
	v := newTestVM(t)
	factory, ok := Lookup("std.serde")
	require.True(t, ok)
	mod, err := factory(v)
	require.NoError(t, err)

	toStr := mod.Exports["to_str"]
	fromStr := mod.Exports["from_str"]

	obj := vm.NewObjObject()
	v.Allocate(obj)
	obj.Set("name", vm.ObjVal(vm.VString, v.Intern("aiscript")))
	obj.Set("count", vm.NumberVal(3))

	encoded, err := v.CallNoArgs(toStr, vm.ObjVal(vm.VObject, obj))
	require.NoError(t, err)
	require.Equal(t, vm.VString, encoded.Type)

	decoded, err := v.CallNoArgs(fromStr, encoded)
	require.NoError(t, err)
	require.Equal(t, vm.VObject, decoded.Type)
	assert.Equal(t, float64(3), decoded.AsObject().Fields["count"].AsNumber())
}

func TestStdSerdeYAMLRoundTrip(t *testing.T) {
	v := newTestVM(t)
	factory, ok := Lookup("std.serde")
	require.True(t, ok)
	mod, err := factory(v)
	require.NoError(t, err)

	toYAML := mod.Exports["to_yaml"]
	fromYAML := mod.Exports["from_yaml"]

	arr := &vm.ObjArray{Elements: []vm.Value{vm.NumberVal(1), vm.NumberVal(2)}}
	v.Allocate(arr)

	encoded, err := v.CallNoArgs(toYAML, vm.ObjVal(vm.VArray, arr))
	require.NoError(t, err)

	decoded, err := v.CallNoArgs(fromYAML, encoded)
	require.NoError(t, err)
	require.Equal(t, vm.VArray, decoded.Type)
	assert.Len(t, decoded.AsArray().Elements, 2)
}

func TestStdAuthJWTSignAndVerify(t *testing.T) {
	v := newTestVM(t)
	factory, ok := Lookup("std.auth.jwt")
	require.True(t, ok)
	mod, err := factory(v)
	require.NoError(t, err)

	claims := vm.NewObjObject()
	v.Allocate(claims)
	claims.Set("sub", vm.ObjVal(vm.VString, v.Intern("user-1")))

	secret := vm.ObjVal(vm.VString, v.Intern("test-secret"))
	token, err := v.CallNoArgs(mod.Exports["sign"], vm.ObjVal(vm.VObject, claims), secret)
	require.NoError(t, err)
	require.Equal(t, vm.VString, token.Type)

	verified, err := v.CallNoArgs(mod.Exports["verify"], token, secret)
	require.NoError(t, err)
	require.Equal(t, vm.VObject, verified.Type)
	assert.Equal(t, "user-1", verified.AsObject().Fields["sub"].AsString().Chars)
}

func TestStdAuthJWTVerifyRejectsBadSecret(t *testing.T) {
	v := newTestVM(t)
	factory, _ := Lookup("std.auth.jwt")
	mod, err := factory(v)
	require.NoError(t, err)

	claims := vm.NewObjObject()
	v.Allocate(claims)
	token, err := v.CallNoArgs(mod.Exports["sign"], vm.ObjVal(vm.VObject, claims), vm.ObjVal(vm.VString, v.Intern("right")))
	require.NoError(t, err)

	result, err := v.CallNoArgs(mod.Exports["verify"], token, vm.ObjVal(vm.VString, v.Intern("wrong")))
	require.NoError(t, err)
	assert.Equal(t, vm.VInstance, result.Type, "a bad secret should yield a ValidationError instance, not a Go error")
}

func TestLoaderCachesModules(t *testing.T) {
	v := newTestVM(t)
	loader := NewLoader(t.TempDir())
	v.SetLoader(loader)

	first, err := loader.Load(v, "std.math")
	require.NoError(t, err)
	second, err := loader.Load(v, "std.math")
	require.NoError(t, err)
	assert.Same(t, first, second, "a second import of the same module should return the cached handle")
}

func TestNamesListsEveryRegisteredModule(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "std.math")
	assert.Contains(t, names, "std.serde")
	assert.Contains(t, names, "std.net.grpc")
}

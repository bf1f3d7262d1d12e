package modules

import (
	"os"
	"strings"

	"github.com/aiscriptdev/aiscript/internal/vm"
)

// std.env exposes process environment variables: get/set/vars.
func init() {
	register("std.env", func(v *vm.VM) (*vm.ObjModule, error) {
		return newExportModule(v, "std.env", map[string]vm.NativeFn{
			"get":  envGet,
			"set":  envSet,
			"vars": envVars,
		}), nil
	})
}

func envGet(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("env.get: expected a name")
	}
	v, ok := os.LookupEnv(args[0].AsString().Chars)
	if !ok {
		return vm.Nil(), nil
	}
	return vm.ObjVal(vm.VString, state.Intern(v)), nil
}

func envSet(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 || args[0].Type != vm.VString || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("env.set: expected (name, value)")
	}
	if err := os.Setenv(args[0].AsString().Chars, args[1].AsString().Chars); err != nil {
		return vm.Nil(), state.RuntimeError("env.set: %s", err)
	}
	return vm.Nil(), nil
}

func envVars(state *vm.VM, args []vm.Value) (vm.Value, error) {
	obj := vm.NewObjObject()
	state.Allocate(obj)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		obj.Set(parts[0], vm.ObjVal(vm.VString, state.Intern(parts[1])))
	}
	return vm.ObjVal(vm.VObject, obj), nil
}

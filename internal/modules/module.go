// Package modules implements AIScript's module manager: eager registration
// of native std.* modules and lazy loading of script modules by filename.
package modules

import (
	"sort"

	"github.com/aiscriptdev/aiscript/internal/vm"
)

// Factory builds a fresh native module for one VM: each VM gets its own
// module object and export table. The connection/server handle tables of
// std.db.pg, std.db.sqlite, std.db.redis and std.net.grpc are package-level
// maps, so those handles are shared by every VM in the process.
type Factory func(v *vm.VM) (*vm.ObjModule, error)

// registry maps a native module's std.* name to the factory that builds it.
// Populated by this package's init functions, one per module file
// (std_math.go, std_io.go, ...).
var registry = make(map[string]Factory)

func register(name string, f Factory) {
	registry[name] = f
}

// Lookup returns the factory registered for name, if any.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns every registered native module name, sorted, for
// introspection (e.g. a REPL's `:modules` command).
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newExportModule is the common constructor every std_*.go file uses to
// turn a name->NativeFn table into an *vm.ObjModule.
func newExportModule(v *vm.VM, name string, fns map[string]vm.NativeFn) *vm.ObjModule {
	mod := vm.NewObjModule(name, true)
	v.Allocate(mod)
	for fnName, fn := range fns {
		native := &vm.ObjNative{Name: name + "." + fnName, Fn: fn}
		v.Allocate(native)
		mod.Exports[fnName] = vm.ObjVal(vm.VNative, native)
	}
	return mod
}

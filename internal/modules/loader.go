package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aiscriptdev/aiscript/internal/parser"
	"github.com/aiscriptdev/aiscript/internal/vm"
)

// Loader implements vm.ModuleLoader: a std.* name resolves against the
// native registry, anything else is treated as a script module path
// (name.ai) resolved along SearchPath, starting at the running script's own
// directory and falling back to the current directory.
type Loader struct {
	SearchPath []string
}

// NewLoader builds a Loader searching dir (typically the running script's
// directory) first, falling back to the process's current directory.
func NewLoader(dir string) *Loader {
	return &Loader{SearchPath: []string{dir, "."}}
}

// Load resolves name to a module, returning a cached handle if one was
// already built for this VM, or building and caching a fresh one.
func (l *Loader) Load(v *vm.VM, name string) (*vm.ObjModule, error) {
	if cached, ok := v.GetCachedModule(name); ok {
		return cached, nil
	}

	var mod *vm.ObjModule
	var err error
	if strings.HasPrefix(name, "std.") {
		mod, err = l.loadNative(v, name)
	} else {
		mod, err = l.loadScript(v, name)
	}
	if err != nil {
		return nil, err
	}
	v.CacheModule(name, mod)
	return mod, nil
}

func (l *Loader) loadNative(v *vm.VM, name string) (*vm.ObjModule, error) {
	factory, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no such native module %q", name)
	}
	return factory(v)
}

// loadScript compiles and runs a script module in its own globals table, so
// its top-level declarations don't leak into the importing program's
// globals. It shares the importing VM's heap/arena: a script module's
// Values are fully interoperable with its importer's, only the globals
// table is swapped out for the duration of the module's top-level run.
func (l *Loader) loadScript(v *vm.VM, name string) (*vm.ObjModule, error) {
	path, src, err := l.readSource(name)
	if err != nil {
		return nil, err
	}

	program, diags := parser.ParseProgram(src)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s", diags.String())
	}

	fn, diags := vm.Compile(program)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s", diags.String())
	}

	saved := v.SwapGlobals(make(map[string]vm.Value))
	defer v.SwapGlobals(saved)

	if _, err := v.Interpret(fn); err != nil {
		return nil, err
	}

	mod := vm.NewObjModule(name, false)
	v.Allocate(mod)
	mod.Path = path
	for k, val := range v.Globals() {
		mod.Globals[k] = val
		mod.Exports[k] = val
	}
	return mod, nil
}

func (l *Loader) readSource(name string) (path string, src string, err error) {
	filename := name
	if !strings.HasSuffix(filename, ".ai") {
		filename += ".ai"
	}
	for _, dir := range l.SearchPath {
		candidate := filepath.Join(dir, filename)
		b, readErr := os.ReadFile(candidate)
		if readErr == nil {
			return candidate, string(b), nil
		}
	}
	return "", "", fmt.Errorf("script module %q not found on search path %v", filename, l.SearchPath)
}

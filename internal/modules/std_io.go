package modules

import (
	"bufio"
	"os"

	"github.com/aiscriptdev/aiscript/internal/vm"
)

// std.io provides read_line/print/read_file/write_file over AIScript's
// dynamically-typed Value model.
func init() {
	register("std.io", func(v *vm.VM) (*vm.ObjModule, error) {
		stdin := bufio.NewReader(os.Stdin)
		return newExportModule(v, "std.io", map[string]vm.NativeFn{
			"read_line":  ioReadLine(stdin),
			"print":      ioPrint,
			"read_file":  ioReadFile,
			"write_file": ioWriteFile,
		}), nil
	})
}

func ioReadLine(r *bufio.Reader) vm.NativeFn {
	return func(state *vm.VM, args []vm.Value) (vm.Value, error) {
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return vm.Nil(), nil
		}
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		return vm.ObjVal(vm.VString, state.Intern(line)), nil
	}
}

func ioPrint(state *vm.VM, args []vm.Value) (vm.Value, error) {
	for i, a := range args {
		if i > 0 {
			os.Stdout.WriteString(" ")
		}
		os.Stdout.WriteString(a.Inspect())
	}
	os.Stdout.WriteString("\n")
	return vm.Nil(), nil
}

func ioReadFile(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("io.read_file: expected a path")
	}
	b, err := os.ReadFile(args[0].AsString().Chars)
	if err != nil {
		return vm.Nil(), state.RuntimeError("io.read_file: %s", err)
	}
	return vm.ObjVal(vm.VString, state.Intern(string(b))), nil
}

func ioWriteFile(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 || args[0].Type != vm.VString || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("io.write_file: expected (path, contents)")
	}
	err := os.WriteFile(args[0].AsString().Chars, []byte(args[1].AsString().Chars), 0o644)
	if err != nil {
		return vm.Nil(), state.RuntimeError("io.write_file: %s", err)
	}
	return vm.Nil(), nil
}

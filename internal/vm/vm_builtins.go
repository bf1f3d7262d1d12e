package vm

import (
	"fmt"
	"sort"
	"strings"
)

// validationErrorClassName is the pre-registered runtime error shape
// inspected by OpJumpIfError: {type, loc, msg, input}.
const validationErrorClassName = "ValidationError!"

// registerBuiltins populates the per-type builtin method tables: Array
// methods (append, pop, len, reverse, sort, map, filter, reduce, slice,
// concat, contains, indexOf, join) and the universal conversions every
// value answers to (str, to_number, type).
func registerBuiltins(vm *VM) {
	array := map[string]NativeFn{
		"append":  arrayAppend,
		"pop":     arrayPop,
		"len":     arrayLen,
		"reverse": arrayReverse,
		"sort":    arraySort,
		"map":     arrayMap,
		"filter":  arrayFilter,
		"reduce":  arrayReduce,
		"slice":   arraySlice,
		"concat":  arrayConcat,
		"contains": arrayContains,
		"indexOf": arrayIndexOf,
		"join":    arrayJoin,
	}
	for name, fn := range array {
		vm.registerBuiltinMethod(VArray, name, fn)
	}

	str := map[string]NativeFn{
		"len":        stringLen,
		"upper":      stringUpper,
		"lower":      stringLower,
		"trim":       stringTrim,
		"split":      stringSplit,
		"contains":   stringContains,
		"replace":    stringReplace,
		"startsWith": stringStartsWith,
		"endsWith":   stringEndsWith,
	}
	for name, fn := range str {
		vm.registerBuiltinMethod(VString, name, fn)
	}

	universal := map[string]NativeFn{
		"str":       universalStr,
		"to_number": universalToNumber,
		"type":      universalType,
	}
	for _, t := range []ValueType{VNil, VBool, VNumber, VString, VArray, VObject, VClass, VInstance, VClosure, VBoundMethod, VNative, VModule, VAgent} {
		for name, fn := range universal {
			vm.registerBuiltinMethod(t, name, fn)
		}
	}

	vm.globals["str"] = ObjVal(VNative, &ObjNative{Name: "str", Fn: globalStr})
	vm.globals["len"] = ObjVal(VNative, &ObjNative{Name: "len", Fn: globalLen})
	vm.globals["type"] = ObjVal(VNative, &ObjNative{Name: "type", Fn: globalType})
	vm.globals["import"] = ObjVal(VNative, &ObjNative{Name: "import", Fn: globalImport})
}

// globalImport is how AIScript source actually reaches std.* and script
// modules: the grammar has no dedicated import statement, so
// `import("std.math")` is an ordinary call through the same vm.loader the
// OpImport opcode exercises (disassembler/bytecode completeness only —
// never emitted by the compiler). The loader checks its own cache first,
// returning a cached module handle before falling back to a fresh load.
func globalImport(vm *VM, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Type != VString {
		return Nil(), vm.runtimeError("import: expected a single string argument")
	}
	if vm.loader == nil {
		return Nil(), vm.runtimeError("import: no module loader configured")
	}
	name := args[0].AsString().Chars
	mod, err := vm.loader.Load(vm, name)
	if err != nil {
		return Nil(), vm.runtimeError("module '%s' not found: %s", name, err)
	}
	return ObjVal(VModule, mod), nil
}

func (vm *VM) registerBuiltinMethod(t ValueType, name string, fn NativeFn) {
	methods, ok := vm.builtinMethods[t]
	if !ok {
		methods = make(map[string]NativeFn)
		vm.builtinMethods[t] = methods
	}
	methods[name] = fn
}

func (vm *VM) lookupBuiltinMethod(t ValueType, name string) (NativeFn, bool) {
	methods, ok := vm.builtinMethods[t]
	if !ok {
		return nil, false
	}
	fn, ok := methods[name]
	return fn, ok
}

// registerBuiltinClasses pre-registers classes constructed by the runtime
// rather than user source: ValidationError! is raised by built-in
// validation and carries {type, loc, msg, input}.
func registerBuiltinClasses(vm *VM) {
	cls := NewObjClass(validationErrorClassName)
	vm.alloc(cls)
	vm.builtinClasses[validationErrorClassName] = cls
	vm.globals[validationErrorClassName] = ObjVal(VClass, cls)
}

// NewValidationError constructs a ValidationError! instance, for host code
// and native modules that need to signal a validation failure in-band via
// OpJumpIfError.
func (vm *VM) NewValidationError(kind, loc, msg string, input Value) Value {
	cls := vm.builtinClasses[validationErrorClassName]
	inst := NewObjInstance(cls)
	vm.alloc(inst)
	inst.Fields["type"] = ObjVal(VString, vm.intern(kind))
	inst.Fields["loc"] = ObjVal(VString, vm.intern(loc))
	inst.Fields["msg"] = ObjVal(VString, vm.intern(msg))
	inst.Fields["input"] = input
	return ObjVal(VInstance, inst)
}

func arrayAppend(vm *VM, args []Value) (Value, error) {
	arr := args[0].AsArray()
	arr.Elements = append(arr.Elements, args[1:]...)
	for _, v := range args[1:] {
		if v.Obj != nil {
			vm.mut.SetField(arr, v.Obj)
		}
	}
	return args[0], nil
}

func arrayPop(vm *VM, args []Value) (Value, error) {
	arr := args[0].AsArray()
	if len(arr.Elements) == 0 {
		return Nil(), vm.runtimeError("pop: array is empty")
	}
	last := arr.Elements[len(arr.Elements)-1]
	arr.Elements = arr.Elements[:len(arr.Elements)-1]
	return last, nil
}

func arrayLen(vm *VM, args []Value) (Value, error) {
	return NumberVal(float64(len(args[0].AsArray().Elements))), nil
}

func arrayReverse(vm *VM, args []Value) (Value, error) {
	src := args[0].AsArray().Elements
	out := make([]Value, len(src))
	for i, v := range src {
		out[len(src)-1-i] = v
	}
	result := &ObjArray{Elements: out}
	vm.alloc(result)
	return ObjVal(VArray, result), nil
}

func arraySort(vm *VM, args []Value) (Value, error) {
	src := args[0].AsArray().Elements
	out := make([]Value, len(src))
	copy(out, src)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type == VString && b.Type == VString {
			return a.AsString().Chars < b.AsString().Chars
		}
		if !a.IsNumber() || !b.IsNumber() {
			sortErr = vm.runtimeError("sort: elements must be all numbers or all strings")
			return false
		}
		return a.AsNumber() < b.AsNumber()
	})
	if sortErr != nil {
		return Nil(), sortErr
	}
	result := &ObjArray{Elements: out}
	vm.alloc(result)
	return ObjVal(VArray, result), nil
}

func arrayMap(vm *VM, args []Value) (Value, error) {
	arr := args[0].AsArray()
	fn := args[1]
	out := make([]Value, len(arr.Elements))
	for i, el := range arr.Elements {
		v, err := vm.callNoArgs(fn, el)
		if err != nil {
			return Nil(), err
		}
		out[i] = v
	}
	result := &ObjArray{Elements: out}
	vm.alloc(result)
	return ObjVal(VArray, result), nil
}

func arrayFilter(vm *VM, args []Value) (Value, error) {
	arr := args[0].AsArray()
	fn := args[1]
	out := make([]Value, 0, len(arr.Elements))
	for _, el := range arr.Elements {
		v, err := vm.callNoArgs(fn, el)
		if err != nil {
			return Nil(), err
		}
		if v.Truthy() {
			out = append(out, el)
		}
	}
	result := &ObjArray{Elements: out}
	vm.alloc(result)
	return ObjVal(VArray, result), nil
}

func arrayReduce(vm *VM, args []Value) (Value, error) {
	arr := args[0].AsArray()
	fn := args[1]
	acc := args[2]
	for _, el := range arr.Elements {
		v, err := vm.callNoArgs(fn, acc, el)
		if err != nil {
			return Nil(), err
		}
		acc = v
	}
	return acc, nil
}

func arraySlice(vm *VM, args []Value) (Value, error) {
	arr := args[0].AsArray().Elements
	start, end := 0, len(arr)
	if len(args) > 1 && args[1].IsNumber() {
		start = int(args[1].AsNumber())
	}
	if len(args) > 2 && args[2].IsNumber() {
		end = int(args[2].AsNumber())
	}
	if start < 0 {
		start = 0
	}
	if end > len(arr) {
		end = len(arr)
	}
	if start > end {
		start = end
	}
	out := make([]Value, end-start)
	copy(out, arr[start:end])
	result := &ObjArray{Elements: out}
	vm.alloc(result)
	return ObjVal(VArray, result), nil
}

func arrayConcat(vm *VM, args []Value) (Value, error) {
	a := args[0].AsArray().Elements
	b := args[1].AsArray().Elements
	out := make([]Value, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	result := &ObjArray{Elements: out}
	vm.alloc(result)
	return ObjVal(VArray, result), nil
}

func arrayContains(vm *VM, args []Value) (Value, error) {
	for _, el := range args[0].AsArray().Elements {
		if el.Equals(args[1]) {
			return BoolVal(true), nil
		}
	}
	return BoolVal(false), nil
}

func arrayIndexOf(vm *VM, args []Value) (Value, error) {
	for i, el := range args[0].AsArray().Elements {
		if el.Equals(args[1]) {
			return NumberVal(float64(i)), nil
		}
	}
	return NumberVal(-1), nil
}

func arrayJoin(vm *VM, args []Value) (Value, error) {
	sep := ""
	if len(args) > 1 && args[1].Type == VString {
		sep = args[1].AsString().Chars
	}
	parts := make([]string, len(args[0].AsArray().Elements))
	for i, el := range args[0].AsArray().Elements {
		parts[i] = vm.toDisplayString(el)
	}
	return ObjVal(VString, vm.intern(strings.Join(parts, sep))), nil
}

func stringLen(vm *VM, args []Value) (Value, error) {
	return NumberVal(float64(len([]rune(args[0].AsString().Chars)))), nil
}

func stringUpper(vm *VM, args []Value) (Value, error) {
	return ObjVal(VString, vm.intern(strings.ToUpper(args[0].AsString().Chars))), nil
}

func stringLower(vm *VM, args []Value) (Value, error) {
	return ObjVal(VString, vm.intern(strings.ToLower(args[0].AsString().Chars))), nil
}

func stringTrim(vm *VM, args []Value) (Value, error) {
	return ObjVal(VString, vm.intern(strings.TrimSpace(args[0].AsString().Chars))), nil
}

func stringSplit(vm *VM, args []Value) (Value, error) {
	sep := ""
	if len(args) > 1 && args[1].Type == VString {
		sep = args[1].AsString().Chars
	}
	var parts []string
	if sep == "" {
		parts = strings.Fields(args[0].AsString().Chars)
	} else {
		parts = strings.Split(args[0].AsString().Chars, sep)
	}
	elems := make([]Value, len(parts))
	for i, p := range parts {
		elems[i] = ObjVal(VString, vm.intern(p))
	}
	arr := &ObjArray{Elements: elems}
	vm.alloc(arr)
	return ObjVal(VArray, arr), nil
}

func stringContains(vm *VM, args []Value) (Value, error) {
	return BoolVal(strings.Contains(args[0].AsString().Chars, args[1].AsString().Chars)), nil
}

func stringReplace(vm *VM, args []Value) (Value, error) {
	old := args[1].AsString().Chars
	new := args[2].AsString().Chars
	return ObjVal(VString, vm.intern(strings.ReplaceAll(args[0].AsString().Chars, old, new))), nil
}

func stringStartsWith(vm *VM, args []Value) (Value, error) {
	return BoolVal(strings.HasPrefix(args[0].AsString().Chars, args[1].AsString().Chars)), nil
}

func stringEndsWith(vm *VM, args []Value) (Value, error) {
	return BoolVal(strings.HasSuffix(args[0].AsString().Chars, args[1].AsString().Chars)), nil
}

func universalStr(vm *VM, args []Value) (Value, error) {
	return ObjVal(VString, vm.intern(vm.toDisplayString(args[0]))), nil
}

func universalToNumber(vm *VM, args []Value) (Value, error) {
	return toNumberValue(vm, args[0])
}

func universalType(vm *VM, args []Value) (Value, error) {
	return ObjVal(VString, vm.intern(args[0].TypeName())), nil
}

func globalStr(vm *VM, args []Value) (Value, error) {
	if len(args) == 0 {
		return ObjVal(VString, vm.intern("")), nil
	}
	return universalStr(vm, args)
}

func globalLen(vm *VM, args []Value) (Value, error) {
	if len(args) == 0 {
		return Nil(), vm.runtimeError("len: expected 1 argument, got 0")
	}
	switch args[0].Type {
	case VArray:
		return arrayLen(vm, args)
	case VString:
		return stringLen(vm, args)
	default:
		return Nil(), vm.runtimeError("len: unsupported type %s", args[0].TypeName())
	}
}

func globalType(vm *VM, args []Value) (Value, error) {
	if len(args) == 0 {
		return Nil(), vm.runtimeError("type: expected 1 argument, got 0")
	}
	return universalType(vm, args)
}

func toNumberValue(vm *VM, v Value) (Value, error) {
	switch v.Type {
	case VNumber:
		return v, nil
	case VBool:
		if v.AsBool() {
			return NumberVal(1), nil
		}
		return NumberVal(0), nil
	case VString:
		var n float64
		if _, err := fmt.Sscanf(v.AsString().Chars, "%g", &n); err != nil {
			return Nil(), vm.runtimeError("to_number: cannot convert '%s'", v.AsString().Chars)
		}
		return NumberVal(n), nil
	default:
		return Nil(), vm.runtimeError("to_number: cannot convert %s", v.TypeName())
	}
}

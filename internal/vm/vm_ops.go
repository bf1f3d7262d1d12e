package vm

import "fmt"

// binaryOp implements Add, Sub, Mul, Div, Mod and the comparison family for
// two popped operands. Add additionally accepts two strings, concatenating
// them.
func (vm *VM) binaryOp(op Opcode, a, b Value) (Value, error) {
	switch op {
	case OpEq:
		return BoolVal(a.Equals(b)), nil
	case OpNe:
		return BoolVal(!a.Equals(b)), nil
	}

	if op == OpAdd && a.Type == VString && b.Type == VString {
		return ObjVal(VString, vm.intern(a.AsString().Chars+b.AsString().Chars)), nil
	}

	if !a.IsNumber() || !b.IsNumber() {
		return Nil(), vm.runtimeError("operands must be numbers, got %s and %s", a.TypeName(), b.TypeName())
	}
	x, y := a.AsNumber(), b.AsNumber()

	switch op {
	case OpAdd:
		return NumberVal(x + y), nil
	case OpSub:
		return NumberVal(x - y), nil
	case OpMul:
		return NumberVal(x * y), nil
	case OpDiv:
		if y == 0 {
			return Nil(), vm.runtimeError("division by zero")
		}
		return NumberVal(x / y), nil
	case OpMod:
		if y == 0 {
			return Nil(), vm.runtimeError("division by zero")
		}
		return NumberVal(float64(int64(x) % int64(y))), nil
	case OpLt:
		return BoolVal(x < y), nil
	case OpLe:
		return BoolVal(x <= y), nil
	case OpGt:
		return BoolVal(x > y), nil
	case OpGe:
		return BoolVal(x >= y), nil
	}
	return Nil(), vm.runtimeError("unhandled binary opcode %v", op)
}

// getProperty resolves `receiver.name`: instance fields shadow class
// methods; everything else falls back to its builtin method table.
func (vm *VM) getProperty(receiver Value, name string) (Value, error) {
	switch receiver.Type {
	case VInstance:
		inst := receiver.AsInstance()
		if v, ok := inst.Fields[name]; ok {
			return v, nil
		}
		if m, ok := inst.Class.Method(name); ok {
			return vm.bindMethod(receiver, m), nil
		}
		return Nil(), vm.runtimeError("undefined property '%s' on instance of '%s'", name, inst.Class.Name)
	case VObject:
		obj := receiver.AsObject()
		if v, ok := obj.Fields[name]; ok {
			return v, nil
		}
		return Nil(), vm.runtimeError("undefined property '%s'", name)
	case VModule:
		mod := receiver.AsModule()
		if v, ok := mod.Exports[name]; ok {
			return v, nil
		}
		return Nil(), vm.runtimeError("module '%s' has no export '%s'", mod.Name, name)
	case VAgent:
		agent := receiver.AsAgent()
		if v, ok := agent.Fields[name]; ok {
			return v, nil
		}
		switch name {
		case "model":
			return ObjVal(VString, vm.intern(agent.Model)), nil
		case "run":
			if agent.Run != nil {
				return ObjVal(VClosure, agent.Run), nil
			}
		case "tools":
			arr := &ObjArray{Elements: agent.Tools}
			vm.alloc(arr)
			return ObjVal(VArray, arr), nil
		}
		return Nil(), vm.runtimeError("undefined property '%s' on agent '%s'", name, agent.Name)
	case VClass:
		cls := receiver.AsClass()
		if m, ok := cls.Method(name); ok {
			return m, nil
		}
		return Nil(), vm.runtimeError("class '%s' has no method '%s'", cls.Name, name)
	default:
		if fn, ok := vm.lookupBuiltinMethod(receiver.Type, name); ok {
			return vm.bindNative(name, receiver, fn), nil
		}
		return Nil(), vm.runtimeError("type %s has no property '%s'", receiver.TypeName(), name)
	}
}

// setProperty implements `receiver.name = value`; only Instance fields and
// Object fields are mutable through this path (spec's Class/Module/Agent
// shapes are not field-assignable at the field-store level).
func (vm *VM) setProperty(receiver Value, name string, value Value) error {
	switch receiver.Type {
	case VInstance:
		inst := receiver.AsInstance()
		inst.Fields[name] = value
		if value.Obj != nil {
			vm.mut.SetField(inst, value.Obj)
		}
		return nil
	case VObject:
		obj := receiver.AsObject()
		obj.Set(name, value)
		if value.Obj != nil {
			vm.mut.SetField(obj, value.Obj)
		}
		return nil
	default:
		return vm.runtimeError("cannot set property '%s' on %s", name, receiver.TypeName())
	}
}

// index implements `receiver[idx]` for Array (numeric), Object and String
// (both by string key / rune position). A missing Object key returns Nil
// rather than erroring, matching the permissive dynamic-index convention
// used throughout the rest of the value model.
func (vm *VM) index(receiver, idx Value) (Value, error) {
	switch receiver.Type {
	case VArray:
		arr := receiver.AsArray()
		if !idx.IsNumber() {
			return Nil(), vm.runtimeError("array index must be a number")
		}
		i := int(idx.AsNumber())
		if i < 0 || i >= len(arr.Elements) {
			return Nil(), vm.runtimeError("index %d out of range (length %d)", i, len(arr.Elements))
		}
		return arr.Elements[i], nil
	case VObject:
		obj := receiver.AsObject()
		if idx.Type != VString {
			return Nil(), vm.runtimeError("object index must be a string")
		}
		if v, ok := obj.Fields[idx.AsString().Chars]; ok {
			return v, nil
		}
		return Nil(), nil
	case VString:
		if !idx.IsNumber() {
			return Nil(), vm.runtimeError("string index must be a number")
		}
		runes := []rune(receiver.AsString().Chars)
		i := int(idx.AsNumber())
		if i < 0 || i >= len(runes) {
			return Nil(), vm.runtimeError("index %d out of range (length %d)", i, len(runes))
		}
		return ObjVal(VString, vm.intern(string(runes[i]))), nil
	default:
		return Nil(), vm.runtimeError("type %s is not indexable", receiver.TypeName())
	}
}

func (vm *VM) setIndex(receiver, idx, value Value) error {
	switch receiver.Type {
	case VArray:
		arr := receiver.AsArray()
		if !idx.IsNumber() {
			return vm.runtimeError("array index must be a number")
		}
		i := int(idx.AsNumber())
		if i < 0 || i >= len(arr.Elements) {
			return vm.runtimeError("index %d out of range (length %d)", i, len(arr.Elements))
		}
		arr.Elements[i] = value
		if value.Obj != nil {
			vm.mut.SetField(arr, value.Obj)
		}
		return nil
	case VObject:
		obj := receiver.AsObject()
		if idx.Type != VString {
			return vm.runtimeError("object index must be a string")
		}
		obj.Set(idx.AsString().Chars, value)
		if value.Obj != nil {
			vm.mut.SetField(obj, value.Obj)
		}
		return nil
	default:
		return vm.runtimeError("type %s does not support index assignment", receiver.TypeName())
	}
}

// ToDisplayString exposes toDisplayString to callers outside the package
// (native modules, the embedding API) that need the same str()-equivalent
// conversion a script gets from FString concatenation and print.
func (vm *VM) ToDisplayString(v Value) string { return vm.toDisplayString(v) }

// toDisplayString is the runtime's str()-equivalent conversion, used by
// FString concatenation and print.
func (vm *VM) toDisplayString(v Value) string {
	if v.Type == VString {
		return v.AsString().Chars
	}
	return v.Inspect()
}

// isErrorValue reports whether v is an instance of the built-in
// ValidationError! class, the sentinel OpJumpIfError inspects.
func (vm *VM) isErrorValue(v Value) bool {
	if v.Type != VInstance {
		return false
	}
	inst := v.AsInstance()
	for cls := inst.Class; cls != nil; cls = cls.Super {
		if cls.Name == validationErrorClassName {
			return true
		}
	}
	return false
}

func (vm *VM) bindNative(name string, receiver Value, fn NativeFn) Value {
	bound := func(callVM *VM, args []Value) (Value, error) {
		return fn(callVM, append([]Value{receiver}, args...))
	}
	native := &ObjNative{Name: fmt.Sprintf("%s.%s", receiver.TypeName(), name), Fn: bound}
	vm.alloc(native)
	return ObjVal(VNative, native)
}

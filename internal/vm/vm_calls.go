package vm

// Frame growth mirrors the stack's: double on pressure, capped by
// MaxFrameCount, past which a call raises a stack-overflow error.
const FrameGrowthIncrement = 256

// call sets up a new CallFrame for closure, binding argc positional and
// kwargc keyword arguments (stack layout: [callee][pos args][kw pairs] —
// the trailing (positional + 2*keyword) stack entries hold the args,
// keyword pairs encoded as name,value). Declared parameters are filled in order;
// defaults are materialized from the function's constant table; a missing
// required parameter is a runtime error.
func (vm *VM) call(closure *ObjClosure, argc, kwargc int) error {
	fn := closure.Function

	var kwargs map[string]Value
	if kwargc > 0 {
		kwargs = make(map[string]Value, kwargc)
		base := vm.sp - kwargc*2
		for i := 0; i < kwargc; i++ {
			key := vm.stack[base+i*2].AsString().Chars
			val := vm.stack[base+i*2+1]
			kwargs[key] = val
		}
		vm.sp -= kwargc * 2
	}

	if argc > fn.MaxArity {
		return vm.runtimeErrorForCallee(fn.Name, "expected at most %d arguments but got %d", fn.MaxArity, argc)
	}
	calleeSlot := vm.sp - argc - 1

	for i := argc; i < fn.MaxArity; i++ {
		name := ""
		if i < len(fn.ParamNames) {
			name = fn.ParamNames[i]
		}
		if v, ok := kwargs[name]; ok {
			vm.push(v)
			continue
		}
		constIdx := -1
		if i < len(fn.DefaultConst) {
			constIdx = fn.DefaultConst[i]
		}
		if constIdx >= 0 {
			vm.push(fn.Chunk.Constants[constIdx])
			continue
		}
		if i < fn.Arity {
			return vm.runtimeErrorForCallee(fn.Name, "missing required argument '%s'", name)
		}
		vm.push(Nil())
	}

	if vm.frameCount >= len(vm.frames) {
		growBy := FrameGrowthIncrement
		if len(vm.frames) > growBy {
			growBy = len(vm.frames)
		}
		grown := make([]CallFrame, len(vm.frames)+growBy)
		copy(grown, vm.frames[:vm.frameCount])
		vm.frames = grown
	}
	if vm.frameCount >= MaxFrameCount {
		return vm.runtimeError("stack overflow")
	}

	frame := &vm.frames[vm.frameCount]
	frame.closure = closure
	frame.ip = 0
	frame.base = calleeSlot
	vm.frameCount++
	vm.frame = frame
	return nil
}

// callValue dispatches a call by the callee's runtime type: closures and
// bound methods enter a frame, natives execute immediately,
// and calling a class constructs a new instance (invoking `init` if
// declared).
func (vm *VM) callValue(callee Value, argc, kwargc int) error {
	switch callee.Type {
	case VClosure:
		return vm.call(callee.AsClosure(), argc, kwargc)

	case VBoundMethod:
		bound := callee.AsBoundMethod()
		calleeSlot := vm.sp - argc - kwargc*2 - 1
		vm.stack[calleeSlot] = bound.Receiver
		return vm.call(bound.Method, argc, kwargc)

	case VClass:
		cls := callee.AsClass()
		inst := NewObjInstance(cls)
		vm.alloc(inst)
		calleeSlot := vm.sp - argc - kwargc*2 - 1
		vm.stack[calleeSlot] = ObjVal(VInstance, inst)
		if init, ok := cls.Method("init"); ok {
			if init.Type == VClosure {
				return vm.call(init.AsClosure(), argc, kwargc)
			}
			return vm.callNativeMethod(init.AsNative(), ObjVal(VInstance, inst), argc, kwargc, calleeSlot)
		}
		if argc != 0 || kwargc != 0 {
			return vm.runtimeError("class '%s' has no initializer but got arguments", cls.Name)
		}
		return nil

	case VNative:
		native := callee.AsNative()
		if kwargc != 0 {
			return vm.runtimeError("native function '%s' does not accept keyword arguments", native.Name)
		}
		calleeSlot := vm.sp - argc - 1
		args := make([]Value, argc)
		copy(args, vm.stack[calleeSlot+1:vm.sp])
		vm.sp = calleeSlot
		result, err := native.Fn(vm, args)
		if err != nil {
			return err
		}
		vm.push(result)
		return nil

	default:
		return vm.runtimeError("'%s' is not callable", callee.TypeName())
	}
}

// callNativeMethod invokes a native method already bound to receiver,
// replacing the call's stack window with the result in place.
func (vm *VM) callNativeMethod(native *ObjNative, receiver Value, argc, kwargc int, calleeSlot int) error {
	if kwargc != 0 {
		return vm.runtimeError("native method '%s' does not accept keyword arguments", native.Name)
	}
	args := make([]Value, argc+1)
	args[0] = receiver
	copy(args[1:], vm.stack[calleeSlot+1:vm.sp])
	vm.sp = calleeSlot
	result, err := native.Fn(vm, args)
	if err != nil {
		return err
	}
	vm.push(result)
	return nil
}

// invoke is the OpInvoke fast path for `receiver.name(args)` with no
// keyword arguments: it resolves name directly on the receiver without
// allocating an intermediate ObjBoundMethod. An instance field shadowing
// a method is called as-is, matching
// getProperty's field-before-method precedence.
func (vm *VM) invoke(name string, argc int) error {
	calleeSlot := vm.sp - argc - 1
	receiver := vm.stack[calleeSlot]

	switch receiver.Type {
	case VInstance:
		inst := receiver.AsInstance()
		if v, ok := inst.Fields[name]; ok {
			vm.stack[calleeSlot] = v
			return vm.callValue(v, argc, 0)
		}
		m, ok := inst.Class.Method(name)
		if !ok {
			return vm.runtimeError("undefined property '%s' on instance of '%s'", name, inst.Class.Name)
		}
		if m.Type == VNative {
			return vm.callNativeMethod(m.AsNative(), receiver, argc, 0, calleeSlot)
		}
		return vm.call(m.AsClosure(), argc, 0)

	case VModule:
		mod := receiver.AsModule()
		fn, ok := mod.Exports[name]
		if !ok {
			return vm.runtimeError("module '%s' has no export '%s'", mod.Name, name)
		}
		vm.stack[calleeSlot] = fn
		return vm.callValue(fn, argc, 0)

	case VObject:
		if v, ok := receiver.AsObject().Fields[name]; ok {
			vm.stack[calleeSlot] = v
			return vm.callValue(v, argc, 0)
		}
		fallthrough

	default:
		fn, ok := vm.lookupBuiltinMethod(receiver.Type, name)
		if !ok {
			return vm.runtimeError("type %s has no method '%s'", receiver.TypeName(), name)
		}
		return vm.callNativeMethod(&ObjNative{Name: name, Fn: fn}, receiver, argc, 0, calleeSlot)
	}
}

// superInvoke resolves name starting at super (skipping the receiver's own
// class), with `this` already seated in the call's receiver slot by
// compileSuperInvoke.
func (vm *VM) superInvoke(super *ObjClass, name string, argc int) error {
	calleeSlot := vm.sp - argc - 1
	receiver := vm.stack[calleeSlot]
	m, ok := super.Method(name)
	if !ok {
		return vm.runtimeError("undefined property '%s'", name)
	}
	if m.Type == VNative {
		return vm.callNativeMethod(m.AsNative(), receiver, argc, 0, calleeSlot)
	}
	return vm.call(m.AsClosure(), argc, 0)
}

// bindMethod wraps method (resolved via GetProperty/GetSuper on a class
// method table) together with its receiver into an ObjBoundMethod, the
// allocation invoke()/superInvoke() exist specifically to avoid.
func (vm *VM) bindMethod(receiver Value, method Value) Value {
	if method.Type == VNative {
		return vm.bindNative(method.AsNative().Name, receiver, method.AsNative().Fn)
	}
	bound := &ObjBoundMethod{Receiver: receiver, Method: method.AsClosure()}
	vm.alloc(bound)
	return ObjVal(VBoundMethod, bound)
}

// callNoArgs invokes fn with the given positional arguments and drives the
// VM's step loop until that call's frame (and only that frame) has
// returned, for use by native higher-order methods like Array.map that
// must call back into user closures.
func (vm *VM) callNoArgs(fn Value, args ...Value) (Value, error) {
	initialFrameCount := vm.frameCount
	vm.push(fn)
	for _, a := range args {
		vm.push(a)
	}
	if err := vm.callValue(fn, len(args), 0); err != nil {
		return Nil(), err
	}
	if vm.frameCount == initialFrameCount {
		// callValue resolved natively (e.g. fn was itself a native) and
		// already pushed its result; nothing further to drive.
		return vm.pop(), nil
	}
	for vm.frameCount > initialFrameCount {
		result, done, err := vm.step()
		if err != nil {
			return Nil(), err
		}
		if done {
			// The call's frame was the outermost one: step returns its
			// result instead of pushing it.
			return result, nil
		}
	}
	return vm.pop(), nil
}

func (vm *VM) runtimeErrorForCallee(name string, format string, args ...any) error {
	if name == "" {
		name = "<anonymous>"
	}
	return vm.runtimeError(name+": "+format, args...)
}

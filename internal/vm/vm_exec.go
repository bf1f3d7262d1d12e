package vm

// Interpret runs fn (the compiled top-level script function) to completion
// and returns the value of the script's final statement when that is an
// expression statement, or Nil otherwise.
func (vm *VM) Interpret(fn *ObjFunction) (Value, error) {
	closure := &ObjClosure{Function: fn}
	vm.alloc(closure)
	vm.push(ObjVal(VClosure, closure))
	if err := vm.call(closure, 0, 0); err != nil {
		return Nil(), err
	}
	return vm.run()
}

// run drives the fuel loop: the VM executes a bounded
// burst of instructions, then — only at the burst boundary, never
// mid-instruction — lets the GC arena advance one incremental step. This is
// the sole suspension point, matching "the VM yields to the host only at
// fuel exhaustion".
func (vm *VM) run() (Value, error) {
	for {
		vm.fuel = DefaultFuel
		for vm.fuel > 0 {
			result, done, err := vm.step()
			if err != nil {
				return Nil(), err
			}
			if done {
				return result, nil
			}
			vm.fuel--
		}
		vm.arena.CollectStep(gcGranularity)
	}
}

// step executes exactly one instruction. done is true only when the
// top-level script frame itself returns (OpReturn with frameCount reaching
// zero) or OpHalt executes.
func (vm *VM) step() (result Value, done bool, err error) {
	op := Opcode(vm.readByte())

	switch op {
	case OpReturn:
		val := vm.pop()
		vm.closeUpvalues(vm.frame.base)
		vm.frameCount--
		vm.sp = vm.frame.base
		if vm.frameCount == 0 {
			return val, true, nil
		}
		vm.frame = &vm.frames[vm.frameCount-1]
		vm.push(val)
		return Nil(), false, nil

	case OpHalt:
		vm.frameCount = 0
		if vm.sp > 0 {
			return vm.pop(), true, nil
		}
		return Nil(), true, nil

	default:
		err := vm.execOp(op)
		return Nil(), false, err
	}
}

// execOp executes every opcode except OpReturn/OpHalt, which step handles
// directly since they affect frame-completion state.
func (vm *VM) execOp(op Opcode) error {
	switch op {
	case OpConstant:
		vm.push(vm.readConstant())

	case OpNil:
		vm.push(Nil())

	case OpTrue:
		vm.push(BoolVal(true))

	case OpFalse:
		vm.push(BoolVal(false))

	case OpPop:
		n := int(vm.readByte())
		vm.sp -= n

	case OpGetGlobal:
		name := vm.readString()
		v, ok := vm.globals[name]
		if !ok {
			return vm.runtimeError("undefined variable '%s'", name)
		}
		vm.push(v)

	case OpSetGlobal:
		name := vm.readString()
		if _, ok := vm.globals[name]; !ok {
			return vm.runtimeError("undefined variable '%s'", name)
		}
		vm.globals[name] = vm.peek(0)

	case OpDefineGlobal:
		name := vm.readString()
		vm.globals[name] = vm.pop()

	case OpGetLocal:
		slot := int(vm.readByte())
		vm.push(vm.stack[vm.frame.base+slot])

	case OpSetLocal:
		slot := int(vm.readByte())
		vm.stack[vm.frame.base+slot] = vm.peek(0)

	case OpGetUpvalue:
		idx := int(vm.readByte())
		vm.push(vm.frame.closure.Upvalues[idx].Get())

	case OpSetUpvalue:
		idx := int(vm.readByte())
		vm.frame.closure.Upvalues[idx].Set(vm.peek(0))

	case OpCloseUpvalue:
		vm.closeUpvalues(vm.sp - 1)
		vm.sp--

	case OpGetProperty:
		name := vm.readString()
		receiver := vm.peek(0)
		v, err := vm.getProperty(receiver, name)
		if err != nil {
			return err
		}
		vm.pop()
		vm.push(v)

	case OpSetProperty:
		name := vm.readString()
		value := vm.pop()
		receiver := vm.pop()
		if err := vm.setProperty(receiver, name, value); err != nil {
			return err
		}
		vm.push(value)

	case OpGetSuper:
		name := vm.readString()
		super := vm.pop().AsClass()
		receiver := vm.pop()
		m, ok := super.Method(name)
		if !ok {
			return vm.runtimeError("undefined property '%s'", name)
		}
		vm.push(vm.bindMethod(receiver, m))

	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		b := vm.pop()
		a := vm.pop()
		v, err := vm.binaryOp(op, a, b)
		if err != nil {
			return err
		}
		vm.push(v)

	case OpNeg:
		a := vm.pop()
		if !a.IsNumber() {
			return vm.runtimeError("operand must be a number")
		}
		vm.push(NumberVal(-a.AsNumber()))

	case OpNot:
		a := vm.pop()
		vm.push(BoolVal(!a.Truthy()))

	case OpJump:
		offset := vm.readU16()
		vm.frame.ip += int(offset)

	case OpJumpIfFalse:
		offset := vm.readU16()
		if !vm.peek(0).Truthy() {
			vm.frame.ip += int(offset)
		}

	case OpJumpPopIfFalse:
		offset := vm.readU16()
		if !vm.pop().Truthy() {
			vm.frame.ip += int(offset)
		}

	case OpJumpIfError:
		// In-band error propagation: if top-of-stack is a
		// ValidationError! instance, jump to the handler, leaving the error
		// value on the stack for the handler to inspect. No surface syntax
		// in this grammar emits this opcode (the language has no try/catch
		// equivalent); it is exercised only by hand-assembled bytecode.
		offset := vm.readU16()
		if vm.isErrorValue(vm.peek(0)) {
			vm.frame.ip += int(offset)
		}

	case OpLoop:
		offset := vm.readU16()
		vm.frame.ip -= int(offset)

	case OpCall:
		argc := int(vm.readByte())
		kwargc := int(vm.readByte())
		callee := vm.peek(argc + kwargc*2)
		if err := vm.callValue(callee, argc, kwargc); err != nil {
			return err
		}

	case OpInvoke:
		name := vm.readString()
		argc := int(vm.readByte())
		if err := vm.invoke(name, argc); err != nil {
			return err
		}

	case OpSuperInvoke:
		name := vm.readString()
		argc := int(vm.readByte())
		super := vm.pop().AsClass()
		if err := vm.superInvoke(super, name, argc); err != nil {
			return err
		}

	case OpClass:
		name := vm.readString()
		cls := NewObjClass(name)
		vm.alloc(cls)
		vm.push(ObjVal(VClass, cls))

	case OpInherit:
		super := vm.peek(1)
		if super.Type != VClass {
			return vm.runtimeError("superclass must be a class")
		}
		subclass := vm.peek(0).AsClass()
		subclass.Super = super.AsClass()
		vm.pop()

	case OpMethod:
		name := vm.readString()
		method := vm.pop()
		cls := vm.peek(0).AsClass()
		cls.Methods[name] = method

	case OpClosure:
		fn := vm.readConstant().AsClosure().Function
		closure := &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, len(fn.UpvalueDescs))}
		for i, desc := range fn.UpvalueDescs {
			isLocal := vm.readByte() != 0
			index := int(vm.readByte())
			if isLocal {
				closure.Upvalues[i] = vm.captureUpvalue(vm.frame.base + index)
			} else {
				closure.Upvalues[i] = vm.frame.closure.Upvalues[index]
			}
			_ = desc
		}
		vm.alloc(closure)
		vm.push(ObjVal(VClosure, closure))

	case OpArray:
		n := int(vm.readU16())
		elems := make([]Value, n)
		copy(elems, vm.stack[vm.sp-n:vm.sp])
		vm.sp -= n
		arr := &ObjArray{Elements: elems}
		vm.alloc(arr)
		vm.push(ObjVal(VArray, arr))

	case OpObject:
		n := int(vm.readU16())
		obj := NewObjObject()
		base := vm.sp - n*2
		for i := 0; i < n; i++ {
			key := vm.stack[base+i*2]
			val := vm.stack[base+i*2+1]
			obj.Set(key.AsString().Chars, val)
		}
		vm.sp = base
		vm.alloc(obj)
		vm.push(ObjVal(VObject, obj))

	case OpIndex:
		idx := vm.pop()
		receiver := vm.pop()
		v, err := vm.index(receiver, idx)
		if err != nil {
			return err
		}
		vm.push(v)

	case OpSetIndex:
		val := vm.pop()
		idx := vm.pop()
		receiver := vm.pop()
		if err := vm.setIndex(receiver, idx, val); err != nil {
			return err
		}
		vm.push(val)

	case OpFString:
		n := int(vm.readU16())
		s := ""
		for i := vm.sp - n; i < vm.sp; i++ {
			s += vm.toDisplayString(vm.stack[i])
		}
		vm.sp -= n
		vm.push(ObjVal(VString, vm.intern(s)))

	case OpPrint:
		v := vm.pop()
		_, _ = vm.out.Write([]byte(vm.toDisplayString(v) + "\n"))

	case OpImport:
		// No grammar construct emits OpImport; native/script modules are
		// registered by the host before the VM runs. Implemented for
		// disassembler/bytecode-level completeness and symmetry with
		// OpJumpIfError's unreached-by-the-compiler status.
		name := vm.readString()
		if vm.loader == nil {
			return vm.runtimeError("no module loader configured")
		}
		mod, err := vm.loader.Load(vm, name)
		if err != nil {
			return vm.runtimeError("module '%s' not found: %s", name, err)
		}
		vm.push(ObjVal(VModule, mod))

	case OpPromptCall:
		// `prompt <expr>` dispatches to a host-supplied LLM client, kept
		// out of core VM scope; absent a host hook this raises a runtime
		// error rather than silently no-op-ing.
		operand := vm.pop()
		if vm.promptHandler == nil {
			return vm.runtimeError("prompt: no host LLM handler configured")
		}
		v, err := vm.promptHandler(vm, operand)
		if err != nil {
			return err
		}
		vm.push(v)

	default:
		return vm.runtimeError("unknown opcode %v", op)
	}
	return nil
}

// Read helpers, operating on the active frame's chunk.
func (vm *VM) readByte() byte {
	chunk := vm.frame.closure.Function.Chunk
	b := chunk.Code[vm.frame.ip]
	vm.frame.ip++
	return b
}

func (vm *VM) readU16() uint16 {
	chunk := vm.frame.closure.Function.Chunk
	v := chunk.ReadU16(vm.frame.ip)
	vm.frame.ip += 2
	return v
}

func (vm *VM) readConstant() Value {
	idx := vm.readU16()
	return vm.frame.closure.Function.Chunk.Constants[idx]
}

func (vm *VM) readString() string {
	return vm.readConstant().AsString().Chars
}

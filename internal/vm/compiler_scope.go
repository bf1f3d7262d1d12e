package vm

// Local is a compile-time record of a local variable's stack slot and the
// scope depth it was declared at.
type Local struct {
	Name       string
	Depth      int
	Slot       int
	IsCaptured bool
}

// Upvalue is a compile-time record of a variable a nested closure captures
// from an enclosing function's locals (IsLocal true) or from the enclosing
// function's own upvalues (IsLocal false).
type Upvalue struct {
	Index   uint8
	IsLocal bool
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope closes the current scope, popping (or closing, if captured)
// every local declared inside it.
func (c *Compiler) endScope(line int) {
	c.scopeDepth--
	for c.localCount > 0 && c.locals[c.localCount-1].Depth > c.scopeDepth {
		if c.locals[c.localCount-1].IsCaptured {
			c.emit(OpCloseUpvalue, line)
		} else {
			c.emitPop(1, line)
		}
		c.slotCount--
		c.localCount--
	}
}

func (c *Compiler) addLocal(name string, slot int) {
	c.locals[c.localCount] = Local{Name: name, Depth: c.scopeDepth, Slot: slot}
	c.localCount++
}

func (c *Compiler) resolveLocal(name string) int {
	for i := c.localCount - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			return c.locals[i].Slot
		}
	}
	return -1
}

func (c *Compiler) resolveLocalIndex(name string) (slot int, localIdx int) {
	for i := c.localCount - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			return c.locals[i].Slot, i
		}
	}
	return -1, -1
}

// resolveUpvalue searches enclosing compilers for name, threading an upvalue
// chain through each intermediate function so a deeply nested closure can
// capture a variable from several scopes out.
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if slot, idx := c.enclosing.resolveLocalIndex(name); slot != -1 {
		c.enclosing.locals[idx].IsCaptured = true
		return c.addUpvalue(uint8(slot), true)
	}
	if up := c.enclosing.resolveUpvalue(name); up != -1 {
		return c.addUpvalue(uint8(up), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(index uint8, isLocal bool) int {
	for i := 0; i < c.upvalueCount; i++ {
		if c.upvalues[i].Index == index && c.upvalues[i].IsLocal == isLocal {
			return i
		}
	}
	c.upvalues[c.upvalueCount] = Upvalue{Index: index, IsLocal: isLocal}
	c.upvalueCount++
	return c.upvalueCount - 1
}

func (c *Compiler) emit(op Opcode, line int) { c.currentChunk().WriteOp(op, line) }

// emitPop emits Pop(n): Pop takes a count operand so the chunk optimizer's
// PopCombiner can merge adjacent pops into one instruction.
func (c *Compiler) emitPop(n int, line int) {
	c.emit(OpPop, line)
	c.emitByte(byte(n), line)
}

func (c *Compiler) emitByte(b byte, line int) { c.currentChunk().Write(b, line) }

func (c *Compiler) emitU16(v uint16, line int) int { return c.currentChunk().WriteU16(v, line) }

func (c *Compiler) emitConstant(v Value, line int) {
	idx := c.currentChunk().AddConstant(v)
	c.emit(OpConstant, line)
	c.emitU16(uint16(idx), line)
	c.slotCount++
}

// emitJump emits op followed by a placeholder 2-byte offset, returning the
// offset of the placeholder for patchJump to fill in later.
func (c *Compiler) emitJump(op Opcode, line int) int {
	c.emit(op, line)
	return c.emitU16(0xffff, line)
}

func (c *Compiler) patchJump(offset int) {
	jump := c.currentChunk().Len() - offset - 2
	c.currentChunk().PatchU16(offset, uint16(jump))
}

// emitLoop emits OpLoop with a backward offset to loopStart.
func (c *Compiler) emitLoop(loopStart int, line int) {
	c.emit(OpLoop, line)
	offset := c.currentChunk().Len() - loopStart + 2
	c.emitU16(uint16(offset), line)
}

// identifierConstant interns name as a string constant in the current
// chunk, for use as a global/property/method name operand. The line
// parameter is accepted (but unused) so call sites read uniformly with the
// other emit helpers, which all take a line for the line table.
func (c *Compiler) identifierConstant(name string, _ int) uint16 {
	idx := c.currentChunk().AddConstant(ObjVal(VString, &ObjString{Chars: name}))
	return uint16(idx)
}

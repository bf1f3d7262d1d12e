package vm

import "github.com/aiscriptdev/aiscript/internal/ast"

func (c *Compiler) compileStatement(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		c.compileExpression(s.X)
		c.emitPop(1, s.Ln)
		c.slotCount--
	case *ast.PrintStmt:
		c.compileExpression(s.X)
		c.emit(OpPrint, s.Ln)
		c.slotCount--
	case *ast.LetStmt:
		c.compileLetStmt(s)
	case *ast.BlockStmt:
		c.beginScope()
		c.compileBlock(s)
		c.endScope(s.Ln)
	case *ast.IfStmt:
		c.compileIfStmt(s)
	case *ast.WhileStmt:
		c.compileWhileStmt(s)
	case *ast.ReturnStmt:
		c.compileReturnStmt(s)
	case *ast.FunctionStmt:
		c.compileFunctionStmt(s, FuncFunction)
	case *ast.ClassStmt:
		c.compileClassStmt(s)
	case *ast.EnumStmt:
		c.compileEnumStmt(s)
	case *ast.AgentStmt:
		c.compileAgentStmt(s)
	default:
		c.diags.Add(stmt.Line(), "internal error: unhandled statement %T", stmt)
	}
}

func (c *Compiler) compileBlock(b *ast.BlockStmt) {
	for _, stmt := range b.Stmts {
		c.compileStatement(stmt)
	}
}

func (c *Compiler) compileLetStmt(s *ast.LetStmt) {
	c.compileExpression(s.Value)
	c.declareVariable(s.Name, s.Ln)
}

// declareVariable binds the value currently on top of the stack to name,
// either as a new local slot (inside a scope) or a global (at depth 0).
func (c *Compiler) declareVariable(name string, line int) {
	if c.scopeDepth > 0 {
		c.addLocal(name, c.slotCount-1)
		return
	}
	idx := c.identifierConstant(name, line)
	c.emit(OpDefineGlobal, line)
	c.emitU16(idx, line)
	c.slotCount--
}

func (c *Compiler) compileIfStmt(s *ast.IfStmt) {
	c.compileExpression(s.Cond)
	thenJump := c.emitJump(OpJumpPopIfFalse, s.Ln)
	c.slotCount--
	c.compileStatement(s.Then)
	elseJump := c.emitJump(OpJump, s.Ln)
	c.patchJump(thenJump)
	if s.Else != nil {
		c.compileStatement(s.Else)
	}
	c.patchJump(elseJump)
}

func (c *Compiler) compileWhileStmt(s *ast.WhileStmt) {
	loopStart := c.currentChunk().Len()
	c.compileExpression(s.Cond)
	exitJump := c.emitJump(OpJumpPopIfFalse, s.Ln)
	c.slotCount--
	c.compileStatement(s.Body)
	c.emitLoop(loopStart, s.Ln)
	c.patchJump(exitJump)
}

func (c *Compiler) compileReturnStmt(s *ast.ReturnStmt) {
	if c.kind == FuncScript {
		c.diags.Add(s.Ln, "cannot return from top-level code")
	}
	if s.Value == nil {
		if c.kind == FuncInitializer {
			c.emit(OpGetLocal, s.Ln)
			c.emitByte(0, s.Ln)
			c.slotCount++
		} else {
			c.emit(OpNil, s.Ln)
			c.slotCount++
		}
	} else {
		if c.kind == FuncInitializer {
			c.diags.Add(s.Ln, "cannot return a value from an initializer")
		}
		c.compileExpression(s.Value)
	}
	c.emit(OpReturn, s.Ln)
	c.slotCount--
}

// compileFunctionStmt compiles a named function declaration: the name is
// declared first (as a local or global) so the function body can refer to
// itself recursively, then the closure is compiled and bound to that name.
func (c *Compiler) compileFunctionStmt(s *ast.FunctionStmt, kind FuncKind) {
	line := s.Ln
	if c.scopeDepth > 0 {
		// Reserve the slot the closure will land in before compiling the
		// body, so a recursive call inside the body resolves the function's
		// own name to a local.
		c.addLocal(s.Name, c.slotCount)
	}
	c.compileFunctionBody(s, kind)
	if c.scopeDepth > 0 {
		// compileFunctionBody already pushed the closure into the slot
		// reserved above via its own slotCount++; nothing further to do.
		return
	}
	idx := c.identifierConstant(s.Name, line)
	c.emit(OpDefineGlobal, line)
	c.emitU16(idx, line)
	c.slotCount--
}

// compileFunctionBody compiles s into a nested ObjFunction and emits
// OpClosure (with its trailing upvalue descriptor table) in the enclosing
// chunk, leaving the resulting closure on top of the stack.
func (c *Compiler) compileFunctionBody(s *ast.FunctionStmt, kind FuncKind) {
	fc := newFunctionCompiler(c, s.Name, kind)
	fc.function.Doc = s.Doc
	fc.function.MaxArity = len(s.Params)
	fc.function.Arity = s.Arity()
	fc.function.ParamNames = make([]string, len(s.Params))
	fc.function.DefaultConst = make([]int, len(s.Params))

	for i, p := range s.Params {
		fc.addLocal(p.Name, i+1) // +1: slot 0 is `this`/reserved
		fc.function.ParamNames[i] = p.Name
		if p.Default != nil {
			dc := newFunctionCompiler(fc, "<default>", FuncFunction)
			dc.compileExpression(p.Default)
			dc.emit(OpReturn, p.Ln)
			defFn := dc.function
			defFn.MaxArity, defFn.Arity = 0, 0
			fc.function.DefaultConst[i] = fc.currentChunk().AddConstant(ObjVal(VClosure, &ObjClosure{Function: defFn}))
		} else {
			fc.function.DefaultConst[i] = -1
		}
	}
	fc.slotCount = len(s.Params) + 1

	if kind == FuncMethod && s.Name == "init" {
		fc.kind = FuncInitializer
	}

	fc.compileBlock(s.Body)

	// Implicit return at the end of a function body that falls off the end.
	if fc.kind == FuncInitializer {
		fc.emit(OpGetLocal, s.Ln)
		fc.emitByte(0, s.Ln)
	} else {
		fc.emit(OpNil, s.Ln)
	}
	fc.emit(OpReturn, s.Ln)

	fn := fc.function
	idx := c.currentChunk().AddConstant(ObjVal(VClosure, &ObjClosure{Function: fn}))
	c.emit(OpClosure, s.Ln)
	c.emitU16(uint16(idx), s.Ln)
	for i := 0; i < fc.upvalueCount; i++ {
		if fc.upvalues[i].IsLocal {
			c.emitByte(1, s.Ln)
		} else {
			c.emitByte(0, s.Ln)
		}
		c.emitByte(fc.upvalues[i].Index, s.Ln)
	}
	fn.UpvalueDescs = make([]UpvalueDesc, fc.upvalueCount)
	for i := 0; i < fc.upvalueCount; i++ {
		fn.UpvalueDescs[i] = UpvalueDesc{Index: int(fc.upvalues[i].Index), IsLocal: fc.upvalues[i].IsLocal}
	}
	c.slotCount++
}

// compileClassStmt declares the class, compiles its method table, and
// inherits from the superclass if present.
func (c *Compiler) compileClassStmt(s *ast.ClassStmt) {
	line := s.Ln
	if c.scopeDepth > 0 {
		// Reserve the slot the class value will land in; OpClass below
		// pushes it straight into this slot.
		c.addLocal(s.Name, c.slotCount)
	}

	nameIdx := c.identifierConstant(s.Name, line)
	c.emit(OpClass, line)
	c.emitU16(nameIdx, line)
	c.slotCount++

	if c.scopeDepth == 0 {
		c.emit(OpDefineGlobal, line)
		c.emitU16(nameIdx, line)
		c.slotCount--
		c.emit(OpGetGlobal, line)
		c.emitU16(nameIdx, line)
		c.slotCount++
	}

	enclosingClass, enclosingSuper := c.className, c.hasSuper
	c.className, c.hasSuper = s.Name, s.Super != ""

	if s.Super != "" {
		c.beginScope()
		c.addLocal("super", c.slotCount)
		c.slotCount++
		if slot := c.resolveLocal(s.Super); slot != -1 {
			c.emit(OpGetLocal, line)
			c.emitByte(byte(slot), line)
		} else if up := c.resolveUpvalue(s.Super); up != -1 {
			c.emit(OpGetUpvalue, line)
			c.emitByte(byte(up), line)
		} else {
			idx := c.identifierConstant(s.Super, line)
			c.emit(OpGetGlobal, line)
			c.emitU16(idx, line)
		}
		c.slotCount++
		c.emit(OpInherit, line)
		c.slotCount--
	}

	for _, m := range s.Methods {
		kind := FuncMethod
		c.compileFunctionBody(m, kind)
		midx := c.identifierConstant(m.Name, m.Ln)
		c.emit(OpMethod, m.Ln)
		c.emitU16(midx, m.Ln)
		c.slotCount--
	}

	if s.Super != "" {
		c.endScope(line)
	}

	c.className, c.hasSuper = enclosingClass, enclosingSuper

	if c.scopeDepth == 0 {
		c.emitPop(1, line) // drop the class value fetched for method binding
		c.slotCount--
	}
}

// compileEnumStmt desugars an enum to a global object whose fields are the
// variant names mapped to either their explicit literal or their ordinal
// index.
func (c *Compiler) compileEnumStmt(s *ast.EnumStmt) {
	line := s.Ln
	for i, v := range s.Variants {
		nameIdx := c.identifierConstant(v.Name, v.Ln)
		c.emit(OpConstant, v.Ln)
		c.emitU16(nameIdx, v.Ln)
		c.slotCount++
		if v.Value != nil {
			c.compileExpression(v.Value)
		} else {
			c.emitConstant(NumberVal(float64(i)), v.Ln)
		}
	}
	c.emit(OpObject, line)
	c.emitU16(uint16(len(s.Variants)), line)
	c.slotCount -= len(s.Variants) * 2
	c.slotCount++
	c.declareVariable(s.Name, line)
}

// compileAgentStmt compiles an `agent` declaration to a plain object whose
// fields are the declared members (each `fn` member becomes a closure) and
// binds it to the agent's name like a `let`. No ObjAgent is created here,
// and no LLM dispatch happens.
func (c *Compiler) compileAgentStmt(s *ast.AgentStmt) {
	line := s.Ln
	fieldCount := 0
	for _, f := range s.Fields {
		nameIdx := c.identifierConstant(f.Name, f.Ln)
		c.emit(OpConstant, f.Ln)
		c.emitU16(nameIdx, f.Ln)
		c.slotCount++
		if f.Run != nil {
			c.compileFunctionBody(f.Run, FuncFunction)
		} else {
			c.compileExpression(f.Value)
		}
		fieldCount++
	}
	c.emit(OpObject, line)
	c.emitU16(uint16(fieldCount), line)
	c.slotCount -= fieldCount * 2
	c.slotCount++
	c.declareVariable(s.Name, line)
}

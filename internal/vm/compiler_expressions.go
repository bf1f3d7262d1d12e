package vm

import (
	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/token"
)

func (c *Compiler) compileExpression(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.NumberLit:
		c.emitConstant(NumberVal(e.Value), e.Ln)
	case *ast.StringLit:
		c.emitConstant(ObjVal(VString, &ObjString{Chars: e.Value}), e.Ln)
	case *ast.BoolLit:
		if e.Value {
			c.emit(OpTrue, e.Ln)
		} else {
			c.emit(OpFalse, e.Ln)
		}
		c.slotCount++
	case *ast.NilLit:
		c.emit(OpNil, e.Ln)
		c.slotCount++
	case *ast.FStringLit:
		c.compileFString(e)
	case *ast.Identifier:
		c.compileNamedVar(e.Name, e.Ln)
	case *ast.ThisExpr:
		if c.className == "" {
			c.diags.Add(e.Ln, "cannot use 'this' outside a method")
		}
		c.compileNamedVar("this", e.Ln)
	case *ast.ArrayLit:
		c.compileArrayLit(e)
	case *ast.ObjectLit:
		c.compileObjectLit(e)
	case *ast.Grouping:
		c.compileExpression(e.Inner)
	case *ast.Unary:
		c.compileExpression(e.Right)
		c.emit(unaryOp(e.Op), e.Ln)
	case *ast.Binary:
		c.compileExpression(e.Left)
		c.compileExpression(e.Right)
		c.emit(binaryOp(e.Op), e.Ln)
		c.slotCount--
	case *ast.Logical:
		c.compileLogical(e)
	case *ast.Assign:
		c.compileAssign(e)
	case *ast.Call:
		c.compileCall(e)
	case *ast.GetProp:
		c.compileExpression(e.Object)
		idx := c.identifierConstant(e.Name, e.Ln)
		c.emit(OpGetProperty, e.Ln)
		c.emitU16(idx, e.Ln)
	case *ast.Index:
		c.compileExpression(e.Object)
		c.compileExpression(e.Idx)
		c.emit(OpIndex, e.Ln)
		c.slotCount--
	case *ast.SuperGet:
		c.compileSuperGet(e)
	case *ast.SuperInvoke:
		c.compileSuperInvoke(e)
	case *ast.PromptExpr:
		c.compileExpression(e.Operand)
		c.emit(OpPromptCall, e.Ln)
	default:
		c.diags.Add(expr.Line(), "internal error: unhandled expression %T", expr)
	}
}

func (c *Compiler) compileNamedVar(name string, line int) {
	if slot := c.resolveLocal(name); slot != -1 {
		c.emit(OpGetLocal, line)
		c.emitByte(byte(slot), line)
	} else if up := c.resolveUpvalue(name); up != -1 {
		c.emit(OpGetUpvalue, line)
		c.emitByte(byte(up), line)
	} else {
		idx := c.identifierConstant(name, line)
		c.emit(OpGetGlobal, line)
		c.emitU16(idx, line)
	}
	c.slotCount++
}

func (c *Compiler) compileArrayLit(e *ast.ArrayLit) {
	for _, el := range e.Elements {
		c.compileExpression(el)
	}
	c.emit(OpArray, e.Ln)
	c.emitU16(uint16(len(e.Elements)), e.Ln)
	c.slotCount -= len(e.Elements)
	c.slotCount++
}

func (c *Compiler) compileObjectLit(e *ast.ObjectLit) {
	for _, f := range e.Fields {
		if f.KeyExpr != nil {
			c.compileExpression(f.KeyExpr)
		} else {
			idx := c.identifierConstant(f.KeyName, e.Ln)
			c.emit(OpConstant, e.Ln)
			c.emitU16(idx, e.Ln)
			c.slotCount++
		}
		c.compileExpression(f.Value)
	}
	c.emit(OpObject, e.Ln)
	c.emitU16(uint16(len(e.Fields)), e.Ln)
	c.slotCount -= len(e.Fields) * 2
	c.slotCount++
}

func (c *Compiler) compileLogical(e *ast.Logical) {
	c.compileExpression(e.Left)
	if e.Op == token.AND {
		endJump := c.emitJump(OpJumpIfFalse, e.Ln)
		c.emitPop(1, e.Ln)
		c.slotCount--
		c.compileExpression(e.Right)
		c.patchJump(endJump)
		return
	}
	// OR: jump-if-false to evaluate right, else short-circuit true.
	elseJump := c.emitJump(OpJumpIfFalse, e.Ln)
	endJump := c.emitJump(OpJump, e.Ln)
	c.patchJump(elseJump)
	c.emitPop(1, e.Ln)
	c.slotCount--
	c.compileExpression(e.Right)
	c.patchJump(endJump)
}

func (c *Compiler) compileAssign(e *ast.Assign) {
	switch t := e.Target.(type) {
	case *ast.Identifier:
		c.compileExpression(e.Value)
		if slot := c.resolveLocal(t.Name); slot != -1 {
			c.emit(OpSetLocal, e.Ln)
			c.emitByte(byte(slot), e.Ln)
		} else if up := c.resolveUpvalue(t.Name); up != -1 {
			c.emit(OpSetUpvalue, e.Ln)
			c.emitByte(byte(up), e.Ln)
		} else {
			idx := c.identifierConstant(t.Name, e.Ln)
			c.emit(OpSetGlobal, e.Ln)
			c.emitU16(idx, e.Ln)
		}
	case *ast.GetProp:
		c.compileExpression(t.Object)
		c.compileExpression(e.Value)
		idx := c.identifierConstant(t.Name, e.Ln)
		c.emit(OpSetProperty, e.Ln)
		c.emitU16(idx, e.Ln)
		c.slotCount--
	case *ast.Index:
		c.compileExpression(t.Object)
		c.compileExpression(t.Idx)
		c.compileExpression(e.Value)
		c.emit(OpSetIndex, e.Ln)
		c.slotCount -= 2
	default:
		c.diags.Add(e.Ln, "invalid assignment target")
	}
}

// compileCall detects the common `obj.method(args)` shape with no keyword
// arguments and fuses it into a single OpInvoke(name, argc) rather than a
// GetProperty followed by a generic OpCall, avoiding a bound-method
// allocation. Invoke carries no keyword count, so a method call that does
// use keyword arguments falls back to the GetProperty+Call path.
func (c *Compiler) compileCall(e *ast.Call) {
	if get, ok := e.Callee.(*ast.GetProp); ok && len(e.Kwargs) == 0 {
		c.compileExpression(get.Object)
		for _, a := range e.Args {
			c.compileExpression(a)
		}
		idx := c.identifierConstant(get.Name, e.Ln)
		c.emit(OpInvoke, e.Ln)
		c.emitU16(idx, e.Ln)
		c.emitByte(byte(len(e.Args)), e.Ln)
		c.slotCount -= len(e.Args)
		return
	}
	c.compileExpression(e.Callee)
	argc, kwargc := c.compileArgs(e)
	c.emit(OpCall, e.Ln)
	c.emitByte(byte(argc), e.Ln)
	c.emitByte(byte(kwargc), e.Ln)
	c.slotCount -= argc + kwargc*2
}

func (c *Compiler) compileArgs(e *ast.Call) (argc, kwargc int) {
	for _, a := range e.Args {
		c.compileExpression(a)
	}
	for _, kw := range e.Kwargs {
		idx := c.identifierConstant(kw.Name, e.Ln)
		c.emit(OpConstant, e.Ln)
		c.emitU16(idx, e.Ln)
		c.slotCount++
		c.compileExpression(kw.Value)
	}
	return len(e.Args), len(e.Kwargs)
}

func (c *Compiler) compileSuperGet(e *ast.SuperGet) {
	if c.className == "" {
		c.diags.Add(e.Ln, "cannot use 'super' outside a method")
	} else if !c.hasSuper {
		c.diags.Add(e.Ln, "class '%s' has no superclass", c.className)
	}
	c.compileNamedVar("this", e.Ln)
	c.compileNamedVar("super", e.Ln)
	idx := c.identifierConstant(e.Method, e.Ln)
	c.emit(OpGetSuper, e.Ln)
	c.emitU16(idx, e.Ln)
	c.slotCount--
}

func (c *Compiler) compileSuperInvoke(e *ast.SuperInvoke) {
	if c.className == "" {
		c.diags.Add(e.Ln, "cannot use 'super' outside a method")
	} else if !c.hasSuper {
		c.diags.Add(e.Ln, "class '%s' has no superclass", c.className)
	}
	c.compileNamedVar("this", e.Ln)
	for _, a := range e.Args {
		c.compileExpression(a)
	}
	c.compileNamedVar("super", e.Ln)
	idx := c.identifierConstant(e.Method, e.Ln)
	c.emit(OpSuperInvoke, e.Ln)
	c.emitU16(idx, e.Ln)
	c.emitByte(byte(len(e.Args)), e.Ln)
	c.slotCount -= len(e.Args) + 1
}

// compileFString compiles an f-string's literal/expression parts left to
// right, then joins them with a single OpFString.
func (c *Compiler) compileFString(e *ast.FStringLit) {
	for _, p := range e.Parts {
		if p.Expr != nil {
			c.compileExpression(p.Expr)
		} else {
			c.emitConstant(ObjVal(VString, &ObjString{Chars: p.Text}), e.Ln)
		}
	}
	c.emit(OpFString, e.Ln)
	c.emitU16(uint16(len(e.Parts)), e.Ln)
	c.slotCount -= len(e.Parts)
	c.slotCount++
}

func unaryOp(op token.Kind) Opcode {
	if op == token.MINUS {
		return OpNeg
	}
	return OpNot // BANG or NOT
}

func binaryOp(op token.Kind) Opcode {
	switch op {
	case token.PLUS:
		return OpAdd
	case token.MINUS:
		return OpSub
	case token.STAR:
		return OpMul
	case token.SLASH:
		return OpDiv
	case token.PERCENT:
		return OpMod
	case token.EQ:
		return OpEq
	case token.NE:
		return OpNe
	case token.LT:
		return OpLt
	case token.LE:
		return OpLe
	case token.GT:
		return OpGt
	case token.GE:
		return OpGe
	default:
		return OpAdd
	}
}

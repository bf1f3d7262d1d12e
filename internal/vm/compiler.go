package vm

import (
	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/diagnostics"
)

// FuncKind distinguishes the top-level script body from named/anonymous
// functions and methods, since `this`/`super` and implicit returns differ.
type FuncKind int

const (
	FuncScript FuncKind = iota
	FuncFunction
	FuncMethod
	FuncInitializer
)

const maxLocals = 256

// Compiler walks a parsed ast.Program and emits a Chunk of bytecode in a
// single pass: locals are tracked as stack slots, closures capture
// enclosing locals as upvalues resolved through a chain of enclosing
// *Compiler values, and jumps are
// emitted with a placeholder offset patched once the target is known.
type Compiler struct {
	function *ObjFunction
	kind     FuncKind

	locals     [maxLocals]Local
	localCount int
	scopeDepth int
	slotCount  int

	upvalues     [maxLocals]Upvalue
	upvalueCount int

	enclosing *Compiler

	className string // non-empty while compiling a class body, for `this`/`super` validation
	hasSuper  bool

	diags *diagnostics.Bag
}

// NewCompiler creates the root compiler for a script's top-level code.
func NewCompiler() *Compiler {
	return &Compiler{
		function: &ObjFunction{Name: "<script>", Chunk: NewChunk()},
		kind:     FuncScript,
		diags:    &diagnostics.Bag{},
		// Slot 0 of the script frame holds the script closure itself
		// (Interpret pushes it before calling), so locals start at slot 1.
		slotCount: 1,
	}
}

func newFunctionCompiler(enclosing *Compiler, name string, kind FuncKind) *Compiler {
	c := &Compiler{
		function:   &ObjFunction{Name: name, Chunk: NewChunk()},
		kind:       kind,
		scopeDepth: 1,
		enclosing:  enclosing,
		className:  enclosing.className,
		hasSuper:   enclosing.hasSuper,
		diags:      enclosing.diags,
	}
	// Slot 0 is reserved for the receiver in methods, or is simply unused
	// (named "") for plain functions, as an implicit first local.
	if kind == FuncMethod || kind == FuncInitializer {
		c.addLocal("this", 0)
	} else {
		c.addLocal("", 0)
	}
	c.slotCount = 1
	return c
}

func (c *Compiler) currentChunk() *Chunk { return c.function.Chunk }

// Compile compiles a full program into the top-level script function.
func Compile(program *ast.Program) (*ObjFunction, *diagnostics.Bag) {
	c := NewCompiler()
	returned := false
	for i, stmt := range program.Stmts {
		// A final expression statement's value is the script's result.
		if es, ok := stmt.(*ast.ExprStmt); ok && i == len(program.Stmts)-1 {
			c.compileExpression(es.X)
			c.emit(OpReturn, es.Ln)
			c.slotCount--
			returned = true
			continue
		}
		c.compileStatement(stmt)
	}
	if !returned {
		c.emit(OpNil, 0)
		c.emit(OpReturn, 0)
	}
	c.function.Arity = 0
	c.function.MaxArity = 0
	if !c.diags.HasErrors() {
		Optimize(c.function.Chunk)
	}
	return c.function, c.diags
}

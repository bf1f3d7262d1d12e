package parser

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/token"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, diags := ParseProgram(src)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors for %q: %s", src, diags.String())
	}
	return prog
}

func TestParseLetStatement(t *testing.T) {
	prog := mustParse(t, "let x = 1 + 2;")
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	let, ok := prog.Stmts[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("expected *ast.LetStmt, got %T", prog.Stmts[0])
	}
	if let.Name != "x" {
		t.Errorf("Name = %q, want %q", let.Name, "x")
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `
		if (x > 0) {
			print "pos";
		} else {
			print "nonpos";
		}
	`)
	stmt, ok := prog.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected *ast.IfStmt, got %T", prog.Stmts[0])
	}
	if stmt.Else == nil {
		t.Error("expected an else branch to be parsed")
	}
}

func TestParseWhileLoop(t *testing.T) {
	prog := mustParse(t, `
		while (i < 10) {
			i = i + 1;
		}
	`)
	if _, ok := prog.Stmts[0].(*ast.WhileStmt); !ok {
		t.Fatalf("expected *ast.WhileStmt, got %T", prog.Stmts[0])
	}
}

func TestParseFunctionDeclaration(t *testing.T) {
	prog := mustParse(t, `
		fn add(a, b) {
			return a + b;
		}
	`)
	fn, ok := prog.Stmts[0].(*ast.FunctionStmt)
	if !ok {
		t.Fatalf("expected *ast.FunctionStmt, got %T", prog.Stmts[0])
	}
	if fn.Name != "add" {
		t.Errorf("Name = %q, want %q", fn.Name, "add")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
}

func TestParseClassWithSuperclass(t *testing.T) {
	prog := mustParse(t, `
		class Animal {
			fn speak() {
				return "...";
			}
		}
		class Dog : Animal {
			fn speak() {
				return "woof";
			}
		}
	`)
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Stmts))
	}
	dog, ok := prog.Stmts[1].(*ast.ClassStmt)
	if !ok {
		t.Fatalf("expected *ast.ClassStmt, got %T", prog.Stmts[1])
	}
	if dog.Super != "Animal" {
		t.Errorf("Super = %q, want %q", dog.Super, "Animal")
	}
	if len(dog.Methods) != 1 || dog.Methods[0].Name != "speak" {
		t.Fatalf("expected a single 'speak' method, got %v", dog.Methods)
	}
}

func TestParseEnumDeclaration(t *testing.T) {
	prog := mustParse(t, `
		enum Color {
			Red,
			Green,
			Blue,
		}
	`)
	e, ok := prog.Stmts[0].(*ast.EnumStmt)
	if !ok {
		t.Fatalf("expected *ast.EnumStmt, got %T", prog.Stmts[0])
	}
	if len(e.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(e.Variants))
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	prog := mustParse(t, "1 + 2 * 3;")
	expr, ok := prog.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", prog.Stmts[0])
	}
	bin, ok := expr.X.(*ast.Binary)
	if !ok {
		t.Fatalf("expected top-level *ast.Binary, got %T", expr.X)
	}
	if bin.Op != token.PLUS {
		t.Fatalf("top-level operator = %s, want PLUS (multiplication should bind tighter)", bin.Op)
	}
}

func TestParseArrayLiteralAndIndexing(t *testing.T) {
	prog := mustParse(t, "let arr = [1, 2, 3]; arr[0];")
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Stmts))
	}
}

func TestParseErrorOnMissingExpression(t *testing.T) {
	_, diags := ParseProgram("let x = ;")
	if !diags.HasErrors() {
		t.Fatal("expected a parse error for a missing expression after '='")
	}
}

func TestParseErrorOnUnterminatedBlock(t *testing.T) {
	_, diags := ParseProgram("fn f() { let x = 1;")
	if !diags.HasErrors() {
		t.Fatal("expected a parse error for an unterminated block")
	}
}

func TestParseAccumulatesMultipleErrors(t *testing.T) {
	_, diags := ParseProgram(`
		let a = ;
		let b = ;
	`)
	if len(diags.Errors()) < 2 {
		t.Fatalf("expected panic-mode recovery to surface multiple errors, got %d: %s", len(diags.Errors()), diags.String())
	}
}

func TestParseForwardReferenceBetweenClasses(t *testing.T) {
	// A class referencing a type declared later in the same file must not
	// error, since type references are only checked after the whole file
	// has been parsed and every class/enum name registered.
	prog := mustParse(t, `
		class Wrapper {
			inner: Inner;
		}
		class Inner {
			value: Int;
		}
	`)
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Stmts))
	}
}

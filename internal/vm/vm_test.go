package vm

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/parser"
)

func compileSource(t *testing.T, src string) *ObjFunction {
	t.Helper()
	program, diags := parser.ParseProgram(src)
	if diags.HasErrors() {
		t.Fatalf("parse error: %s", diags.String())
	}
	fn, diags := Compile(program)
	if diags.HasErrors() {
		t.Fatalf("compile error: %s", diags.String())
	}
	return fn
}

func runSource(t *testing.T, src string) Value {
	t.Helper()
	fn := compileSource(t, src)
	v := New()
	result, err := v.Interpret(fn)
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	return result
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"1 + 2;", 3},
		{"2 * 3 + 4;", 10},
		{"(2 + 3) * 4;", 20},
		{"10 / 2 - 1;", 4},
		{"7 % 2;", 1},
	}
	for _, tt := range tests {
		got := runSource(t, tt.src)
		if !got.IsNumber() || got.AsNumber() != tt.want {
			t.Errorf("%q = %v, want %v", tt.src, got.Inspect(), tt.want)
		}
	}
}

func TestLocalsAndScope(t *testing.T) {
	src := `
		let x = 10;
		{
			let x = 20;
			x = x + 1;
		}
		x;
	`
	got := runSource(t, src)
	if got.AsNumber() != 10 {
		t.Errorf("outer x = %v, want 10 (inner shadow should not leak)", got.Inspect())
	}
}

func TestFunctionCallAndClosure(t *testing.T) {
	src := `
		fn makeCounter() {
			let count = 0;
			fn increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		let counter = makeCounter();
		counter();
		counter();
		counter();
	`
	got := runSource(t, src)
	if got.AsNumber() != 3 {
		t.Errorf("counter() = %v, want 3 (closure should capture count by reference)", got.Inspect())
	}
}

// A `for` loop desugars to a block holding init once, then a while loop
// (see parser.forStatement): the loop variable is a single local slot
// reused by every iteration, not a fresh binding per iteration. Closures
// created inside the body therefore all share one upvalue pointing at that
// slot, and see whatever value it holds once the slot is closed at loop
// exit, not the value from the iteration that created them.
func TestClosuresOverLoopVariableShareTheSameBinding(t *testing.T) {
	src := `
		let fns = [];
		for (let i = 0; i < 3; i = i + 1) {
			fn capture() {
				return i;
			}
			fns.append(capture);
		}
		fns[0]() * 100 + fns[1]() * 10 + fns[2]();
	`
	got := runSource(t, src)
	if got.AsNumber() != 333 {
		t.Errorf("got %v, want 333 (all three closures share the loop variable's final value, 3)", got.Inspect())
	}
}

// Closures created in distinct iterations of a while loop whose own
// condition variable is declared fresh each pass (rather than shared via a
// for-loop's single init slot) do retain independent bindings: each `let i`
// inside the body is a new local, closed over separately.
func TestClosuresOverBlockScopedLetCaptureIndependently(t *testing.T) {
	src := `
		let fns = [];
		let n = 0;
		while (n < 3) {
			let i = n;
			fn capture() {
				return i;
			}
			fns.append(capture);
			n = n + 1;
		}
		fns[0]() * 100 + fns[1]() * 10 + fns[2]();
	`
	got := runSource(t, src)
	if got.AsNumber() != 12 {
		t.Errorf("got %v, want 12 (each iteration's `let i` should retain its own value: 0, 1, 2)", got.Inspect())
	}
}

func TestClassesAndInheritance(t *testing.T) {
	src := `
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
		let d = Dog();
		d.speak();
	`
	got := runSource(t, src)
	if got.Type != VString || got.AsString().Chars != "woof" {
		t.Errorf("d.speak() = %v, want \"woof\"", got.Inspect())
	}
}

func TestControlFlow(t *testing.T) {
	src := `
		let i = 0;
		let sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		sum;
	`
	got := runSource(t, src)
	if got.AsNumber() != 10 {
		t.Errorf("sum = %v, want 10", got.Inspect())
	}
}

func TestArrayAndIndexing(t *testing.T) {
	src := `
		let arr = [1, 2, 3];
		arr[1] = 99;
		arr[1];
	`
	got := runSource(t, src)
	if got.AsNumber() != 99 {
		t.Errorf("arr[1] = %v, want 99", got.Inspect())
	}
}

func TestCompileErrorReportsLine(t *testing.T) {
	_, diags := parser.ParseProgram("let x = ;")
	if !diags.HasErrors() {
		t.Fatal("expected a parse error for `let x = ;`")
	}
}

func TestRuntimeErrorSurfaced(t *testing.T) {
	fn := compileSource(t, "let x = 1; x();")
	v := New()
	if _, err := v.Interpret(fn); err == nil {
		t.Fatal("expected a runtime error calling a non-function")
	}
}

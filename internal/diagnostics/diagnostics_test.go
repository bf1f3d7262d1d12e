package diagnostics

import "testing"

func TestBagAccumulatesMultipleErrors(t *testing.T) {
	var b Bag
	if b.HasErrors() {
		t.Fatal("a fresh Bag should report no errors")
	}
	b.Add(3, "unexpected token '%s'", ";")
	b.Add(5, "missing return value")

	if !b.HasErrors() {
		t.Fatal("expected HasErrors to report true after Add")
	}
	if len(b.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(b.Errors()))
	}
	if b.Errors()[0].Line != 3 || b.Errors()[1].Line != 5 {
		t.Errorf("errors out of order or wrong lines: %+v", b.Errors())
	}
}

func TestErrorStringFormat(t *testing.T) {
	e := Error{Line: 7, Message: "undeclared type 'Ghost'"}
	want := "[line 7] Error: undeclared type 'Ghost'"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestBagStringJoinsEveryError(t *testing.T) {
	var b Bag
	b.Add(1, "first")
	b.Add(2, "second")

	s := b.String()
	if s != "[line 1] Error: first\n[line 2] Error: second\n" {
		t.Errorf("String() = %q", s)
	}
}

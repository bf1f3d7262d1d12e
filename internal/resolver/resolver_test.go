package resolver

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/diagnostics"
)

func TestKnowsBuiltinTypes(t *testing.T) {
	r := New()
	for _, name := range []string{"Int", "Float", "Number", "String", "Bool", "Array", "Object", "Nil", "Any"} {
		if !r.KnowsType(name) {
			t.Errorf("built-in type %q not recognized", name)
		}
	}
	if r.KnowsType("Widget") {
		t.Error("undeclared type 'Widget' should not be known")
	}
}

func TestKnowsTypeEmptyStringIsAlwaysKnown(t *testing.T) {
	if !New().KnowsType("") {
		t.Error("empty type hint should always be considered known (absence of a hint)")
	}
}

func TestRegisterClassMakesItAKnownType(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterClass(&ast.ClassStmt{Name: "User", Ln: 1}, &diags)

	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags.String())
	}
	if !r.KnowsType("User") {
		t.Error("registered class 'User' should become a known type")
	}
}

func TestRegisterClassDuplicateFieldReportsDiagnostic(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterClass(&ast.ClassStmt{
		Name: "User",
		Fields: []ast.ClassField{
			{Name: "id", Ln: 2},
			{Name: "id", Ln: 3},
		},
		Ln: 1,
	}, &diags)

	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for a duplicate field")
	}
}

func TestRegisterClassDuplicateMethodReportsDiagnostic(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterClass(&ast.ClassStmt{
		Name: "User",
		Methods: []*ast.FunctionStmt{
			{Name: "greet", Ln: 2},
			{Name: "greet", Ln: 3},
		},
		Ln: 1,
	}, &diags)

	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for a duplicate method")
	}
}

func TestRegisterEnumDuplicateVariantReportsDiagnostic(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterEnum(&ast.EnumStmt{
		Name: "Color",
		Variants: []ast.EnumVariant{
			{Name: "Red", Ln: 2},
			{Name: "Red", Ln: 3},
		},
		Ln: 1,
	}, &diags)

	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for a duplicate enum variant")
	}
	if !r.KnowsType("Color") {
		t.Error("registered enum 'Color' should become a known type")
	}
}

func TestCheckTypeRefUndeclaredReportsDiagnostic(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.CheckTypeRef("Ghost", 5, &diags)

	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for an undeclared type reference")
	}
	if diags.Errors()[0].Line != 5 {
		t.Errorf("diagnostic line = %d, want 5", diags.Errors()[0].Line)
	}
}

func TestValidateObjectLiteralMissingRequiredField(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterClass(&ast.ClassStmt{
		Name: "User",
		Fields: []ast.ClassField{
			{Name: "id", Required: true},
			{Name: "name", Required: true},
		},
		Ln: 1,
	}, &diags)

	lit := &ast.ObjectLit{
		Fields: []ast.ObjectField{{KeyName: "id"}},
		Ln:     10,
	}
	r.ValidateObjectLiteral("User", lit, &diags)

	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for a missing required field 'name'")
	}
}

func TestValidateObjectLiteralUnknownField(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterClass(&ast.ClassStmt{
		Name:   "User",
		Fields: []ast.ClassField{{Name: "id", Required: true}},
		Ln:     1,
	}, &diags)

	lit := &ast.ObjectLit{
		Fields: []ast.ObjectField{
			{KeyName: "id"},
			{KeyName: "bogus"},
		},
		Ln: 10,
	}
	r.ValidateObjectLiteral("User", lit, &diags)

	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for an unknown field 'bogus'")
	}
}

func TestValidateObjectLiteralComputedKeyBypassesValidation(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterClass(&ast.ClassStmt{
		Name:   "User",
		Fields: []ast.ClassField{{Name: "id", Required: true}},
		Ln:     1,
	}, &diags)

	lit := &ast.ObjectLit{
		Fields: []ast.ObjectField{
			{KeyName: "id"},
			{KeyExpr: &ast.Identifier{Name: "dynamicKey"}},
		},
		Ln: 10,
	}
	r.ValidateObjectLiteral("User", lit, &diags)

	if diags.HasErrors() {
		t.Fatalf("computed key should bypass validation, got: %s", diags.String())
	}
}

func TestValidateObjectLiteralAgainstUndeclaredTypeIsANoop(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	lit := &ast.ObjectLit{Fields: []ast.ObjectField{{KeyName: "anything"}}, Ln: 1}
	r.ValidateObjectLiteral("NeverDeclared", lit, &diags)

	if diags.HasErrors() {
		t.Fatalf("validating against an undeclared type should be a no-op, got: %s", diags.String())
	}
}

func TestValidateObjectLiteralTypeMismatchReportsDiagnostic(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterClass(&ast.ClassStmt{
		Name: "User",
		Fields: []ast.ClassField{
			{Name: "age", TypeHint: "Int", Ln: 2},
		},
		Ln: 1,
	}, &diags)

	lit := &ast.ObjectLit{
		Fields: []ast.ObjectField{
			{KeyName: "age", Value: &ast.StringLit{Value: "old", Ln: 10}},
		},
		Ln: 10,
	}
	r.ValidateObjectLiteral("User", lit, &diags)

	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for a field value that doesn't match its declared type")
	}
}

func TestValidateObjectLiteralMatchingLiteralTypeIsFine(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterClass(&ast.ClassStmt{
		Name: "User",
		Fields: []ast.ClassField{
			{Name: "age", TypeHint: "Int", Ln: 2},
			{Name: "nickname", TypeHint: "String", Ln: 3},
		},
		Ln: 1,
	}, &diags)

	lit := &ast.ObjectLit{
		Fields: []ast.ObjectField{
			{KeyName: "age", Value: &ast.NumberLit{Value: 30, Ln: 10}},
			{KeyName: "nickname", Value: &ast.NilLit{Ln: 10}},
		},
		Ln: 10,
	}
	r.ValidateObjectLiteral("User", lit, &diags)

	if diags.HasErrors() {
		t.Fatalf("expected no diagnostic, got: %s", diags.String())
	}
}

func TestClassReturnsRegisteredInfo(t *testing.T) {
	r := New()
	var diags diagnostics.Bag
	r.RegisterClass(&ast.ClassStmt{Name: "Animal", Super: "Base", Ln: 1}, &diags)

	info, ok := r.Class("Animal")
	if !ok {
		t.Fatal("expected 'Animal' to be registered")
	}
	if info.Super != "Base" {
		t.Errorf("Super = %q, want %q", info.Super, "Base")
	}

	if _, ok := r.Class("Nonexistent"); ok {
		t.Error("expected Class lookup for an unregistered name to fail")
	}
}

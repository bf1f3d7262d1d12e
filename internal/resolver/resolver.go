// Package resolver implements the AIScript type resolver: it records
// declared classes and enums as the parser encounters them, validates type
// references, and checks object-literal shapes against the fields declared
// on their target class.
package resolver

import (
	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/diagnostics"
)

// ClassInfo is what the resolver retains about a declared class.
type ClassInfo struct {
	Name   string
	Super  string
	Fields map[string]ast.ClassField
	Order  []string // field names in declaration order
}

// Resolver tracks every class and enum declared during a parse.
type Resolver struct {
	classes map[string]*ClassInfo
	enums   map[string]bool
	types   map[string]bool // built-in + declared type names seen on type hints
}

func New() *Resolver {
	r := &Resolver{
		classes: make(map[string]*ClassInfo),
		enums:   make(map[string]bool),
		types:   make(map[string]bool),
	}
	for _, b := range []string{"Int", "Float", "Number", "String", "Bool", "Array", "Object", "Nil", "Any"} {
		r.types[b] = true
	}
	return r
}

// RegisterClass records a class declaration and its field set. Diagnostics
// are appended to diags for a duplicate field name and for a duplicate
// method name.
func (r *Resolver) RegisterClass(c *ast.ClassStmt, diags *diagnostics.Bag) {
	info := &ClassInfo{Name: c.Name, Super: c.Super, Fields: make(map[string]ast.ClassField)}
	for _, f := range c.Fields {
		if _, dup := info.Fields[f.Name]; dup {
			diags.Add(f.Ln, "duplicate field '%s' in class '%s'", f.Name, c.Name)
			continue
		}
		info.Fields[f.Name] = f
		info.Order = append(info.Order, f.Name)
	}
	seen := make(map[string]bool)
	for _, m := range c.Methods {
		if seen[m.Name] {
			diags.Add(m.Ln, "duplicate method '%s' in class '%s'", m.Name, c.Name)
		}
		seen[m.Name] = true
	}
	r.classes[c.Name] = info
	r.types[c.Name] = true
}

// RegisterEnum records an enum declaration's name as a known type and
// checks for duplicate variants.
func (r *Resolver) RegisterEnum(e *ast.EnumStmt, diags *diagnostics.Bag) {
	seen := make(map[string]bool)
	for _, v := range e.Variants {
		if seen[v.Name] {
			diags.Add(v.Ln, "duplicate variant '%s' in enum '%s'", v.Name, e.Name)
		}
		seen[v.Name] = true
	}
	r.enums[e.Name] = true
	r.types[e.Name] = true
}

// KnowsType reports whether name is a built-in type or a declared
// class/enum; the empty name (no type hint) counts as known. Forward
// references within the same compilation unit are tolerated because the
// parser queues these checks and runs them only after the whole file has
// been parsed (see resolveDeferred in the parser package).
func (r *Resolver) KnowsType(name string) bool {
	return name == "" || r.types[name]
}

// ValidateObjectLiteral checks an object literal assigned to a value of the
// named class type: every required field must be present, no field may be
// given in excess of what the class declares, and a field given as a
// literal value must match its declared type. Computed keys bypass both
// checks: their value isn't known until runtime.
func (r *Resolver) ValidateObjectLiteral(typeName string, lit *ast.ObjectLit, diags *diagnostics.Bag) {
	info, ok := r.classes[typeName]
	if !ok {
		return // not a declared class; nothing to validate against
	}
	provided := make(map[string]bool)
	for _, f := range lit.Fields {
		if f.KeyExpr != nil {
			continue // computed key, bypass
		}
		provided[f.KeyName] = true
		field, declared := info.Fields[f.KeyName]
		if !declared {
			diags.Add(lit.Ln, "unknown field '%s' for type '%s'", f.KeyName, typeName)
			continue
		}
		checkLiteralType(field, f.Value, typeName, diags)
	}
	for _, name := range info.Order {
		field := info.Fields[name]
		if field.Required && !provided[name] {
			diags.Add(lit.Ln, "missing required field '%s' for type '%s'", name, typeName)
		}
	}
}

// checkLiteralType compares a provided field value against its declared
// type when the value is a literal whose type is known at compile time.
// Non-literal values (identifiers, calls, nested expressions) are only
// checkable at runtime and are left alone here.
func checkLiteralType(field ast.ClassField, value ast.Expr, typeName string, diags *diagnostics.Bag) {
	if field.TypeHint == "" || field.TypeHint == "Any" {
		return
	}
	var got string
	switch value.(type) {
	case *ast.NilLit:
		return // nil is assignable to any declared type
	case *ast.StringLit, *ast.FStringLit:
		got = "String"
	case *ast.NumberLit:
		got = "Number"
	case *ast.BoolLit:
		got = "Bool"
	default:
		return // not a literal; can't check without evaluating it
	}
	if !typeHintMatches(field.TypeHint, got) {
		diags.Add(value.Line(), "field '%s' of type '%s' expects %s, got %s",
			field.Name, typeName, field.TypeHint, got)
	}
}

// typeHintMatches reports whether a literal's inferred kind satisfies a
// declared type hint. Number literals satisfy Int, Float, and Number hints
// alike: the lexer doesn't distinguish integer from floating-point literals.
func typeHintMatches(hint, got string) bool {
	if hint == got {
		return true
	}
	if got == "Number" && (hint == "Int" || hint == "Float") {
		return true
	}
	return false
}

func (r *Resolver) Class(name string) (*ClassInfo, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// CheckTypeRef reports an undeclared-type compile error for a type hint
// token encountered while parsing.
func (r *Resolver) CheckTypeRef(name string, ln int, diags *diagnostics.Bag) {
	if !r.KnowsType(name) {
		diags.Add(ln, "undeclared type '%s'", name)
	}
}

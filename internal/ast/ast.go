// Package ast defines the tagged-variant expression and statement trees
// produced by the parser.
package ast

import "github.com/aiscriptdev/aiscript/internal/token"

// Node is implemented by every AST node; Line reports the source line the
// node started on, for diagnostics.
type Node interface {
	Line() int
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Stmts []Stmt
}

func (p *Program) Line() int { return 0 }

// Param is a function parameter: a name, an optional type hint, and an
// optional default-value expression.
type Param struct {
	Name     string
	TypeHint string
	Default  Expr
	Ln       int
}

// Directive is an `@name(k=v, ...)` annotation.
type Directive struct {
	Name string
	Args []DirectiveArg
	// Nested holds the operand directives for @not(@d) / @any(@d, ...).
	Nested []*Directive
	Ln     int
}

// DirectiveArg is a key=value pair inside a directive's argument list. Value
// is a JSON-compatible literal: nil, bool, float64, string, or []any, or a
// nested *Directive. Object (map) values are not parsed.
type DirectiveArg struct {
	Key   string
	Value any
}

// ClassField is a declared field of a class, used by the resolver to
// validate object literals assigned to that class's type.
type ClassField struct {
	Name       string
	TypeHint   string
	Required   bool
	Default    Expr
	Directives []*Directive
	Ln         int
}

// OpName is a convenience re-export so callers needn't import token
// just to print an operator.
func OpName(k token.Kind) string { return k.String() }

package ast

import "github.com/aiscriptdev/aiscript/internal/token"

type NumberLit struct {
	Value float64
	Ln    int
}

func (n *NumberLit) Line() int  { return n.Ln }
func (n *NumberLit) exprNode() {}

type StringLit struct {
	Value string
	Ln    int
}

func (n *StringLit) Line() int  { return n.Ln }
func (n *StringLit) exprNode() {}

// FStringPart is either a literal text segment or an embedded expression.
type FStringPart struct {
	Text string
	Expr Expr // nil when Text is set
}

type FStringLit struct {
	Parts []FStringPart
	Ln    int
}

func (n *FStringLit) Line() int  { return n.Ln }
func (n *FStringLit) exprNode() {}

type BoolLit struct {
	Value bool
	Ln    int
}

func (n *BoolLit) Line() int  { return n.Ln }
func (n *BoolLit) exprNode() {}

type NilLit struct{ Ln int }

func (n *NilLit) Line() int  { return n.Ln }
func (n *NilLit) exprNode() {}

type Identifier struct {
	Name string
	Ln   int
}

func (n *Identifier) Line() int  { return n.Ln }
func (n *Identifier) exprNode() {}

type ThisExpr struct{ Ln int }

func (n *ThisExpr) Line() int  { return n.Ln }
func (n *ThisExpr) exprNode() {}

type ArrayLit struct {
	Elements []Expr
	Ln       int
}

func (n *ArrayLit) Line() int  { return n.Ln }
func (n *ArrayLit) exprNode() {}

// ObjectField is one key/value pair of an object literal. Computed keys
// (KeyExpr set) bypass class-field validation by design.
type ObjectField struct {
	KeyName string
	KeyExpr Expr
	Value   Expr
}

type ObjectLit struct {
	Fields []ObjectField
	Ln     int
}

func (n *ObjectLit) Line() int  { return n.Ln }
func (n *ObjectLit) exprNode() {}

type Unary struct {
	Op    token.Kind
	Right Expr
	Ln    int
}

func (n *Unary) Line() int  { return n.Ln }
func (n *Unary) exprNode() {}

// PromptExpr models the `prompt expr` unary form; its evaluation is
// host-provided (an LLM call) and out of core scope, but the node and its
// compile-time wiring into a runtime hook are in scope.
type PromptExpr struct {
	Operand Expr
	Ln      int
}

func (n *PromptExpr) Line() int  { return n.Ln }
func (n *PromptExpr) exprNode() {}

type Binary struct {
	Op    token.Kind
	Left  Expr
	Right Expr
	Ln    int
}

func (n *Binary) Line() int  { return n.Ln }
func (n *Binary) exprNode() {}

type Logical struct {
	Op    token.Kind // AND / OR
	Left  Expr
	Right Expr
	Ln    int
}

func (n *Logical) Line() int  { return n.Ln }
func (n *Logical) exprNode() {}

type Assign struct {
	Target Expr
	Value  Expr
	Ln     int
}

func (n *Assign) Line() int  { return n.Ln }
func (n *Assign) exprNode() {}

type Call struct {
	Callee Expr
	Args   []Expr
	Kwargs []KeywordArg
	Ln     int
}

func (n *Call) Line() int  { return n.Ln }
func (n *Call) exprNode() {}

type KeywordArg struct {
	Name  string
	Value Expr
}

type GetProp struct {
	Object Expr
	Name   string
	Ln     int
}

func (n *GetProp) Line() int  { return n.Ln }
func (n *GetProp) exprNode() {}

type Index struct {
	Object Expr
	Idx    Expr
	Ln     int
}

func (n *Index) Line() int  { return n.Ln }
func (n *Index) exprNode() {}

type SuperGet struct {
	Method string
	Ln     int
}

func (n *SuperGet) Line() int  { return n.Ln }
func (n *SuperGet) exprNode() {}

type SuperInvoke struct {
	Method string
	Args   []Expr
	Ln     int
}

func (n *SuperInvoke) Line() int  { return n.Ln }
func (n *SuperInvoke) exprNode() {}

type Grouping struct {
	Inner Expr
	Ln    int
}

func (n *Grouping) Line() int  { return n.Ln }
func (n *Grouping) exprNode() {}

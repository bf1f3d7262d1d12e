// Package parser implements AIScript's recursive-descent parser with Pratt
// precedence for expressions, producing a typed ast.Program.
package parser

import (
	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/diagnostics"
	"github.com/aiscriptdev/aiscript/internal/lexer"
	"github.com/aiscriptdev/aiscript/internal/resolver"
	"github.com/aiscriptdev/aiscript/internal/token"
)

// Parser is a single-source recursive-descent parser. Errors use a
// panic-mode strategy: on a parse error it marks hadError and synchronizes
// to the next statement boundary, so a single run can surface more than
// one error.
type Parser struct {
	lex  *lexer.Lexer
	cur  token.Token
	prev token.Token

	diags    *diagnostics.Bag
	Resolver *resolver.Resolver

	hadError  bool
	panicMode bool

	hasLookahead bool
	lookahead    token.Token

	pendingTypeRefs   []pendingTypeRef
	pendingObjectLits []pendingObjectLit
}

// pendingTypeRef is a type-hint reference whose validity check is deferred
// until every top-level class/enum has been parsed, so a type named later
// in the file resolves correctly.
type pendingTypeRef struct {
	name string
	line int
}

type pendingObjectLit struct {
	typeName string
	lit      *ast.ObjectLit
}

// deferTypeRef queues name for a CheckTypeRef pass once the whole program
// has been parsed, instead of checking it immediately.
func (p *Parser) deferTypeRef(name string, line int) {
	p.pendingTypeRefs = append(p.pendingTypeRefs, pendingTypeRef{name: name, line: line})
}

func (p *Parser) deferObjectLit(typeName string, lit *ast.ObjectLit) {
	p.pendingObjectLits = append(p.pendingObjectLits, pendingObjectLit{typeName: typeName, lit: lit})
}

// resolveDeferred runs every queued type-reference and object-literal
// check now that all top-level class/enum declarations have been seen.
func (p *Parser) resolveDeferred() {
	for _, ref := range p.pendingTypeRefs {
		p.Resolver.CheckTypeRef(ref.name, ref.line, p.diags)
	}
	for _, ol := range p.pendingObjectLits {
		p.Resolver.ValidateObjectLiteral(ol.typeName, ol.lit, p.diags)
	}
}

func New(source string) *Parser {
	p := &Parser{
		lex:      lexer.New(source),
		diags:    &diagnostics.Bag{},
		Resolver: resolver.New(),
	}
	p.advance()
	return p
}

// ParseProgram parses the whole source buffer in a single pass. Type-hint
// references and object-literal shape checks are queued while parsing and
// run by resolveDeferred once every `class`/`enum` declaration has been
// registered with the resolver (so forward references across the file
// resolve correctly).
func ParseProgram(source string) (*ast.Program, *diagnostics.Bag) {
	p := New(source)
	prog := &ast.Program{}
	for !p.check(token.EOF) {
		stmt := p.declaration()
		if stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
	}
	p.resolveDeferred()
	return prog, p.diags
}

func (p *Parser) rawNext() token.Token {
	for {
		t := p.lex.NextToken()
		if t.Kind != token.ERROR {
			return t
		}
		p.errorAt(t, t.Lexeme)
	}
}

func (p *Parser) advance() {
	p.prev = p.cur
	if p.hasLookahead {
		p.cur = p.lookahead
		p.hasLookahead = false
		return
	}
	p.cur = p.rawNext()
}

// peek returns the token after cur without consuming it.
func (p *Parser) peek() token.Token {
	if !p.hasLookahead {
		p.lookahead = p.rawNext()
		p.hasLookahead = true
	}
	return p.lookahead
}

func (p *Parser) check(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(k token.Kind, msg string) token.Token {
	if p.check(k) {
		tok := p.cur
		p.advance()
		return tok
	}
	p.errorAtCurrent(msg)
	return p.cur
}

func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.cur, msg) }

func (p *Parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	p.diags.Add(tok.Line, "%s", msg)
}

// synchronize discards tokens until it reaches a likely statement boundary,
// so compilation can keep collecting diagnostics after an error.
func (p *Parser) synchronize() {
	p.panicMode = false
	for !p.check(token.EOF) {
		if p.prev.Kind == token.SEMICOLON {
			return
		}
		switch p.cur.Kind {
		case token.CLASS, token.FN, token.LET, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN, token.ENUM, token.AGENT:
			return
		}
		p.advance()
	}
}

func (p *Parser) HadError() bool { return p.hadError }
func (p *Parser) Diagnostics() *diagnostics.Bag { return p.diags }

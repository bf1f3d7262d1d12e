package parser

import (
	"strconv"

	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/token"
)

// directiveList parses zero or more `@name(...)` annotations preceding a
// field or parameter declaration. Directive parsing is a peer of
// expression parsing: it shares the same token stream and error-recovery
// machinery but has its own grammar.
func (p *Parser) directiveList() []*ast.Directive {
	var out []*ast.Directive
	for p.check(token.AT) {
		out = append(out, p.directive())
	}
	return out
}

func (p *Parser) directive() *ast.Directive {
	ln := p.cur.Line
	p.expect(token.AT, "expected '@'")
	name := p.expect(token.IDENT, "expected directive name").Lexeme
	d := &ast.Directive{Name: name, Ln: ln}
	if p.match(token.LPAREN) {
		if !p.check(token.RPAREN) {
			for {
				if p.check(token.AT) {
					d.Nested = append(d.Nested, p.directive())
				} else if p.check(token.IDENT) && p.peek().Kind == token.ASSIGN {
					key := p.cur.Lexeme
					p.advance()
					p.advance() // consume '='
					d.Args = append(d.Args, ast.DirectiveArg{Key: key, Value: p.jsonValue()})
				} else {
					d.Args = append(d.Args, ast.DirectiveArg{Value: p.jsonValue()})
				}
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		p.expect(token.RPAREN, "expected ')' after directive arguments")
	}
	return d
}

// jsonValue parses a single JSON-compatible literal: nil, bool, number,
// string, array, or nested directive (for @any/@not operands already
// handled by directive()).
func (p *Parser) jsonValue() any {
	switch {
	case p.match(token.TRUE):
		return true
	case p.match(token.FALSE):
		return false
	case p.match(token.NIL):
		return nil
	case p.match(token.NUMBER):
		v, _ := strconv.ParseFloat(p.prev.Lexeme, 64)
		return v
	case p.match(token.STRING):
		return unquote(p.prev.Lexeme)
	case p.match(token.LBRACKET):
		var arr []any
		if !p.check(token.RBRACKET) {
			for {
				arr = append(arr, p.jsonValue())
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		p.expect(token.RBRACKET, "expected ']' after directive array value")
		return arr
	case p.check(token.AT):
		return p.directive()
	}
	p.errorAtCurrent("expected a directive value")
	p.advance()
	return nil
}

package parser

import (
	"strconv"

	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/token"
)

func (p *Parser) expression() ast.Expr { return p.assignment() }

func (p *Parser) assignment() ast.Expr {
	left := p.or()
	if p.match(token.ASSIGN) {
		ln := p.prev.Line
		value := p.assignment()
		switch left.(type) {
		case *ast.Identifier, *ast.GetProp, *ast.Index:
			return &ast.Assign{Target: left, Value: value, Ln: ln}
		default:
			p.errorAt(p.prev, "invalid assignment target")
			return left
		}
	}
	return left
}

func (p *Parser) or() ast.Expr {
	left := p.and()
	for p.match(token.OR) {
		ln := p.prev.Line
		right := p.and()
		left = &ast.Logical{Op: token.OR, Left: left, Right: right, Ln: ln}
	}
	return left
}

func (p *Parser) and() ast.Expr {
	left := p.equality()
	for p.match(token.AND) {
		ln := p.prev.Line
		right := p.equality()
		left = &ast.Logical{Op: token.AND, Left: left, Right: right, Ln: ln}
	}
	return left
}

func (p *Parser) equality() ast.Expr {
	left := p.comparison()
	for p.check(token.EQ) || p.check(token.NE) {
		op := p.cur.Kind
		p.advance()
		ln := p.prev.Line
		right := p.comparison()
		left = &ast.Binary{Op: op, Left: left, Right: right, Ln: ln}
	}
	return left
}

func (p *Parser) comparison() ast.Expr {
	left := p.term()
	for p.check(token.LT) || p.check(token.LE) || p.check(token.GT) || p.check(token.GE) {
		op := p.cur.Kind
		p.advance()
		ln := p.prev.Line
		right := p.term()
		left = &ast.Binary{Op: op, Left: left, Right: right, Ln: ln}
	}
	return left
}

func (p *Parser) term() ast.Expr {
	left := p.factor()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.cur.Kind
		p.advance()
		ln := p.prev.Line
		right := p.factor()
		left = &ast.Binary{Op: op, Left: left, Right: right, Ln: ln}
	}
	return left
}

func (p *Parser) factor() ast.Expr {
	left := p.unary()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.cur.Kind
		p.advance()
		ln := p.prev.Line
		right := p.factor_unary()
		left = &ast.Binary{Op: op, Left: left, Right: right, Ln: ln}
	}
	return left
}

func (p *Parser) factor_unary() ast.Expr { return p.unary() }

func (p *Parser) unary() ast.Expr {
	if p.check(token.BANG) || p.check(token.MINUS) {
		op := p.cur.Kind
		p.advance()
		ln := p.prev.Line
		right := p.unary()
		return &ast.Unary{Op: op, Right: right, Ln: ln}
	}
	if p.match(token.PROMPT) {
		ln := p.prev.Line
		operand := p.unary()
		return &ast.PromptExpr{Operand: operand, Ln: ln}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LPAREN):
			ln := p.prev.Line
			args, kwargs := p.argumentList()
			expr = &ast.Call{Callee: expr, Args: args, Kwargs: kwargs, Ln: ln}
		case p.match(token.DOT):
			ln := p.prev.Line
			name := p.expect(token.IDENT, "expected property name after '.'").Lexeme
			expr = &ast.GetProp{Object: expr, Name: name, Ln: ln}
		case p.match(token.LBRACKET):
			ln := p.prev.Line
			idx := p.expression()
			p.expect(token.RBRACKET, "expected ']' after index")
			expr = &ast.Index{Object: expr, Idx: idx, Ln: ln}
		default:
			return expr
		}
	}
}

// argumentList parses a call's argument list, splitting positional
// arguments from trailing `name = value` keyword arguments.
func (p *Parser) argumentList() ([]ast.Expr, []ast.KeywordArg) {
	var args []ast.Expr
	var kwargs []ast.KeywordArg
	if !p.check(token.RPAREN) {
		for {
			if p.check(token.IDENT) && p.peek().Kind == token.ASSIGN {
				name := p.cur.Lexeme
				p.advance() // consume IDENT
				p.advance() // consume ASSIGN
				val := p.expression()
				kwargs = append(kwargs, ast.KeywordArg{Name: name, Value: val})
				if !p.match(token.COMMA) {
					break
				}
				continue
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "expected ')' after arguments")
	return args, kwargs
}

func (p *Parser) primary() ast.Expr {
	ln := p.cur.Line
	switch {
	case p.match(token.TRUE):
		return &ast.BoolLit{Value: true, Ln: ln}
	case p.match(token.FALSE):
		return &ast.BoolLit{Value: false, Ln: ln}
	case p.match(token.NIL):
		return &ast.NilLit{Ln: ln}
	case p.match(token.NUMBER):
		v, _ := strconv.ParseFloat(p.prev.Lexeme, 64)
		return &ast.NumberLit{Value: v, Ln: ln}
	case p.match(token.STRING):
		return &ast.StringLit{Value: unquote(p.prev.Lexeme), Ln: ln}
	case p.match(token.DOCSTRING):
		return &ast.StringLit{Value: p.prev.Lexeme, Ln: ln}
	case p.match(token.FSTRING):
		return p.parseFString(p.prev.Lexeme, ln)
	case p.match(token.THIS):
		return &ast.ThisExpr{Ln: ln}
	case p.match(token.SUPER):
		p.expect(token.DOT, "expected '.' after 'super'")
		method := p.expect(token.IDENT, "expected superclass method name").Lexeme
		if p.match(token.LPAREN) {
			args, _ := p.argumentList()
			return &ast.SuperInvoke{Method: method, Args: args, Ln: ln}
		}
		return &ast.SuperGet{Method: method, Ln: ln}
	case p.match(token.IDENT):
		return &ast.Identifier{Name: p.prev.Lexeme, Ln: ln}
	case p.match(token.LPAREN):
		inner := p.expression()
		p.expect(token.RPAREN, "expected ')' after expression")
		return &ast.Grouping{Inner: inner, Ln: ln}
	case p.match(token.LBRACKET):
		return p.arrayLiteral(ln)
	case p.match(token.LBRACE):
		return p.objectLiteral(ln)
	}
	p.errorAtCurrent("expected expression")
	p.advance()
	return &ast.NilLit{Ln: ln}
}

func (p *Parser) arrayLiteral(ln int) ast.Expr {
	arr := &ast.ArrayLit{Ln: ln}
	if !p.check(token.RBRACKET) {
		for {
			arr.Elements = append(arr.Elements, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RBRACKET, "expected ']' after array elements")
	return arr
}

func (p *Parser) objectLiteral(ln int) ast.Expr {
	obj := &ast.ObjectLit{Ln: ln}
	if !p.check(token.RBRACE) {
		for {
			var field ast.ObjectField
			if p.match(token.LBRACKET) {
				field.KeyExpr = p.expression()
				p.expect(token.RBRACKET, "expected ']' after computed key")
			} else if p.check(token.IDENT) || p.check(token.STRING) {
				field.KeyName = p.unquotedKey()
			} else {
				p.errorAtCurrent("expected object key")
			}
			p.expect(token.COLON, "expected ':' after object key")
			field.Value = p.expression()
			obj.Fields = append(obj.Fields, field)
			if !p.match(token.COMMA) {
				break
			}
			if p.check(token.RBRACE) {
				break
			}
		}
	}
	p.expect(token.RBRACE, "expected '}' after object literal")
	return obj
}

func (p *Parser) unquotedKey() string {
	if p.match(token.STRING) {
		return unquote(p.prev.Lexeme)
	}
	tok := p.expect(token.IDENT, "expected object key")
	return tok.Lexeme
}

// unquote strips the surrounding quotes and resolves \" / \\ / \n escapes
// from a raw string lexeme as produced by the lexer.
func unquote(lexeme string) string {
	if len(lexeme) < 2 {
		return lexeme
	}
	body := lexeme[1 : len(lexeme)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				out = append(out, body[i])
			}
			continue
		}
		out = append(out, body[i])
	}
	return string(out)
}

// parseFString re-lexes an f-string body into literal text segments and
// embedded {expr} expressions. Doubled {{ / }} and \{ / \} are literal
// braces.
func (p *Parser) parseFString(lexeme string, ln int) ast.Expr {
	body := lexeme
	if len(body) >= 2 && body[0] == '"' && body[len(body)-1] == '"' {
		body = body[1 : len(body)-1]
	}
	lit := &ast.FStringLit{Ln: ln}
	var text []byte
	i := 0
	flush := func() {
		if len(text) > 0 {
			lit.Parts = append(lit.Parts, ast.FStringPart{Text: string(text)})
			text = nil
		}
	}
	for i < len(body) {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && (body[i+1] == '{' || body[i+1] == '}'):
			text = append(text, body[i+1])
			i += 2
		case c == '{' && i+1 < len(body) && body[i+1] == '{':
			text = append(text, '{')
			i += 2
		case c == '}' && i+1 < len(body) && body[i+1] == '}':
			text = append(text, '}')
			i += 2
		case c == '{':
			flush()
			depth := 1
			j := i + 1
			for j < len(body) && depth > 0 {
				if body[j] == '{' {
					depth++
				} else if body[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			exprSrc := body[i+1 : j]
			sub := New(exprSrc)
			sub.Resolver = p.Resolver
			expr := sub.expression()
			lit.Parts = append(lit.Parts, ast.FStringPart{Expr: expr})
			i = j + 1
		default:
			text = append(text, c)
			i++
		}
	}
	flush()
	return lit
}

package parser

import (
	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/token"
)

func (p *Parser) declaration() ast.Stmt {
	var stmt ast.Stmt
	switch {
	case p.match(token.LET):
		stmt = p.letDeclaration()
	case p.match(token.FN):
		stmt = p.functionDeclaration("")
	case p.match(token.CLASS):
		stmt = p.classDeclaration()
	case p.match(token.ENUM):
		stmt = p.enumDeclaration()
	case p.match(token.AGENT):
		stmt = p.agentDeclaration()
	default:
		stmt = p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) letDeclaration() ast.Stmt {
	ln := p.prev.Line
	name := p.expect(token.IDENT, "expected variable name").Lexeme
	typeHint := ""
	if p.match(token.COLON) {
		typeHint = p.expect(token.IDENT, "expected type name").Lexeme
		p.deferTypeRef(typeHint, ln)
	}
	var value ast.Expr
	if p.match(token.ASSIGN) {
		value = p.expression()
	} else {
		p.errorAtCurrent("expected '=' after let declaration")
	}
	p.expect(token.SEMICOLON, "expected ';' after variable declaration")
	if typeHint != "" {
		if lit, ok := value.(*ast.ObjectLit); ok {
			p.deferObjectLit(typeHint, lit)
		}
	}
	return &ast.LetStmt{Name: name, TypeHint: typeHint, Value: value, Ln: ln}
}

func (p *Parser) block() *ast.BlockStmt {
	ln := p.prev.Line
	b := &ast.BlockStmt{Ln: ln}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		b.Stmts = append(b.Stmts, p.declaration())
	}
	p.expect(token.RBRACE, "expected '}' after block")
	return b
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.PRINT):
		return p.printStatement()
	case p.match(token.LBRACE):
		return p.block()
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	default:
		return p.exprStatement()
	}
}

func (p *Parser) printStatement() ast.Stmt {
	ln := p.prev.Line
	x := p.expression()
	p.expect(token.SEMICOLON, "expected ';' after value")
	return &ast.PrintStmt{X: x, Ln: ln}
}

func (p *Parser) exprStatement() ast.Stmt {
	ln := p.cur.Line
	x := p.expression()
	p.expect(token.SEMICOLON, "expected ';' after expression")
	return &ast.ExprStmt{X: x, Ln: ln}
}

func (p *Parser) ifStatement() ast.Stmt {
	ln := p.prev.Line
	p.expect(token.LPAREN, "expected '(' after 'if'")
	cond := p.expression()
	p.expect(token.RPAREN, "expected ')' after condition")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.statement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els, Ln: ln}
}

func (p *Parser) whileStatement() ast.Stmt {
	ln := p.prev.Line
	p.expect(token.LPAREN, "expected '(' after 'while'")
	cond := p.expression()
	p.expect(token.RPAREN, "expected ')' after condition")
	body := p.statement()
	return &ast.WhileStmt{Cond: cond, Body: body, Ln: ln}
}

// forStatement desugars `for (init; cond; step) body` into a block
// containing init followed by a while loop whose body runs step after the
// original body.
func (p *Parser) forStatement() ast.Stmt {
	ln := p.prev.Line
	p.expect(token.LPAREN, "expected '(' after 'for'")

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		init = nil
	case p.match(token.LET):
		init = p.letDeclaration()
	default:
		init = p.exprStatement()
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.expression()
	} else {
		cond = &ast.BoolLit{Value: true, Ln: ln}
	}
	p.expect(token.SEMICOLON, "expected ';' after loop condition")

	var step ast.Expr
	if !p.check(token.RPAREN) {
		step = p.expression()
	}
	p.expect(token.RPAREN, "expected ')' after for clauses")

	body := p.statement()

	if step != nil {
		body = &ast.BlockStmt{Stmts: []ast.Stmt{body, &ast.ExprStmt{X: step, Ln: ln}}, Ln: ln}
	}
	loop := &ast.WhileStmt{Cond: cond, Body: body, Ln: ln}

	if init == nil {
		return loop
	}
	return &ast.BlockStmt{Stmts: []ast.Stmt{init, loop}, Ln: ln}
}

func (p *Parser) returnStatement() ast.Stmt {
	ln := p.prev.Line
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.expect(token.SEMICOLON, "expected ';' after return value")
	return &ast.ReturnStmt{Value: value, Ln: ln}
}

func (p *Parser) paramList() []ast.Param {
	p.expect(token.LPAREN, "expected '(' after function name")
	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			ln := p.cur.Line
			name := p.expect(token.IDENT, "expected parameter name").Lexeme
			typeHint := ""
			if p.match(token.COLON) {
				typeHint = p.expect(token.IDENT, "expected type name").Lexeme
				p.deferTypeRef(typeHint, ln)
			}
			var def ast.Expr
			if p.match(token.ASSIGN) {
				def = p.expression()
			}
			params = append(params, ast.Param{Name: name, TypeHint: typeHint, Default: def, Ln: ln})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "expected ')' after parameters")
	return params
}

func (p *Parser) functionDeclaration(doc string) *ast.FunctionStmt {
	ln := p.prev.Line
	name := p.expect(token.IDENT, "expected function name").Lexeme
	params := p.paramList()
	retType := ""
	if p.match(token.ARROW) {
		retType = p.expect(token.IDENT, "expected return type").Lexeme
		p.deferTypeRef(retType, ln)
	}
	p.expect(token.LBRACE, "expected '{' before function body")
	body := p.block()
	return &ast.FunctionStmt{Name: name, Params: params, ReturnType: retType, Body: body, Doc: doc, Ln: ln}
}

// leadingDoc consumes an optional docstring token immediately preceding a
// declaration and returns its text.
func (p *Parser) leadingDoc() string {
	if p.check(token.DOCSTRING) {
		doc := p.cur.Lexeme
		p.advance()
		return doc
	}
	return ""
}

func (p *Parser) classDeclaration() ast.Stmt {
	ln := p.prev.Line
	name := p.expect(token.IDENT, "expected class name").Lexeme
	super := ""
	if p.match(token.COLON) {
		super = p.expect(token.IDENT, "expected superclass name").Lexeme
	}
	p.expect(token.LBRACE, "expected '{' before class body")

	cls := &ast.ClassStmt{Name: name, Super: super, Ln: ln}

	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		doc := p.leadingDoc()
		directives := p.directiveList()
		if p.check(token.FN) {
			p.advance()
			m := p.functionDeclaration(doc)
			cls.Methods = append(cls.Methods, m)
			continue
		}
		// Field declaration: name [: type] [= default];
		fln := p.cur.Line
		fname := p.expect(token.IDENT, "expected field or method").Lexeme
		typeHint := ""
		if p.match(token.COLON) {
			typeHint = p.expect(token.IDENT, "expected type name").Lexeme
			p.deferTypeRef(typeHint, fln)
		}
		var def ast.Expr
		required := true
		if p.match(token.ASSIGN) {
			def = p.expression()
			required = false
		}
		p.expect(token.SEMICOLON, "expected ';' after field declaration")
		cls.Fields = append(cls.Fields, ast.ClassField{
			Name: fname, TypeHint: typeHint, Required: required, Default: def,
			Directives: directives, Ln: fln,
		})
	}
	p.expect(token.RBRACE, "expected '}' after class body")

	p.Resolver.RegisterClass(cls, p.diags)
	return cls
}

func (p *Parser) enumDeclaration() ast.Stmt {
	ln := p.prev.Line
	name := p.expect(token.IDENT, "expected enum name").Lexeme
	p.expect(token.LBRACE, "expected '{' before enum body")

	e := &ast.EnumStmt{Name: name, Ln: ln}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		vln := p.cur.Line
		vname := p.expect(token.IDENT, "expected variant name").Lexeme
		var val ast.Expr
		if p.match(token.ASSIGN) {
			val = p.expression()
		}
		e.Variants = append(e.Variants, ast.EnumVariant{Name: vname, Value: val, Ln: vln})
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE, "expected '}' after enum body")
	p.Resolver.RegisterEnum(e, p.diags)
	return e
}

func (p *Parser) agentDeclaration() ast.Stmt {
	ln := p.prev.Line
	name := p.expect(token.IDENT, "expected agent name").Lexeme
	p.expect(token.LBRACE, "expected '{' before agent body")

	a := &ast.AgentStmt{Name: name, Ln: ln}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		fln := p.cur.Line
		if p.check(token.FN) {
			p.advance()
			run := p.functionDeclaration("")
			a.Fields = append(a.Fields, ast.AgentField{Name: run.Name, Run: run, Ln: fln})
			continue
		}
		fname := p.expect(token.IDENT, "expected agent field").Lexeme
		p.expect(token.COLON, "expected ':' after field name")
		val := p.expression()
		p.expect(token.SEMICOLON, "expected ';' after field value")
		a.Fields = append(a.Fields, ast.AgentField{Name: fname, Value: val, Ln: fln})
	}
	p.expect(token.RBRACE, "expected '}' after agent body")
	return a
}

package lexer

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/token"
)

func collectKinds(src string) []token.Kind {
	l := New(src)
	var kinds []token.Kind
	for {
		tok := l.NextToken()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	return kinds
}

func TestNextTokenPunctuationAndOperators(t *testing.T) {
	src := "(){}[],.:;->+-*/%=== != < <= > >= !"
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.DOT, token.COLON, token.SEMICOLON,
		token.ARROW, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.ASSIGN, token.NE, token.LT, token.LE, token.GT, token.GE, token.BANG, token.EOF,
	}
	got := collectKinds(src)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d tokens %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNextTokenKeywordsVsIdentifiers(t *testing.T) {
	l := New("let x = fn if else while class")
	kinds := []token.Kind{token.LET, token.IDENT, token.ASSIGN, token.FN, token.IF, token.ELSE, token.WHILE, token.CLASS, token.EOF}
	for i, want := range kinds {
		got := l.NextToken()
		if got.Kind != want {
			t.Fatalf("token %d = %s (%q), want %s", i, got.Kind, got.Lexeme, want)
		}
	}
}

func TestNextTokenNumber(t *testing.T) {
	l := New("42 3.14")
	tok := l.NextToken()
	if tok.Kind != token.NUMBER || tok.Lexeme != "42" {
		t.Fatalf("got %s %q, want NUMBER 42", tok.Kind, tok.Lexeme)
	}
	tok = l.NextToken()
	if tok.Kind != token.NUMBER || tok.Lexeme != "3.14" {
		t.Fatalf("got %s %q, want NUMBER 3.14", tok.Kind, tok.Lexeme)
	}
}

func TestNextTokenString(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.NextToken()
	if tok.Kind != token.STRING {
		t.Fatalf("got %s, want STRING", tok.Kind)
	}
}

func TestNextTokenLineCounting(t *testing.T) {
	src := "let x = 1;\nlet y = 2;\nlet z = 3;"
	l := New(src)
	var lastLine int
	for {
		tok := l.NextToken()
		if tok.Kind == token.EOF {
			lastLine = tok.Line
			break
		}
	}
	if lastLine != 3 {
		t.Errorf("EOF line = %d, want 3", lastLine)
	}
}

func TestNextTokenUnterminatedStringIsError(t *testing.T) {
	l := New(`"unterminated`)
	tok := l.NextToken()
	if tok.Kind != token.ERROR {
		t.Fatalf("got %s, want ERROR for unterminated string", tok.Kind)
	}
}

func TestNextTokenSkipsComments(t *testing.T) {
	src := "// a comment\nlet x = 1;"
	kinds := collectKinds(src)
	want := []token.Kind{token.LET, token.IDENT, token.ASSIGN, token.NUMBER, token.SEMICOLON, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestNextTokenUnicodeIdentifierBoundary(t *testing.T) {
	// Non-ASCII content inside a string must not desynchronize the scanner
	// from subsequent ASCII tokens.
	src := `"café"; let x = 1;`
	l := New(src)
	tok := l.NextToken()
	if tok.Kind != token.STRING {
		t.Fatalf("got %s, want STRING", tok.Kind)
	}
	tok = l.NextToken()
	if tok.Kind != token.SEMICOLON {
		t.Fatalf("got %s, want SEMICOLON", tok.Kind)
	}
	tok = l.NextToken()
	if tok.Kind != token.LET {
		t.Fatalf("got %s, want LET", tok.Kind)
	}
}

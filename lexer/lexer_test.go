package lexer

import (
	"testing"

	"github.com/flux-lang/flux/token"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
let pi = 3.14;
let add = fn(x, y) { x + y; }
if (5 < 10) { return true; } else { return false; }
10 == 10;
10 != 9;
10 <= 9;
10 >= 9;
true && false;
true || false;
5 |> add(1);
[1 | []];
1..10;
1..=10;
"foobar"
module Foo { let X = 1; }
import Foo.Bar
match x { _ -> 0 }
`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "pi"},
		{token.ASSIGN, "="},
		{token.FLOAT, "3.14"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "add"},
		{token.ASSIGN, "="},
		{token.FUNCTION, "fn"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.INT, "5"},
		{token.LT, "<"},
		{token.INT, "10"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.TRUE, "true"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.INT, "10"},
		{token.EQ, "=="},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.INT, "10"},
		{token.NOT_EQ, "!="},
		{token.INT, "9"},
		{token.SEMICOLON, ";"},
		{token.INT, "10"},
		{token.LTE, "<="},
		{token.INT, "9"},
		{token.SEMICOLON, ";"},
		{token.INT, "10"},
		{token.GTE, ">="},
		{token.INT, "9"},
		{token.SEMICOLON, ";"},
		{token.TRUE, "true"},
		{token.AND, "&&"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.TRUE, "true"},
		{token.OR, "||"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.INT, "5"},
		{token.PIPE, "|>"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.INT, "1"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.CONS, "|"},
		{token.LBRACKET, "["},
		{token.RBRACKET, "]"},
		{token.RBRACKET, "]"},
		{token.SEMICOLON, ";"},
		{token.INT, "1"},
		{token.RANGE, ".."},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.INT, "1"},
		{token.RANGE_EQ, "..="},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.STRING, "foobar"},
		{token.MODULE, "module"},
		{token.IDENT, "Foo"},
		{token.LBRACE, "{"},
		{token.LET, "let"},
		{token.IDENT, "X"},
		{token.ASSIGN, "="},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.IMPORT, "import"},
		{token.IDENT, "Foo"},
		{token.DOT, "."},
		{token.IDENT, "Bar"},
		{token.MATCH, "match"},
		{token.IDENT, "x"},
		{token.LBRACE, "{"},
		{token.IDENT, "_"},
		{token.ARROW, "->"},
		{token.INT, "0"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tk := l.NextToken()
		if tk.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tk.Type, tk.Literal)
		}
		if tk.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.expectedLiteral, tk.Literal)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tk := l.NextToken()
	if tk.Type != token.UNTERMINATED_STRING {
		t.Fatalf("expected UNTERMINATED_STRING, got %s", tk.Type)
	}
}

func TestInterpolatedString(t *testing.T) {
	l := New(`"hi #{name}!"`)

	tk := l.NextToken()
	if tk.Type != token.INTERP_START || tk.Literal != "hi " {
		t.Fatalf("unexpected start token: %+v", tk)
	}

	tk = l.NextToken()
	if tk.Type != token.IDENT || tk.Literal != "name" {
		t.Fatalf("unexpected ident token: %+v", tk)
	}

	tk = l.NextToken()
	if tk.Type != token.INTERP_END || tk.Literal != "!" {
		t.Fatalf("unexpected end token: %+v", tk)
	}
}

func TestTripleQuotedStringStripsIndent(t *testing.T) {
	l := New("\"\"\"\n    line one\n    line two\n    \"\"\"")
	tk := l.NextToken()
	if tk.Type != token.STRING {
		t.Fatalf("expected STRING, got %s: %q", tk.Type, tk.Literal)
	}
	want := "line one\nline two"
	if tk.Literal != want {
		t.Fatalf("got %q want %q", tk.Literal, want)
	}
}

func TestSpansAreEndExclusive(t *testing.T) {
	l := New("abc")
	tk := l.NextToken()
	if tk.Span.Start.Offset != 0 || tk.Span.End.Offset != 3 {
		t.Fatalf("unexpected span: %+v", tk.Span)
	}
}

package parser

import (
	"fmt"
	"testing"

	"github.com/flux-lang/flux/ast"
	"github.com/flux-lang/flux/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	diags := p.Diagnostics()
	if len(diags) == 0 {
		return
	}
	t.Errorf("parser has %d errors", len(diags))
	for _, d := range diags {
		t.Errorf("parser error: %s", d.Message)
	}
	t.FailNow()
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		input           string
		expectedIdent   string
		expectedMutable bool
	}{
		{"let x = 5;", "x", false},
		{"let y = true;", "y", false},
		{"let mut counter = 0;", "counter", true},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		if len(program.Statements) != 1 {
			t.Fatalf("%q: expected 1 statement, got %d", tt.input, len(program.Statements))
		}

		stmt, ok := program.Statements[0].(*ast.LetStatement)
		if !ok {
			t.Fatalf("%q: statement is not *ast.LetStatement, got %T", tt.input, program.Statements[0])
		}
		if stmt.Name.Value != tt.expectedIdent {
			t.Errorf("%q: wrong name. want=%s, got=%s", tt.input, tt.expectedIdent, stmt.Name.Value)
		}
		if stmt.Mutable != tt.expectedMutable {
			t.Errorf("%q: wrong mutability. want=%t, got=%t", tt.input, tt.expectedMutable, stmt.Mutable)
		}
	}
}

func TestReturnStatements(t *testing.T) {
	program := parseProgram(t, "return 5; return add(1, 2);")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	for _, s := range program.Statements {
		if _, ok := s.(*ast.ReturnStatement); !ok {
			t.Errorf("statement is not *ast.ReturnStatement, got %T", s)
		}
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-a * b", "((-a) * b)"},
		{"!-a", "(!(-a))"},
		{"a + b + c", "((a + b) + c)"},
		{"a + b - c", "((a + b) - c)"},
		{"a * b * c", "((a * b) * c)"},
		{"a * b / c", "((a * b) / c)"},
		{"a + b / c", "(a + (b / c))"},
		{"a + b * c + d / e - f", "(((a + (b * c)) + (d / e)) - f)"},
		{"3 + 4; -5 * 5", "(3 + 4)((-5) * 5)"},
		{"5 > 4 == 3 < 4", "((5 > 4) == (3 < 4))"},
		{"3 + 4 * 5 == 3 * 1 + 4 * 5", "((3 + (4 * 5)) == ((3 * 1) + (4 * 5)))"},
		{"true == true", "(true == true)"},
		{"1 + (2 + 3) + 4", "((1 + (2 + 3)) + 4)"},
		{"(5 + 5) * 2", "((5 + 5) * 2)"},
		{"a + add(b * c) + d", "((a + add((b * c))) + d)"},
		{"a && b || c", "((a && b) || c)"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		got := program.String()
		if got != tt.expected {
			t.Errorf("%q: want=%q, got=%q", tt.input, tt.expected, got)
		}
	}
}

func TestIfExpression(t *testing.T) {
	program := parseProgram(t, "if (x < y) { x }")
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is not *ast.ExpressionStatement, got %T", program.Statements[0])
	}
	exp, ok := stmt.Expression.(*ast.IfExpression)
	if !ok {
		t.Fatalf("expression is not *ast.IfExpression, got %T", stmt.Expression)
	}
	if exp.Alternative != nil {
		t.Errorf("expected no alternative, got %+v", exp.Alternative)
	}
}

func TestFunctionLiteralParsing(t *testing.T) {
	program := parseProgram(t, "fn(x, y) { x + y; }")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	fn, ok := stmt.Expression.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expression is not *ast.FunctionLiteral, got %T", stmt.Expression)
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(fn.Parameters))
	}
	if fn.Parameters[0].Value != "x" || fn.Parameters[1].Value != "y" {
		t.Errorf("wrong parameter names: %v", fn.Parameters)
	}
}

func TestCallExpressionParsing(t *testing.T) {
	program := parseProgram(t, "add(1, 2 * 3, 4 + 5);")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expression is not *ast.CallExpression, got %T", stmt.Expression)
	}
	ident, ok := call.Function.(*ast.Identifier)
	if !ok || ident.Value != "add" {
		t.Fatalf("wrong call target: %+v", call.Function)
	}
	if len(call.Arguments) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(call.Arguments))
	}
}

func TestMatchExpressionParsing(t *testing.T) {
	program := parseProgram(t, `
		match (xs) {
			[] -> 0;
			[hd | tl] -> hd;
		}
	`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	match, ok := stmt.Expression.(*ast.MatchExpression)
	if !ok {
		t.Fatalf("expression is not *ast.MatchExpression, got %T", stmt.Expression)
	}
	if len(match.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(match.Arms))
	}
	if _, ok := match.Arms[0].Pattern.(*ast.EmptyListPattern); !ok {
		t.Errorf("expected first arm pattern to be EmptyListPattern, got %T", match.Arms[0].Pattern)
	}
	if _, ok := match.Arms[1].Pattern.(*ast.ConsPattern); !ok {
		t.Errorf("expected second arm pattern to be ConsPattern, got %T", match.Arms[1].Pattern)
	}
}

func TestModuleStatementParsing(t *testing.T) {
	program := parseProgram(t, `
		module Math {
			let PI = 3;
		}
	`)
	mod, ok := program.Statements[0].(*ast.ModuleStatement)
	if !ok {
		t.Fatalf("statement is not *ast.ModuleStatement, got %T", program.Statements[0])
	}
	if mod.Name != "Math" {
		t.Errorf("wrong module name: %s", mod.Name)
	}
	if len(mod.Body.Statements) != 1 {
		t.Fatalf("expected 1 statement in module body, got %d", len(mod.Body.Statements))
	}
}

func TestAssignStatementParsing(t *testing.T) {
	program := parseProgram(t, "x = 5;")
	stmt, ok := program.Statements[0].(*ast.AssignStatement)
	if !ok {
		t.Fatalf("statement is not *ast.AssignStatement, got %T", program.Statements[0])
	}
	if stmt.Target.Value != "x" {
		t.Errorf("wrong assignment target: %s", stmt.Target.Value)
	}
}

func ExampleParser_errorRecovery() {
	l := lexer.New("let = 5;")
	p := New(l)
	p.ParseProgram()
	fmt.Println(len(p.Diagnostics()) > 0)
	// Output: true
}

package constant

import (
	"strings"
	"testing"

	"github.com/flux-lang/flux/ast"
	"github.com/flux-lang/flux/diag"
	"github.com/flux-lang/flux/lexer"
	"github.com/flux-lang/flux/object"
	"github.com/flux-lang/flux/parser"
)

func moduleBody(t *testing.T, input string) []ast.Statement {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Diagnostics()) != 0 {
		t.Fatalf("parser errors for %q: %v", input, p.Diagnostics())
	}
	return program.Statements
}

func TestAnalyzeOrdersByDependency(t *testing.T) {
	body := moduleBody(t, `
		let TAU = PI * 2;
		let PI = 3;
	`)

	a := NewAnalyzer()
	mod, diags := a.Analyze("Math", body)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if mod.Order[0] != "PI" || mod.Order[1] != "TAU" {
		t.Errorf("expected PI before TAU, got order=%v", mod.Order)
	}

	tau, ok := mod.Values["TAU"].(*object.Integer)
	if !ok || tau.Value != 6 {
		t.Errorf("expected TAU=6, got %+v", mod.Values["TAU"])
	}

	qualified, ok := a.Qualified["Math.PI"].(*object.Integer)
	if !ok || qualified.Value != 3 {
		t.Errorf("expected Math.PI=3 in the qualified table, got %+v", a.Qualified["Math.PI"])
	}
}

func TestAnalyzeDetectsCircularDependency(t *testing.T) {
	body := moduleBody(t, `
		let A = B;
		let B = A;
	`)

	a := NewAnalyzer()
	_, diags := a.Analyze("Broken", body)
	if !diags.HasErrors() {
		t.Fatal("expected a circular dependency diagnostic")
	}
	if diags[0].Code != diag.CodeCircularConstant {
		t.Errorf("expected code %s, got %s", diag.CodeCircularConstant, diags[0].Code)
	}
	if !strings.Contains(diags[0].Message, "'Broken'") {
		t.Errorf("expected the module name in the diagnostic, got %q", diags[0].Message)
	}
}

func TestAnalyzeRejectsDuplicateBinding(t *testing.T) {
	body := moduleBody(t, `
		let PI = 3;
		let PI = 4;
	`)

	a := NewAnalyzer()
	_, diags := a.Analyze("Math", body)
	if !diags.HasErrors() {
		t.Fatal("expected a duplicate-constant diagnostic")
	}
	if diags[0].Code != diag.CodeDuplicateGlobal {
		t.Errorf("expected code %s, got %s", diag.CodeDuplicateGlobal, diags[0].Code)
	}
}

func TestAnalyzeRejectsNonConstantExpression(t *testing.T) {
	body := moduleBody(t, `
		let X = fn() { 1 };
	`)

	a := NewAnalyzer()
	_, diags := a.Analyze("Bad", body)
	if !diags.HasErrors() {
		t.Fatal("expected a non-constant-expression diagnostic")
	}
	if diags[0].Code != diag.CodeNonConstantExpr {
		t.Errorf("expected code %s, got %s", diag.CodeNonConstantExpr, diags[0].Code)
	}
}

func TestAnalyzeShortCircuitsBooleanOperators(t *testing.T) {
	body := moduleBody(t, `
		let A = false && (1 / 0 == 0);
		let B = true || (1 / 0 == 0);
	`)

	a := NewAnalyzer()
	mod, diags := a.Analyze("Logic", body)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	av, ok := mod.Values["A"].(*object.Boolean)
	if !ok || av.Value != false {
		t.Errorf("expected A=false, got %+v", mod.Values["A"])
	}
	bv, ok := mod.Values["B"].(*object.Boolean)
	if !ok || bv.Value != true {
		t.Errorf("expected B=true, got %+v", mod.Values["B"])
	}
}

func TestAnalyzeArrayAndHashLiterals(t *testing.T) {
	body := moduleBody(t, `
		let XS = [1, 2, 3];
		let H = {"a": 1};
	`)

	a := NewAnalyzer()
	mod, diags := a.Analyze("Data", body)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	arr, ok := mod.Values["XS"].(*object.Array)
	if !ok || len(arr.Elements) != 3 {
		t.Errorf("expected a 3-element array, got %+v", mod.Values["XS"])
	}

	h, ok := mod.Values["H"].(*object.Hash)
	if !ok || h.Len() != 1 {
		t.Errorf("expected a 1-entry hash, got %+v", mod.Values["H"])
	}
}

package flux

import "testing"

func TestRunREPLLineCallsABuiltinOnTheFirstLine(t *testing.T) {
	session := NewSession()

	result, diags := RunREPLLine(`len("flux")`, session)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if result.Inspect() != "4" {
		t.Errorf("expected len(\"flux\") == 4, got %s", result.Inspect())
	}
}

func TestRunREPLLineSeesBindingsFromPriorLines(t *testing.T) {
	session := NewSession()

	if _, diags := RunREPLLine("let x = 21;", session); diags.HasErrors() {
		t.Fatalf("unexpected diagnostics on first line: %v", diags)
	}

	result, diags := RunREPLLine("x * 2;", session)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics on second line: %v", diags)
	}
	if result.Inspect() != "42" {
		t.Errorf("expected x * 2 == 42, got %s", result.Inspect())
	}
}

func TestRunREPLLineReportsACompileDiagnostic(t *testing.T) {
	session := NewSession()

	_, diags := RunREPLLine("undefined_name;", session)
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic referencing an undefined variable")
	}
}

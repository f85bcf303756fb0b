package compiler

import (
	"fmt"
	"testing"

	"github.com/flux-lang/flux/ast"
	"github.com/flux-lang/flux/code"
	"github.com/flux-lang/flux/diag"
	"github.com/flux-lang/flux/lexer"
	"github.com/flux-lang/flux/object"
	"github.com/flux-lang/flux/parser"
)

type compilerTestCase struct {
	input                string
	expectedConstants    []any
	expectedInstructions []code.Instructions
}

func parse(input string) *ast.Program {
	l := lexer.New(input)
	p := parser.New(l)
	return p.ParseProgram()
}

func runCompilerTests(t *testing.T, tests []compilerTestCase) {
	t.Helper()
	for _, tt := range tests {
		program := parse(tt.input)

		comp := New()
		if err := comp.Compile(program); err != nil {
			t.Fatalf("compiler error for %q: %s", tt.input, err)
		}

		bytecode := comp.Bytecode()

		if err := testInstructions(tt.expectedInstructions, bytecode.Instructions); err != nil {
			t.Errorf("%q: %s", tt.input, err)
		}
		if err := testConstants(tt.expectedConstants, bytecode.Constants); err != nil {
			t.Errorf("%q: %s", tt.input, err)
		}
	}
}

func concatInstructions(s []code.Instructions) code.Instructions {
	out := code.Instructions{}
	for _, ins := range s {
		out = append(out, ins...)
	}
	return out
}

func testInstructions(expected []code.Instructions, actual code.Instructions) error {
	concatted := concatInstructions(expected)

	if len(actual) != len(concatted) {
		return fmt.Errorf("wrong instructions length.\nwant=%q\ngot =%q", concatted, actual)
	}
	for i, ins := range concatted {
		if actual[i] != ins {
			return fmt.Errorf("wrong instruction at %d.\nwant=%q\ngot =%q", i, concatted, actual)
		}
	}
	return nil
}

func testConstants(expected []any, actual []object.Object) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("wrong number of constants. want=%d, got=%d", len(expected), len(actual))
	}

	for i, constant := range expected {
		switch constant := constant.(type) {
		case int:
			integer, ok := actual[i].(*object.Integer)
			if !ok {
				return fmt.Errorf("constant %d is not Integer, got %T", i, actual[i])
			}
			if integer.Value != int64(constant) {
				return fmt.Errorf("constant %d has wrong value. want=%d, got=%d", i, constant, integer.Value)
			}
		case string:
			str, ok := actual[i].(*object.String)
			if !ok {
				return fmt.Errorf("constant %d is not String, got %T", i, actual[i])
			}
			if str.Value != constant {
				return fmt.Errorf("constant %d has wrong value. want=%q, got=%q", i, constant, str.Value)
			}
		case []code.Instructions:
			fn, ok := actual[i].(*object.CompiledFunction)
			if !ok {
				return fmt.Errorf("constant %d is not CompiledFunction, got %T", i, actual[i])
			}
			if err := testInstructions(constant, fn.Instructions); err != nil {
				return fmt.Errorf("constant %d: %w", i, err)
			}
		default:
			return fmt.Errorf("unhandled constant type %T at %d", constant, i)
		}
	}
	return nil
}

func TestIntegerArithmeticCompilation(t *testing.T) {
	runCompilerTests(t, []compilerTestCase{
		{
			input:             "1 + 2",
			expectedConstants: []any{1, 2},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpAdd),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "1; 2",
			expectedConstants: []any{1, 2},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpPop),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpPop),
			},
		},
	})
}

func TestBooleanExpressionsCompilation(t *testing.T) {
	runCompilerTests(t, []compilerTestCase{
		{
			input:             "true",
			expectedConstants: []any{},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpTrue),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "1 > 2",
			expectedConstants: []any{1, 2},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpGreaterThan),
				code.Make(code.OpPop),
			},
		},
	})
}

func TestGlobalLetStatements(t *testing.T) {
	runCompilerTests(t, []compilerTestCase{
		{
			input:             "let one = 1; let two = 2;",
			expectedConstants: []any{1, 2},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpSetGlobal, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpSetGlobal, 1),
			},
		},
		{
			input:             "let one = 1; one;",
			expectedConstants: []any{1},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpSetGlobal, 0),
				code.Make(code.OpGetGlobal, 0),
				code.Make(code.OpPop),
			},
		},
	})
}

func TestStringExpressionsCompilation(t *testing.T) {
	runCompilerTests(t, []compilerTestCase{
		{
			input:             `"flux"`,
			expectedConstants: []any{"flux"},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpPop),
			},
		},
		{
			input:             `"flu" + "x"`,
			expectedConstants: []any{"flu", "x"},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpAdd),
				code.Make(code.OpPop),
			},
		},
	})
}

func TestArrayLiteralsCompilation(t *testing.T) {
	runCompilerTests(t, []compilerTestCase{
		{
			input:             "[]",
			expectedConstants: []any{},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpEmptyList),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "[1, 2, 3]",
			expectedConstants: []any{1, 2, 3},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpConstant, 2),
				code.Make(code.OpArray, 3),
				code.Make(code.OpPop),
			},
		},
	})
}

func TestConditionalsCompilation(t *testing.T) {
	runCompilerTests(t, []compilerTestCase{
		{
			input:             `if (true) { 10 }; 3333;`,
			expectedConstants: []any{10, 3333},
			expectedInstructions: []code.Instructions{
				// 0000
				code.Make(code.OpTrue),
				// 0001
				code.Make(code.OpJumpNotTruthy, 10),
				// 0004
				code.Make(code.OpConstant, 0),
				// 0007
				code.Make(code.OpJump, 11),
				// 0010
				code.Make(code.OpNone),
				// 0011
				code.Make(code.OpPop),
				// 0012
				code.Make(code.OpConstant, 1),
				// 0015
				code.Make(code.OpPop),
			},
		},
	})
}

func TestFunctionCompilation(t *testing.T) {
	runCompilerTests(t, []compilerTestCase{
		{
			input: `fn() { return 5 + 10 }`,
			expectedConstants: []any{
				5, 10,
				[]code.Instructions{
					code.Make(code.OpConstant, 0),
					code.Make(code.OpConstant, 1),
					code.Make(code.OpAdd),
					code.Make(code.OpReturnValue),
				},
			},
			expectedInstructions: []code.Instructions{
				code.Make(code.OpClosure, 2, 0),
				code.Make(code.OpPop),
			},
		},
	})
}

func TestCompilerScopes(t *testing.T) {
	comp := New()
	if comp.scopeIndex != 0 {
		t.Errorf("scopeIndex wrong. got=%d, want=%d", comp.scopeIndex, 0)
	}

	comp.emit(code.OpMul)

	comp.enterScope()
	if comp.scopeIndex != 1 {
		t.Errorf("scopeIndex wrong. got=%d, want=%d", comp.scopeIndex, 1)
	}

	comp.emit(code.OpSub)
	if len(comp.scopes[comp.scopeIndex].instructions) != 1 {
		t.Errorf("instructions length wrong. got=%d", len(comp.scopes[comp.scopeIndex].instructions))
	}

	last := comp.scopes[comp.scopeIndex].lastInstruction
	if last.Opcode != code.OpSub {
		t.Errorf("lastInstruction.Opcode wrong. got=%d, want=%d", last.Opcode, code.OpSub)
	}

	comp.leaveScope()
	if comp.scopeIndex != 0 {
		t.Errorf("scopeIndex wrong. got=%d, want=%d", comp.scopeIndex, 0)
	}

	comp.emit(code.OpAdd)
	if len(comp.scopes[comp.scopeIndex].instructions) != 2 {
		t.Errorf("instructions length wrong. got=%d", len(comp.scopes[comp.scopeIndex].instructions))
	}

	last = comp.scopes[comp.scopeIndex].lastInstruction
	if last.Opcode != code.OpAdd {
		t.Errorf("lastInstruction.Opcode wrong. got=%d, want=%d", last.Opcode, code.OpAdd)
	}
}

func TestModuleConstantFolding(t *testing.T) {
	input := `
		module Math {
			let PI = 3;
			let TAU = PI * 2;
		}
		Math.TAU;
	`
	program := parse(input)

	comp := New()
	if err := comp.Compile(program); err != nil {
		t.Fatalf("compiler error: %s", err)
	}

	bytecode := comp.Bytecode()
	for _, constant := range bytecode.Constants {
		if fn, ok := constant.(*object.CompiledFunction); ok {
			t.Fatalf("unexpected function constant in a module-only program: %+v", fn)
		}
	}

	found := false
	for _, constant := range bytecode.Constants {
		if i, ok := constant.(*object.Integer); ok && i.Value == 6 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a folded constant of value 6 (PI * 2), got constants=%v", bytecode.Constants)
	}
}

func TestCircularModuleConstantIsADiagnostic(t *testing.T) {
	input := `
		module Broken {
			let A = B;
			let B = A;
		}
	`
	program := parse(input)

	comp := New()
	err := comp.Compile(program)
	if err == nil {
		t.Fatal("expected a compile error for a circular module constant")
	}

	var found bool
	for _, d := range comp.Diagnostics() {
		if d.Code == diag.CodeCircularConstant {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s diagnostic, got %v", diag.CodeCircularConstant, comp.Diagnostics())
	}
}

func TestAssignToOuterScopeFails(t *testing.T) {
	input := `
		let make = fn() {
			let x = 1;
			fn() { x = 2; };
		};
	`
	program := parse(input)

	comp := New()
	if err := comp.Compile(program); err == nil {
		t.Fatal("expected a compile error assigning to a free variable from an inner closure")
	}
}

// Package flux is the external-facing entry point for the language: compile
// source text to bytecode, run a compiled program to completion, or drive a
// single incremental REPL line against persistent compiler and VM state.
//
// Everything under this module's internal packages (lexer, parser,
// compiler, vm, object) is implementation; callers embedding Flux only need
// the three functions in this file.
package flux

import (
	"github.com/flux-lang/flux/compiler"
	"github.com/flux-lang/flux/diag"
	"github.com/flux-lang/flux/lexer"
	"github.com/flux-lang/flux/object"
	"github.com/flux-lang/flux/parser"
	"github.com/flux-lang/flux/vm"
)

// Program is a compiled, ready-to-run unit of bytecode.
type Program struct {
	Bytecode *compiler.Bytecode
}

// Compile lexes, parses and compiles source text into a [Program]. The
// moduleName parameter is accepted but not used; an empty string is fine
// for a one-off script. Compile returns every diagnostic collected from the
// parser and compiler, not just the first.
func Compile(source, moduleName string) (*Program, diag.Diagnostics) {
	_ = moduleName

	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Diagnostics()) > 0 {
		return nil, p.Diagnostics()
	}

	c := compiler.New()
	if err := c.Compile(program); err != nil {
		diags := c.Diagnostics()
		if len(diags) == 0 {
			diags = diag.Diagnostics{diag.New(diag.CodeUnexpectedToken, err.Error(), program.Span())}
		}
		return nil, diags
	}
	if diags := c.Diagnostics(); len(diags) > 0 {
		return nil, diags
	}

	return &Program{Bytecode: c.Bytecode()}, nil
}

// Run drives a fresh VM over a compiled program to completion and returns
// the last popped stack value, the same "value of the program" convention
// the REPL uses to display a result. inputGlobals pre-seeds global slots
// (by index) before execution starts; pass nil for none.
func Run(program *Program, inputGlobals []object.Object) (object.Object, error) {
	machine := vm.New(program.Bytecode)
	if inputGlobals != nil {
		copy(machine.Globals(), inputGlobals)
	}
	return machine.Run()
}

// Session holds the symbol table, constant pool and global slots that
// persist across successive RunREPLLine calls, so each line sees every
// binding established by the lines before it.
type Session struct {
	symbolTable *compiler.SymbolTable
	constants   []object.Object
	globals     []object.Object
}

// NewSession starts a fresh, empty incremental compilation session. The
// symbol table is seeded with every built-in, the same way New() seeds a
// one-shot compiler, so a REPL line can call len/map/fold/etc. from its
// first line onward.
func NewSession() *Session {
	symbolTable := compiler.NewSymbolTable()
	for i, b := range object.Builtins {
		symbolTable.DefineBuiltin(i, b.Name)
	}
	return &Session{
		symbolTable: symbolTable,
		constants:   []object.Object{},
		globals:     make([]object.Object, vm.GlobalsSize),
	}
}

// RunREPLLine compiles source against the session's existing symbol table
// and constant pool, then runs it against the session's persistent global
// slots, returning the value the line produced. A compile failure leaves
// the session state unchanged.
func RunREPLLine(source string, session *Session) (object.Object, diag.Diagnostics) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Diagnostics()) > 0 {
		return nil, p.Diagnostics()
	}

	c := compiler.NewWithState(session.symbolTable, session.constants)
	if err := c.Compile(program); err != nil {
		diags := c.Diagnostics()
		if len(diags) == 0 {
			diags = diag.Diagnostics{diag.New(diag.CodeUnexpectedToken, err.Error(), program.Span())}
		}
		return nil, diags
	}
	if diags := c.Diagnostics(); len(diags) > 0 {
		return nil, diags
	}

	bytecode := c.Bytecode()
	session.constants = bytecode.Constants

	machine := vm.NewWithGlobalsStore(bytecode, session.globals)
	result, err := machine.Run()
	if err != nil {
		rerr, _ := err.(*vm.RuntimeError)
		span := program.Span()
		if rerr != nil {
			span = rerr.Position
		}
		msg := err.Error()
		if rerr != nil {
			msg = rerr.Message
		}
		return nil, diag.Diagnostics{diag.New(diag.CodeUnexpectedToken, msg, span)}
	}
	session.globals = machine.Globals()
	return result, nil
}

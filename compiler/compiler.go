// Package compiler transforms abstract syntax tree (AST) nodes into bytecode instructions.
//
// This package provides a compiler that traverses an AST produced by the parser and generates
// bytecode instructions that can be executed by a virtual machine.
// The compiler handles expression evaluation, control flow, variable scoping,
// function compilation, pattern matching, module constants, and constant management.
//
// # Architecture
//
// The compiler uses a stack-based bytecode generation approach with support for:
//
//   - Multiple compilation scopes for nested functions and closures
//   - Symbol tables for variable resolution (local, global, free, and builtin variables)
//   - Constant pooling for literals and compiled functions
//   - Module constant folding: `let` bindings inside a `module {}` block are
//     evaluated at compile time by the constant package and never touch a
//     runtime global slot
//   - Optimizations such as replacing tail OpPop with OpReturnValue
//
// # Compilation Process
//
// The compiler works by recursively traversing the AST and emitting bytecode instructions:
//
//  1. Expressions are compiled to push their results onto the stack
//  2. Operators pop operands from the stack and push results
//  3. Variables are resolved through symbol tables and compiled to load/store instructions
//  4. Control flow (if/match/&&/||) is compiled using conditional and unconditional jumps
//  5. Functions are compiled in separate scopes and stored as constants
//  6. Closures capture free variables from enclosing scopes
//  7. Module bodies fold their `let` bindings into constants and compile the
//     rest in place, with identifier resolution falling back to the module's
//     qualified-name table
//
// # Scoping
//
// The compiler maintains a stack of compilation scopes to support nested functions and closures.
// Each scope has its own instruction sequence and tracks the last two emitted instructions for
// optimization purposes.
// Symbol tables manage variable bindings and support lexical scoping with
// proper closure semantics.
package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/flux-lang/flux/ast"
	"github.com/flux-lang/flux/code"
	"github.com/flux-lang/flux/constant"
	"github.com/flux-lang/flux/diag"
	"github.com/flux-lang/flux/object"
	"github.com/flux-lang/flux/token"
)

// Compiler is responsible for compiling an AST into bytecode instructions and managing compilation states.
type Compiler struct {
	// Holds the collection of constant values encountered during compilation.
	constants []object.Object

	// symbolTable manages variable bindings and symbol resolution.
	symbolTable *SymbolTable

	// Tracks the current compilation scope and its instruction sequence.
	scopes []CompilationScope

	// scopeIndex tracks the current compilation scope.
	scopeIndex int

	// analyzer runs module constant analysis, shared across every module
	// block compiled in this run so qualified names compose.
	analyzer *constant.Analyzer

	// moduleMembers maps a fully qualified name ("Flow.Math.PI",
	// "Flow.Math.circle") to its folded compile-time value: a literal
	// object.Object for constants, or a zero-free-variable *object.Closure
	// for functions declared directly inside a module body.
	moduleMembers map[string]object.Object

	// namespaces maps a locally visible short name (a module declared in
	// this scope, or an import's local name) to the fully qualified module
	// path it names.
	namespaces map[string]string

	// knownNamespaces is the set of every fully qualified module path ever
	// declared, used to tell a namespace segment apart from a leaf member
	// while resolving a chained member expression.
	knownNamespaces map[string]bool

	// moduleStack holds the short names of the module blocks currently
	// being compiled, innermost last, used to qualify bare identifiers that
	// fall back to the enclosing module's constant table.
	moduleStack []string

	// syntheticCounter numbers the hidden local/global slots the compiler
	// introduces for match subjects and intermediate pattern values.
	syntheticCounter int

	// diags accumulates every diagnostic raised while compiling, including
	// ones surfaced as warnings by the module constant analyzer.
	diags diag.Diagnostics

	// currentSpan is the source span of the AST node currently being
	// compiled, recorded against each emitted instruction's offset so the
	// VM can report a source position on a runtime error.
	currentSpan token.Span
}

// Bytecode represents the compiled instructions and constants for a program or function.
type Bytecode struct {

	// Holds the compiled bytecode instructions for a program or function.
	Instructions code.Instructions

	// Contains the constant values used in the bytecode, represented as a slice of objects.
	Constants []object.Object

	// Positions maps an instruction's starting offset to the source span it
	// was compiled from, for VM tracing and runtime error reporting.
	Positions map[int]token.Span
}

// EmittedInstruction represents a bytecode instruction that has been emitted during compilation.
type EmittedInstruction struct {

	// Opcode represents the specific operation code of the emitted bytecode instruction.
	Opcode code.Opcode

	// Position represents the index or location in the instructions' slice where the bytecode instruction is stored.
	Position int
}

// CompilationScope represents a single layer of compilation containing instructions and metadata about recently emitted instructions.
type CompilationScope struct {

	// Represents the sequence of bytecode instructions for the current compilation scope.
	instructions code.Instructions

	// lastInstruction tracks the most recently emitted bytecode instruction within the current compilation scope.
	lastInstruction EmittedInstruction

	// previousInstruction tracks the second most recently emitted bytecode instruction in the current compilation scope.
	previousInstruction EmittedInstruction

	// positions maps this scope's instruction offsets to source spans.
	positions map[int]token.Span
}

// newCompilationScope creates a new compilation scope with an empty instruction sequence.
func newCompilationScope() CompilationScope {
	return CompilationScope{
		instructions:        code.Instructions{},
		lastInstruction:     EmittedInstruction{},
		previousInstruction: EmittedInstruction{},
		positions:           make(map[int]token.Span),
	}
}

// New creates a new compiler instance.
func New() *Compiler {
	symbolTable := NewSymbolTable()
	for i, v := range object.Builtins {
		symbolTable.DefineBuiltin(i, v.Name)
	}

	return &Compiler{
		constants:       []object.Object{},
		symbolTable:     symbolTable,
		scopes:          []CompilationScope{newCompilationScope()},
		scopeIndex:      0,
		analyzer:        constant.NewAnalyzer(),
		moduleMembers:   make(map[string]object.Object),
		namespaces:      make(map[string]string),
		knownNamespaces: make(map[string]bool),
	}
}

// NewWithState creates a new compiler instance with a pre-defined symbol table and constant pool,
// used by the REPL to persist global bindings, module members, and namespaces across lines.
func NewWithState(s *SymbolTable, constants []object.Object) *Compiler {
	c := New()
	c.symbolTable = s
	c.constants = constants
	return c
}

// Diagnostics returns every diagnostic raised during compilation so far.
func (c *Compiler) Diagnostics() diag.Diagnostics {
	return c.diags
}

// fail records d and returns it as the error to propagate up through Compile.
func (c *Compiler) fail(d diag.Diagnostic) error {
	c.diags = append(c.diags, d)
	return d
}

// qualify joins a module prefix and a short name, leaving name bare when
// prefix is empty. Mirrors constant.qualify so the two packages agree on the
// same qualified-name scheme.
func (c *Compiler) qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// currentModulePrefix joins the module stack into the qualified prefix of
// whichever module body is currently being compiled, "" at the top level.
func (c *Compiler) currentModulePrefix() string {
	return strings.Join(c.moduleStack, ".")
}

// Compile traverses the given AST node and translates it into bytecode instructions for interpretation.
func (c *Compiler) Compile(node ast.Node) error {
	if node != nil {
		c.currentSpan = node.Span()
	}
	switch node := node.(type) {
	case *ast.Program:
		for _, s := range node.Statements {
			if err := c.Compile(s); err != nil {
				return err
			}
		}

	case *ast.ExpressionStatement:
		if err := c.Compile(node.Expression); err != nil {
			return err
		}
		c.emit(code.OpPop)

	case *ast.InfixExpression:
		return c.compileInfix(node)

	case *ast.IntegerLiteral:
		c.emitConstant(&object.Integer{Value: node.Value})

	case *ast.FloatLiteral:
		c.emitConstant(&object.Float{Value: node.Value})

	case *ast.Boolean:
		if node.Value {
			c.emit(code.OpTrue)
		} else {
			c.emit(code.OpFalse)
		}

	case *ast.NoneLiteral:
		c.emit(code.OpNone)

	case *ast.SomeExpression:
		if err := c.Compile(node.Value); err != nil {
			return err
		}
		c.emit(code.OpSome)

	case *ast.LeftExpression:
		if err := c.Compile(node.Value); err != nil {
			return err
		}
		c.emit(code.OpLeft)

	case *ast.RightExpression:
		if err := c.Compile(node.Value); err != nil {
			return err
		}
		c.emit(code.OpRight)

	case *ast.PrefixExpression:
		if err := c.Compile(node.Right); err != nil {
			return err
		}
		switch node.Operator {
		case "!":
			c.emit(code.OpBang)
		case "-":
			c.emit(code.OpMinus)
		default:
			return c.fail(diag.New(diag.CodeUnexpectedToken, fmt.Sprintf("unknown operator %s", node.Operator), node.Span()))
		}

	case *ast.IfExpression:
		return c.compileIf(node)

	case *ast.MatchExpression:
		return c.compileMatch(node)

	case *ast.BlockStatement:
		for _, s := range node.Statements {
			if err := c.Compile(s); err != nil {
				return err
			}
		}

	case *ast.LetStatement:
		return c.compileLet(node)

	case *ast.LetPatternStatement:
		return c.compileLetPattern(node)

	case *ast.AssignStatement:
		return c.compileAssign(node)

	case *ast.Identifier:
		return c.compileIdentifier(node)

	case *ast.MemberExpression:
		return c.compileMember(node)

	case *ast.StringLiteral:
		c.emitConstant(&object.String{Value: node.Value})

	case *ast.InterpolatedStringLiteral:
		return c.compileInterpolatedString(node)

	case *ast.ConsExpression:
		if err := c.Compile(node.Head); err != nil {
			return err
		}
		if err := c.Compile(node.Tail); err != nil {
			return err
		}
		c.emit(code.OpCons)

	case *ast.EmptyListExpression:
		c.emit(code.OpEmptyList)

	case *ast.ArrayLiteral:
		for _, el := range node.Elements {
			if err := c.Compile(el); err != nil {
				return err
			}
		}
		c.emitCountedOp(code.OpArray, code.OpArrayLong, len(node.Elements))

	case *ast.HashLiteral:
		for _, p := range node.Pairs {
			if err := c.Compile(p.Key); err != nil {
				return err
			}
			if err := c.Compile(p.Value); err != nil {
				return err
			}
		}
		c.emitCountedOp(code.OpHash, code.OpHashLong, len(node.Pairs)*2)

	case *ast.IndexExpression:
		if err := c.Compile(node.Left); err != nil {
			return err
		}
		if err := c.Compile(node.Index); err != nil {
			return err
		}
		c.emit(code.OpIndex)

	case *ast.FunctionLiteral:
		fn, freeSymbols, err := c.compileFunctionBody(node)
		if err != nil {
			return err
		}
		for _, s := range freeSymbols {
			c.loadSymbol(s)
		}
		c.emitClosure(c.addConstant(fn), len(freeSymbols))

	case *ast.FunctionStatement:
		return c.compileFunctionStatement(node)

	case *ast.ModuleStatement:
		return c.compileModule(node)

	case *ast.ImportStatement:
		return c.compileImport(node)

	case *ast.ReturnStatement:
		if err := c.Compile(node.ReturnValue); err != nil {
			return err
		}
		c.emit(code.OpReturnValue)

	case *ast.CallExpression:
		if err := c.Compile(node.Function); err != nil {
			return err
		}
		for _, arg := range node.Arguments {
			if err := c.Compile(arg); err != nil {
				return err
			}
		}
		c.emit(code.OpCall, len(node.Arguments))
	}
	return nil
}

// compileInfix lowers binary operators, including the comparison swap for
// `<`/`<=` (compiled as the operand-swapped form of `>`/`>=`) and the
// short-circuiting forms of `&&`/`||`.
func (c *Compiler) compileInfix(node *ast.InfixExpression) error {
	switch node.Operator {
	case "&&", "||":
		return c.compileLogical(node)
	case "<", "<=":
		if err := c.Compile(node.Right); err != nil {
			return err
		}
		if err := c.Compile(node.Left); err != nil {
			return err
		}
		if node.Operator == "<" {
			c.emit(code.OpGreaterThan)
		} else {
			c.emit(code.OpGreaterEqual)
		}
		return nil
	}

	if err := c.Compile(node.Left); err != nil {
		return err
	}
	if err := c.Compile(node.Right); err != nil {
		return err
	}

	switch node.Operator {
	case "+":
		c.emit(code.OpAdd)
	case "-":
		c.emit(code.OpSub)
	case "*":
		c.emit(code.OpMul)
	case "/":
		c.emit(code.OpDiv)
	case "%":
		c.emit(code.OpMod)
	case ">":
		c.emit(code.OpGreaterThan)
	case ">=":
		c.emit(code.OpGreaterEqual)
	case "==":
		c.emit(code.OpEqual)
	case "!=":
		c.emit(code.OpNotEqual)
	default:
		return c.fail(diag.New(diag.CodeUnexpectedToken, fmt.Sprintf("unknown operator %s", node.Operator), node.Span()))
	}
	return nil
}

// compileLogical lowers `&&`/`||` so the right operand is never evaluated
// once the left one already decides the result.
func (c *Compiler) compileLogical(node *ast.InfixExpression) error {
	if err := c.Compile(node.Left); err != nil {
		return err
	}

	var shortCircuitJump int
	if node.Operator == "&&" {
		shortCircuitJump = c.emit(code.OpJumpNotTruthy, 9999)
	} else {
		shortCircuitJump = c.emit(code.OpJumpTruthy, 9999)
	}

	if err := c.Compile(node.Right); err != nil {
		return err
	}
	endJump := c.emit(code.OpJump, 9999)

	c.changeOperand(shortCircuitJump, len(c.currentInstructions()))
	if node.Operator == "&&" {
		c.emit(code.OpFalse)
	} else {
		c.emit(code.OpTrue)
	}

	c.changeOperand(endJump, len(c.currentInstructions()))
	return nil
}

// compileIf lowers `if`/`else` using the classic jump-then-patch scheme: an
// absent alternative compiles to OpNone.
func (c *Compiler) compileIf(node *ast.IfExpression) error {
	if err := c.Compile(node.Condition); err != nil {
		return err
	}

	jumpNotTruthyPos := c.emit(code.OpJumpNotTruthy, 9999)
	if err := c.Compile(node.Consequence); err != nil {
		return err
	}
	if c.lastInstructionIs(code.OpPop) {
		c.removeLastPop()
	}

	jumpPos := c.emit(code.OpJump, 9999)
	afterConsequencePos := len(c.currentInstructions())
	c.changeOperand(jumpNotTruthyPos, afterConsequencePos)

	if node.Alternative == nil {
		c.emit(code.OpNone)
	} else {
		if err := c.Compile(node.Alternative); err != nil {
			return err
		}
		if c.lastInstructionIs(code.OpPop) {
			c.removeLastPop()
		}
	}
	afterAlternativePos := len(c.currentInstructions())
	c.changeOperand(jumpPos, afterAlternativePos)
	return nil
}

// compileInterpolatedString stringifies every non-literal part (OpToString)
// and concatenates the parts left to right (OpStringConcat).
func (c *Compiler) compileInterpolatedString(node *ast.InterpolatedStringLiteral) error {
	if len(node.Parts) == 0 {
		c.emitConstant(&object.String{Value: ""})
		return nil
	}
	for i, part := range node.Parts {
		if lit, ok := part.(*ast.StringLiteral); ok {
			c.emitConstant(&object.String{Value: lit.Value})
		} else {
			if err := c.Compile(part); err != nil {
				return err
			}
			c.emit(code.OpToString)
		}
		if i > 0 {
			c.emit(code.OpStringConcat)
		}
	}
	return nil
}

// compileLet compiles a top-level or local `let`/`let mut` as an ordinary
// global or local binding. Module-body `let`s never reach here: ModuleStatement
// compilation strips them out and folds them through the constant analyzer
// instead.
func (c *Compiler) compileLet(node *ast.LetStatement) error {
	if _, exists := c.symbolTable.store[node.Name.Value]; exists && c.symbolTable.Outer == nil {
		return c.fail(diag.New(diag.CodeDuplicateGlobal, fmt.Sprintf("global %q redeclared", node.Name.Value), node.Span()))
	}

	var symbol Symbol
	if node.Mutable {
		symbol = c.symbolTable.DefineMutable(node.Name.Value)
	} else {
		symbol = c.symbolTable.Define(node.Name.Value)
	}
	if err := c.Compile(node.Value); err != nil {
		return err
	}
	if symbol.Scope == GlobalScope {
		c.emit(code.OpSetGlobal, symbol.Index)
	} else {
		c.emit(code.OpSetLocal, symbol.Index)
	}
	return nil
}

// compileAssign compiles `name = value`, rejecting assignment to an
// undeclared name, an immutable (plain `let`) binding, or a variable
// captured from an enclosing function scope.
func (c *Compiler) compileAssign(node *ast.AssignStatement) error {
	symbol, ok := c.symbolTable.Resolve(node.Target.Value)
	if !ok {
		return c.fail(diag.New(diag.CodeUndefinedVariable, fmt.Sprintf("undefined variable %q", node.Target.Value), node.Span()))
	}
	if symbol.Scope == FreeScope {
		return c.fail(diag.New(diag.CodeAssignOuterScope, fmt.Sprintf("cannot assign to %q captured from an outer scope", node.Target.Value), node.Span()))
	}
	if !symbol.Mutable {
		return c.fail(diag.New(diag.CodeImmutableAssign, fmt.Sprintf("cannot assign to immutable binding %q; declare it with `let mut`", node.Target.Value), node.Span()))
	}

	if err := c.Compile(node.Value); err != nil {
		return err
	}
	if symbol.Scope == GlobalScope {
		c.emit(code.OpSetGlobal, symbol.Index)
	} else {
		c.emit(code.OpSetLocal, symbol.Index)
	}
	return nil
}

// compileIdentifier resolves a bare name against the symbol table first,
// then against the qualified-name table of every enclosing module, from
// innermost to outermost, before giving up as undefined.
func (c *Compiler) compileIdentifier(node *ast.Identifier) error {
	if symbol, ok := c.symbolTable.Resolve(node.Value); ok {
		c.loadSymbol(symbol)
		return nil
	}

	for i := len(c.moduleStack); i >= 0; i-- {
		prefix := strings.Join(c.moduleStack[:i], ".")
		if val, found := c.moduleMembers[c.qualify(prefix, node.Value)]; found {
			c.emitConstant(val)
			return nil
		}
	}
	return c.fail(diag.New(diag.CodeUndefinedVariable, fmt.Sprintf("undefined variable %q", node.Value), node.Span()))
}

// resolveQualifiedPath walks a chain of Identifier/MemberExpression nodes
// and reports the fully qualified name it names, if any, and whether that
// name is itself a module namespace (as opposed to a leaf member).
func (c *Compiler) resolveQualifiedPath(expr ast.Expression) (path string, isNamespace bool, ok bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		if prefix, found := c.namespaces[e.Value]; found {
			return prefix, true, true
		}
		return "", false, false
	case *ast.MemberExpression:
		leftPath, leftIsNs, found := c.resolveQualifiedPath(e.Left)
		if !found || !leftIsNs {
			return "", false, false
		}
		full := c.qualify(leftPath, e.Property)
		if c.knownNamespaces[full] {
			return full, true, true
		}
		if _, isMember := c.moduleMembers[full]; isMember {
			return full, false, true
		}
		return "", false, false
	default:
		return "", false, false
	}
}

// compileMember compiles a qualified module member access, such as
// `Flow.Math.PI` or `m.circle`, enforcing the leading-underscore
// private-member rule. Flux has no other form of runtime field access.
func (c *Compiler) compileMember(node *ast.MemberExpression) error {
	path, isNs, ok := c.resolveQualifiedPath(node)
	if !ok {
		return c.fail(diag.New(diag.CodeUndefinedVariable, fmt.Sprintf("undefined module member %q", node.Property), node.Span()))
	}
	if isNs {
		return c.fail(diag.New(diag.CodeUndefinedVariable, fmt.Sprintf("%q names a module, not a value", path), node.Span()))
	}

	if node.IsPrivate() {
		owner := ""
		if idx := strings.LastIndex(path, "."); idx >= 0 {
			owner = path[:idx]
		}
		if c.currentModulePrefix() != owner {
			return c.fail(diag.New(diag.CodePrivateMemberAccess, fmt.Sprintf("%q is private to module %q", node.Property, owner), node.Span()))
		}
	}

	val, found := c.moduleMembers[path]
	if !found {
		return c.fail(diag.New(diag.CodeUndefinedVariable, fmt.Sprintf("undefined module member %q", path), node.Span()))
	}
	c.emitConstant(val)
	return nil
}

// compileModule folds the module's `let` bindings into constants via the
// shared constant analyzer, then compiles every other statement in place,
// with nested functions recorded as qualified module members instead of
// runtime globals.
func (c *Compiler) compileModule(node *ast.ModuleStatement) error {
	prefix := c.qualify(c.currentModulePrefix(), node.Name)
	c.namespaces[node.Name] = prefix
	c.knownNamespaces[prefix] = true

	mod, ds := c.analyzer.Analyze(prefix, node.Body.Statements)
	if ds.HasErrors() {
		c.diags = append(c.diags, ds...)
		return ds
	}
	c.diags = append(c.diags, ds...)
	for _, name := range mod.Order {
		c.moduleMembers[c.qualify(prefix, name)] = mod.Values[name]
	}

	c.moduleStack = append(c.moduleStack, node.Name)
	defer func() { c.moduleStack = c.moduleStack[:len(c.moduleStack)-1] }()

	for _, stmt := range node.Body.Statements {
		if _, isLet := stmt.(*ast.LetStatement); isLet {
			continue
		}
		if err := c.Compile(stmt); err != nil {
			return err
		}
	}
	return nil
}

// compileImport binds the import's local name to its qualified module path,
// rejecting a collision with an existing, differently-targeted binding.
func (c *Compiler) compileImport(node *ast.ImportStatement) error {
	qualified := strings.Join(node.Path, ".")
	local := node.LocalName()
	if existing, found := c.namespaces[local]; found && existing != qualified {
		return c.fail(diag.New(diag.CodeImportCollision, fmt.Sprintf("import %q collides with existing binding for %q", local, existing), node.Span()))
	}
	c.namespaces[local] = qualified
	return nil
}

// compileFunctionStatement compiles `fn name(...) {...}`. Outside a module
// body it behaves like `let name = fn(...) {...}`, binding name in the
// current symbol table. Inside a module body it is never bound as a plain
// global; it is only reachable through the module's qualified name or
// through the bare-name fallback available to sibling code in the same
// module, since it is registered as a module member instead.
func (c *Compiler) compileFunctionStatement(node *ast.FunctionStatement) error {
	lit := ast.NewFunctionLiteral(node.Token, node.Parameters, node.Body, node.Span())
	lit.Name = node.Name

	if len(c.moduleStack) > 0 {
		fn, _, err := c.compileFunctionBody(lit)
		if err != nil {
			return err
		}
		qualified := c.qualify(c.currentModulePrefix(), node.Name)
		c.moduleMembers[qualified] = &object.Closure{Fn: fn, Free: nil}
		return nil
	}

	symbol := c.symbolTable.Define(node.Name)
	fn, freeSymbols, err := c.compileFunctionBody(lit)
	if err != nil {
		return err
	}
	for _, s := range freeSymbols {
		c.loadSymbol(s)
	}
	c.emitClosure(c.addConstant(fn), len(freeSymbols))
	if symbol.Scope == GlobalScope {
		c.emit(code.OpSetGlobal, symbol.Index)
	} else {
		c.emit(code.OpSetLocal, symbol.Index)
	}
	return nil
}

// compileFunctionBody compiles a function literal's body in its own scope
// and returns the resulting compiled function plus the free variables its
// body captured from enclosing scopes.
func (c *Compiler) compileFunctionBody(node *ast.FunctionLiteral) (*object.CompiledFunction, []Symbol, error) {
	c.enterScope()
	if node.Name != "" {
		c.symbolTable.DefineFunctionName(node.Name)
	}

	for _, param := range node.Parameters {
		c.symbolTable.Define(param.Value)
	}

	if err := c.Compile(node.Body); err != nil {
		return nil, nil, err
	}
	if c.lastInstructionIs(code.OpPop) {
		c.replaceLastPopWithReturn()
	}
	if !c.lastInstructionIs(code.OpReturnValue) {
		c.emit(code.OpReturn)
	}

	freeSymbols := c.symbolTable.FreeSymbols
	numLocals := c.symbolTable.numDefinitions
	positions := c.scopes[c.scopeIndex].positions
	instructions := c.leaveScope()

	fn := &object.CompiledFunction{
		Instructions:  instructions,
		NumLocals:     numLocals,
		NumParameters: len(node.Parameters),
		Name:          node.Name,
		Positions:     positions,
	}
	return fn, freeSymbols, nil
}

// compileMatch compiles a `match` expression by testing the subject against
// each arm's pattern in turn. A failed pattern or guard jumps to the next
// arm; exhausting every arm without a match emits OpMatchFail.
func (c *Compiler) compileMatch(node *ast.MatchExpression) error {
	if err := c.Compile(node.Subject); err != nil {
		return err
	}
	subjectSym := c.defineSynthetic()
	c.emitStore(subjectSym)

	var endJumps []int
	for i, arm := range node.Arms {
		var popFails, directFails []int
		if err := c.compilePattern(arm.Pattern, subjectSym, &popFails, &directFails); err != nil {
			return err
		}
		if arm.Guard != nil {
			if err := c.Compile(arm.Guard); err != nil {
				return err
			}
			pos := c.emit(code.OpJumpNotTruthy, 9999)
			directFails = append(directFails, pos)
		}
		if err := c.Compile(arm.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emit(code.OpJump, 9999))

		popLabel := len(c.currentInstructions())
		for _, p := range popFails {
			c.changeOperand(p, popLabel)
		}
		c.emit(code.OpPop)
		directLabel := len(c.currentInstructions())
		for _, p := range directFails {
			c.changeOperand(p, directLabel)
		}

		if i == len(node.Arms)-1 {
			c.emit(code.OpMatchFail)
		}
	}

	endPos := len(c.currentInstructions())
	for _, p := range endJumps {
		c.changeOperand(p, endPos)
	}
	return nil
}

// compileLetPattern compiles `let pattern = value;` as a single-arm match: a
// pattern that fails to match raises OpMatchFail instead of falling through
// to a sibling arm.
func (c *Compiler) compileLetPattern(node *ast.LetPatternStatement) error {
	if err := c.Compile(node.Value); err != nil {
		return err
	}
	valueSym := c.defineSynthetic()
	c.emitStore(valueSym)

	var popFails, directFails []int
	if err := c.compilePattern(node.Pattern, valueSym, &popFails, &directFails); err != nil {
		return err
	}

	endJump := c.emit(code.OpJump, 9999)
	popLabel := len(c.currentInstructions())
	for _, p := range popFails {
		c.changeOperand(p, popLabel)
	}
	c.emit(code.OpPop)
	directLabel := len(c.currentInstructions())
	for _, p := range directFails {
		c.changeOperand(p, directLabel)
	}
	c.emit(code.OpMatchFail)

	c.changeOperand(endJump, len(c.currentInstructions()))
	return nil
}

// compilePattern emits the test and bindings for a single pattern matched
// against valueSym. A failed test that leaves a peeked residue on the stack
// (the OpIsXxx family never pops) records its jump in popFails, which the
// caller patches to a trampoline that pops the residue before falling
// through to the next attempt. A failed test with no residue (OpEqual-based
// literal checks, guard failures) records its jump in directFails instead.
func (c *Compiler) compilePattern(pat ast.Pattern, valueSym Symbol, popFails, directFails *[]int) error {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return nil

	case *ast.IdentifierPattern:
		c.loadSymbol(valueSym)
		sym := c.symbolTable.Define(p.Name)
		c.emitStore(sym)
		return nil

	case *ast.LiteralPattern:
		c.loadSymbol(valueSym)
		if err := c.Compile(p.Value); err != nil {
			return err
		}
		c.emit(code.OpEqual)
		pos := c.emit(code.OpJumpNotTruthy, 9999)
		*directFails = append(*directFails, pos)
		return nil

	case *ast.SomePattern:
		c.loadSymbol(valueSym)
		c.emit(code.OpIsSome)
		pos := c.emit(code.OpJumpNotTruthy, 9999)
		*popFails = append(*popFails, pos)
		c.emit(code.OpUnwrapSome)
		inner := c.defineSynthetic()
		c.emitStore(inner)
		return c.compilePattern(p.Inner, inner, popFails, directFails)

	case *ast.NonePattern:
		c.loadSymbol(valueSym)
		c.emit(code.OpIsSome)
		pos := c.emit(code.OpJumpTruthy, 9999)
		*popFails = append(*popFails, pos)
		c.emit(code.OpPop)
		return nil

	case *ast.LeftPattern:
		c.loadSymbol(valueSym)
		c.emit(code.OpIsLeft)
		pos := c.emit(code.OpJumpNotTruthy, 9999)
		*popFails = append(*popFails, pos)
		c.emit(code.OpUnwrapLeft)
		inner := c.defineSynthetic()
		c.emitStore(inner)
		return c.compilePattern(p.Inner, inner, popFails, directFails)

	case *ast.RightPattern:
		c.loadSymbol(valueSym)
		c.emit(code.OpIsRight)
		pos := c.emit(code.OpJumpNotTruthy, 9999)
		*popFails = append(*popFails, pos)
		c.emit(code.OpUnwrapRight)
		inner := c.defineSynthetic()
		c.emitStore(inner)
		return c.compilePattern(p.Inner, inner, popFails, directFails)

	case *ast.ConsPattern:
		c.loadSymbol(valueSym)
		c.emit(code.OpIsCons)
		pos := c.emit(code.OpJumpNotTruthy, 9999)
		*popFails = append(*popFails, pos)
		cell := c.defineSynthetic()
		c.emitStore(cell)

		c.loadSymbol(cell)
		c.emit(code.OpConsHead)
		head := c.defineSynthetic()
		c.emitStore(head)
		if err := c.compilePattern(p.Head, head, popFails, directFails); err != nil {
			return err
		}

		c.loadSymbol(cell)
		c.emit(code.OpConsTail)
		tail := c.defineSynthetic()
		c.emitStore(tail)
		return c.compilePattern(p.Tail, tail, popFails, directFails)

	case *ast.EmptyListPattern:
		c.loadSymbol(valueSym)
		c.emit(code.OpIsEmptyList)
		pos := c.emit(code.OpJumpNotTruthy, 9999)
		*popFails = append(*popFails, pos)
		c.emit(code.OpPop)
		return nil

	default:
		return c.fail(diag.New(diag.CodeUnexpectedToken, fmt.Sprintf("unsupported pattern %T", pat), pat.Span()))
	}
}

// addConstant adds a constant value to the constant pool and returns its index.
func (c *Compiler) addConstant(obj object.Object) int {
	c.constants = append(c.constants, obj)
	return len(c.constants) - 1
}

// emitConstant adds obj to the constant pool and emits the short or long
// form OpConstant depending on how far the index overflows a uint16.
func (c *Compiler) emitConstant(obj object.Object) {
	idx := c.addConstant(obj)
	if idx > math.MaxUint16 {
		c.emit(code.OpConstantLong, idx)
	} else {
		c.emit(code.OpConstant, idx)
	}
}

// emitCountedOp emits short, choosing long when count overflows a uint16.
func (c *Compiler) emitCountedOp(short, long code.Opcode, count int) {
	if count > math.MaxUint16 {
		c.emit(long, count)
	} else {
		c.emit(short, count)
	}
}

// emitClosure emits OpClosure, or OpClosureLong when fnIndex overflows a uint16.
func (c *Compiler) emitClosure(fnIndex, numFree int) {
	if fnIndex > math.MaxUint16 {
		c.emit(code.OpClosureLong, fnIndex, numFree)
	} else {
		c.emit(code.OpClosure, fnIndex, numFree)
	}
}

// emit generates a bytecode instruction with the given opcode and operands,
// adds it to the instruction list, and tracks its position.
func (c *Compiler) emit(op code.Opcode, operands ...int) int {
	ins := code.Make(op, operands...)
	pos := c.addInstruction(ins)

	c.scopes[c.scopeIndex].positions[pos] = c.currentSpan
	c.setLastInstruction(op, pos)
	return pos
}

// setLastInstruction updates the most recent and the previous instruction metadata within the current compilation scope.
func (c *Compiler) setLastInstruction(op code.Opcode, pos int) {
	previous := c.scopes[c.scopeIndex].lastInstruction
	last := EmittedInstruction{Opcode: op, Position: pos}

	c.scopes[c.scopeIndex].previousInstruction = previous
	c.scopes[c.scopeIndex].lastInstruction = last
}

// addInstruction appends the given bytecode instruction to the current scope's instructions and returns its starting position.
func (c *Compiler) addInstruction(ins []byte) int {
	posNewInstruction := len(c.currentInstructions())
	c.scopes[c.scopeIndex].instructions = append(c.currentInstructions(), ins...)
	return posNewInstruction
}

// Bytecode returns the compiled bytecode containing instructions and constants for a program or function.
func (c *Compiler) Bytecode() *Bytecode {
	return &Bytecode{
		Instructions: c.currentInstructions(),
		Constants:    c.constants,
		Positions:    c.scopes[c.scopeIndex].positions,
	}
}

// lastInstructionIs checks if the last emitted instruction is of the given opcode.
func (c *Compiler) lastInstructionIs(op code.Opcode) bool {
	if len(c.currentInstructions()) == 0 {
		return false
	}
	return c.scopes[c.scopeIndex].lastInstruction.Opcode == op
}

// removeLastPop removes the last emitted "pop" instruction from the current compilation scope instructions.
func (c *Compiler) removeLastPop() {
	last := c.scopes[c.scopeIndex].lastInstruction
	previous := c.scopes[c.scopeIndex].previousInstruction

	old := c.currentInstructions()
	newInstruction := old[:last.Position]

	c.scopes[c.scopeIndex].instructions = newInstruction
	c.scopes[c.scopeIndex].lastInstruction = previous
}

// replaceInstruction replaces a sequence of bytecode instructions at the specified position with a new instruction sequence.
func (c *Compiler) replaceInstruction(pos int, newInstruction []byte) {
	ins := c.currentInstructions()

	for i := 0; i < len(newInstruction); i++ {
		ins[pos+i] = newInstruction[i]
	}
}

// changeOperand replaces the operand of an instruction at the specified position with a new provided operand.
func (c *Compiler) changeOperand(opPos int, operand int) {
	op := code.Opcode(c.currentInstructions()[opPos])
	newInstruction := code.Make(op, operand)

	c.replaceInstruction(opPos, newInstruction)
}

// currentInstructions retrieves the current compilation scope's bytecode instructions.
func (c *Compiler) currentInstructions() code.Instructions {
	return c.scopes[c.scopeIndex].instructions
}

// enterScope initializes a new compilation scope, updates scope tracking, and creates a new enclosed symbol table.
func (c *Compiler) enterScope() {
	scope := newCompilationScope()
	c.scopes = append(c.scopes, scope)
	c.scopeIndex++
	c.symbolTable = NewEnclosedSymbolTable(c.symbolTable)
}

// leaveScope removes the current compilation scope, updates scope tracking, and restores the outer symbol table.
func (c *Compiler) leaveScope() code.Instructions {
	instructions := c.currentInstructions()
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.scopeIndex--
	c.symbolTable = c.symbolTable.Outer
	return instructions
}

// replaceLastPopWithReturn modifies the last emitted "pop"
// instruction into a "return value" instruction in the current scope.
func (c *Compiler) replaceLastPopWithReturn() {
	lastPos := c.scopes[c.scopeIndex].lastInstruction.Position
	c.replaceInstruction(lastPos, code.Make(code.OpReturnValue))
	c.scopes[c.scopeIndex].lastInstruction.Opcode = code.OpReturnValue
}

// loadSymbol generates bytecode to load the value of a symbol from its associated scope using the symbol's index.
func (c *Compiler) loadSymbol(s Symbol) {
	switch s.Scope {
	case GlobalScope:
		c.emit(code.OpGetGlobal, s.Index)
	case LocalScope:
		c.emit(code.OpGetLocal, s.Index)
	case BuiltinScope:
		c.emit(code.OpGetBuiltin, s.Index)
	case FreeScope:
		c.emit(code.OpGetFree, s.Index)
	case FunctionScope:
		c.emit(code.OpCurrentClosure)
	}
}

// defineSynthetic introduces a fresh, compiler-generated binding (a match
// subject or an intermediate unwrapped pattern value) in the current scope.
func (c *Compiler) defineSynthetic() Symbol {
	name := fmt.Sprintf("$%d", c.syntheticCounter)
	c.syntheticCounter++
	return c.symbolTable.Define(name)
}

// emitStore emits the opcode that pops the stack top into sym's slot.
func (c *Compiler) emitStore(sym Symbol) {
	if sym.Scope == GlobalScope {
		c.emit(code.OpSetGlobal, sym.Index)
	} else {
		c.emit(code.OpSetLocal, sym.Index)
	}
}

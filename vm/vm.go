// Package vm implements the stack-based bytecode virtual machine that
// executes programs produced by the compiler package.
//
// The VM owns a value stack, a frame stack (one [Frame] per active function
// call), and a slice of global variable slots. It fetches, decodes and
// dispatches one instruction at a time from the current frame's
// instructions, following the jump/call/return operands the compiler
// emitted. Pattern-match opcodes, closures and higher-order built-ins are
// dispatched the same way as arithmetic: pop operands, push a result.
//
// A tracing mode logs every dispatched instruction (frame index, instruction
// pointer, opcode name and stack pointer) at debug level through an injected
// [*logrus.Logger], defaulting to the standard logger.
package vm

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/flux-lang/flux/code"
	"github.com/flux-lang/flux/compiler"
	"github.com/flux-lang/flux/object"
	"github.com/flux-lang/flux/token"
)

const (
	// StackSize is the maximum number of values the VM's value stack holds.
	StackSize = 2048

	// GlobalsSize is the number of global variable slots available to a program.
	GlobalsSize = 65536

	// MaxFrames is the maximum call depth before the VM reports a stack overflow.
	MaxFrames = 1024
)

var (
	trueObj  = &object.Boolean{Value: true}
	falseObj = &object.Boolean{Value: false}
)

// RuntimeError is returned by Run when bytecode execution cannot continue:
// type mismatches, division by zero, index out of bounds, arity mismatch,
// pattern-match exhaustion, and stack/frame overflow all surface as one.
type RuntimeError struct {
	Message  string
	Position token.Span
}

func (e *RuntimeError) Error() string {
	if e.Position.Start.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Position.Start.Line, e.Position.Start.Column)
}

// VM executes compiled bytecode against a value stack, a frame stack and a
// slice of global variable slots.
type VM struct {
	constants []object.Object
	globals   []object.Object

	stack []object.Object
	sp    int // points to the next free slot; the top of stack is stack[sp-1]

	frames     []*Frame
	frameIndex int

	builtins []*object.Builtin

	logger  *logrus.Logger
	tracing bool
}

// New constructs a VM ready to run bytecode, with a fresh set of global slots.
func New(bytecode *compiler.Bytecode) *VM {
	mainFn := &object.CompiledFunction{Instructions: bytecode.Instructions, Positions: bytecode.Positions}
	mainClosure := &object.Closure{Fn: mainFn}
	mainFrame := NewFrame(mainClosure, 0)

	frames := make([]*Frame, MaxFrames)
	frames[0] = mainFrame

	machine := &VM{
		constants:  bytecode.Constants,
		globals:    make([]object.Object, GlobalsSize),
		stack:      make([]object.Object, StackSize),
		sp:         0,
		frames:     frames,
		frameIndex: 0,
		logger:     logrus.StandardLogger(),
	}
	machine.builtins = machine.wrapBuiltins()
	return machine
}

// NewWithGlobalsStore constructs a VM that shares globals with a previous
// run, letting a REPL session persist top-level bindings across lines.
func NewWithGlobalsStore(bytecode *compiler.Bytecode, globals []object.Object) *VM {
	machine := New(bytecode)
	machine.globals = globals
	return machine
}

// SetLogger replaces the VM's logger, used by tracing mode.
func (vm *VM) SetLogger(logger *logrus.Logger) {
	vm.logger = logger
}

// SetTracing enables or disables per-instruction tracing output.
func (vm *VM) SetTracing(enabled bool) {
	vm.tracing = enabled
}

// Globals returns the VM's global slot store, for a REPL to persist across runs.
func (vm *VM) Globals() []object.Object {
	return vm.globals
}

// wrapBuiltins adapts every object.Builtins entry into a callable
// *object.Builtin, closing NeedsCaller entries over the VM's own callAsGo so
// higher-order built-ins like map/filter/fold can invoke Flux closures.
func (vm *VM) wrapBuiltins() []*object.Builtin {
	wrapped := make([]*object.Builtin, len(object.Builtins))
	for i, entry := range object.Builtins {
		entry := entry
		if entry.NeedsCaller {
			wrapped[i] = &object.Builtin{Fn: func(args ...object.Object) object.Object {
				return entry.CallFn(vm.callAsGo, args...)
			}}
		} else {
			wrapped[i] = entry.Builtin
		}
	}
	return wrapped
}

// StackTop returns the value on top of the stack, or nil if the stack is empty.
func (vm *VM) StackTop() object.Object {
	if vm.sp == 0 {
		return nil
	}
	return vm.stack[vm.sp-1]
}

// LastPoppedStackElem returns the most recently popped value. Since every
// top-level expression statement ends in OpPop, this is the REPL-display
// convention for "the value of the program".
func (vm *VM) LastPoppedStackElem() object.Object {
	return vm.stack[vm.sp]
}

func (vm *VM) currentFrame() *Frame {
	return vm.frames[vm.frameIndex]
}

func (vm *VM) pushFrame(f *Frame) error {
	if vm.frameIndex+1 >= MaxFrames {
		return vm.runtimeError("stack overflow: call depth exceeded")
	}
	vm.frameIndex++
	vm.frames[vm.frameIndex] = f
	return nil
}

func (vm *VM) popFrame() *Frame {
	f := vm.frames[vm.frameIndex]
	vm.frameIndex--
	return f
}

func (vm *VM) push(obj object.Object) error {
	if vm.sp >= StackSize {
		return vm.runtimeError("stack overflow")
	}
	vm.stack[vm.sp] = obj
	vm.sp++
	return nil
}

func (vm *VM) pop() object.Object {
	obj := vm.stack[vm.sp-1]
	vm.sp--
	return obj
}

// Run drives the VM to completion and returns the last popped stack value,
// the convention used by the REPL to display an expression's result.
func (vm *VM) Run() (object.Object, error) {
	for vm.frameIndex > 0 || vm.currentFrame().ip < len(vm.currentFrame().Instructions())-1 {
		if err := vm.step(); err != nil {
			return nil, err
		}
	}
	return vm.LastPoppedStackElem(), nil
}

// step fetches, decodes and dispatches exactly one instruction from the
// current frame. OpCall pushing a new frame, or OpReturn/OpReturnValue
// popping one, simply changes which frame the next step operates on; there
// is no Go-level recursion in the main loop. callAsGo reuses step to drive a
// nested call to completion when a built-in must call back into Flux code.
func (vm *VM) step() error {
	frame := vm.currentFrame()
	frame.ip++
	ip := frame.ip
	ins := frame.Instructions()
	op := code.Opcode(ins[ip])

	if vm.tracing {
		def, _ := code.Lookup(byte(op))
		name := "?"
		if def != nil {
			name = def.Name
		}
		vm.logger.Debugf("frame=%d ip=%d op=%s sp=%d", vm.frameIndex, ip, name, vm.sp)
	}

	switch op {
	case code.OpConstant:
		idx := int(code.ReadUint16(ins[ip+1:]))
		frame.ip += 2
		return vm.push(vm.constants[idx])

	case code.OpConstantLong:
		idx := int(code.ReadUint32(ins[ip+1:]))
		frame.ip += 4
		return vm.push(vm.constants[idx])

	case code.OpAdd, code.OpSub, code.OpMul, code.OpDiv, code.OpMod:
		return vm.executeBinaryOperation(op)

	case code.OpEqual, code.OpNotEqual, code.OpGreaterThan, code.OpGreaterEqual:
		return vm.executeComparison(op)

	case code.OpBang:
		return vm.executeBangOperator()

	case code.OpMinus:
		return vm.executeMinusOperator()

	case code.OpTrue:
		return vm.push(trueObj)

	case code.OpFalse:
		return vm.push(falseObj)

	case code.OpNone:
		return vm.push(&object.None{})

	case code.OpPop:
		vm.pop()
		return nil

	case code.OpJump:
		pos := int(code.ReadUint16(ins[ip+1:]))
		frame.ip = pos - 1
		return nil

	case code.OpJumpNotTruthy:
		pos := int(code.ReadUint16(ins[ip+1:]))
		frame.ip += 2
		if !isTruthy(vm.pop()) {
			frame.ip = pos - 1
		}
		return nil

	case code.OpJumpTruthy:
		pos := int(code.ReadUint16(ins[ip+1:]))
		frame.ip += 2
		if isTruthy(vm.pop()) {
			frame.ip = pos - 1
		}
		return nil

	case code.OpGetGlobal:
		idx := int(code.ReadUint16(ins[ip+1:]))
		frame.ip += 2
		return vm.push(vm.globals[idx])

	case code.OpSetGlobal:
		idx := int(code.ReadUint16(ins[ip+1:]))
		frame.ip += 2
		vm.globals[idx] = vm.pop()
		return nil

	case code.OpGetLocal:
		idx := int(code.ReadUint8(ins[ip+1:]))
		frame.ip++
		return vm.push(vm.stack[frame.basePointer+idx])

	case code.OpSetLocal:
		idx := int(code.ReadUint8(ins[ip+1:]))
		frame.ip++
		vm.stack[frame.basePointer+idx] = vm.pop()
		return nil

	case code.OpGetBuiltin:
		idx := int(code.ReadUint8(ins[ip+1:]))
		frame.ip++
		return vm.push(vm.builtins[idx])

	case code.OpGetFree:
		idx := int(code.ReadUint8(ins[ip+1:]))
		frame.ip++
		return vm.push(frame.cl.Free[idx])

	case code.OpCurrentClosure:
		return vm.push(frame.cl)

	case code.OpArray:
		n := int(code.ReadUint16(ins[ip+1:]))
		frame.ip += 2
		return vm.buildArray(n)

	case code.OpArrayLong:
		n := int(code.ReadUint32(ins[ip+1:]))
		frame.ip += 4
		return vm.buildArray(n)

	case code.OpHash:
		n := int(code.ReadUint16(ins[ip+1:]))
		frame.ip += 2
		return vm.buildHash(n)

	case code.OpHashLong:
		n := int(code.ReadUint32(ins[ip+1:]))
		frame.ip += 4
		return vm.buildHash(n)

	case code.OpIndex:
		index := vm.pop()
		left := vm.pop()
		return vm.executeIndex(left, index)

	case code.OpCall:
		numArgs := int(code.ReadUint8(ins[ip+1:]))
		frame.ip++
		return vm.executeCall(numArgs)

	case code.OpReturnValue:
		val := vm.pop()
		f := vm.popFrame()
		vm.sp = f.basePointer - 1
		return vm.push(val)

	case code.OpReturn:
		f := vm.popFrame()
		vm.sp = f.basePointer - 1
		return vm.push(&object.None{})

	case code.OpClosure:
		constIdx := int(code.ReadUint16(ins[ip+1:]))
		numFree := int(code.ReadUint8(ins[ip+3:]))
		frame.ip += 3
		return vm.pushClosure(constIdx, numFree)

	case code.OpClosureLong:
		constIdx := int(code.ReadUint32(ins[ip+1:]))
		numFree := int(code.ReadUint8(ins[ip+5:]))
		frame.ip += 5
		return vm.pushClosure(constIdx, numFree)

	case code.OpSome:
		return vm.push(&object.Some{Value: vm.pop()})

	case code.OpLeft:
		return vm.push(&object.Left{Value: vm.pop()})

	case code.OpRight:
		return vm.push(&object.Right{Value: vm.pop()})

	case code.OpIsSome:
		_, ok := vm.StackTop().(*object.Some)
		return vm.push(nativeBool(ok))

	case code.OpIsLeft:
		_, ok := vm.StackTop().(*object.Left)
		return vm.push(nativeBool(ok))

	case code.OpIsRight:
		_, ok := vm.StackTop().(*object.Right)
		return vm.push(nativeBool(ok))

	case code.OpIsCons:
		_, ok := vm.StackTop().(*object.Cons)
		return vm.push(nativeBool(ok))

	case code.OpIsEmptyList:
		_, ok := vm.StackTop().(*object.EmptyList)
		return vm.push(nativeBool(ok))

	case code.OpUnwrapSome:
		v := vm.pop()
		s, ok := v.(*object.Some)
		if !ok {
			return vm.runtimeErrorf("cannot unwrap %s as Some", v.Type())
		}
		return vm.push(s.Value)

	case code.OpUnwrapLeft:
		v := vm.pop()
		l, ok := v.(*object.Left)
		if !ok {
			return vm.runtimeErrorf("cannot unwrap %s as Left", v.Type())
		}
		return vm.push(l.Value)

	case code.OpUnwrapRight:
		v := vm.pop()
		r, ok := v.(*object.Right)
		if !ok {
			return vm.runtimeErrorf("cannot unwrap %s as Right", v.Type())
		}
		return vm.push(r.Value)

	case code.OpConsHead:
		v := vm.pop()
		c, ok := v.(*object.Cons)
		if !ok {
			return vm.runtimeErrorf("cannot take head of %s", v.Type())
		}
		return vm.push(c.Head)

	case code.OpConsTail:
		v := vm.pop()
		c, ok := v.(*object.Cons)
		if !ok {
			return vm.runtimeErrorf("cannot take tail of %s", v.Type())
		}
		return vm.push(c.Tail)

	case code.OpCons:
		tail := vm.pop()
		head := vm.pop()
		return vm.push(&object.Cons{Head: head, Tail: tail})

	case code.OpEmptyList:
		return vm.push(object.EmptyListValue)

	case code.OpToString:
		return vm.push(&object.String{Value: stringify(vm.pop())})

	case code.OpStringConcat:
		b := vm.pop()
		a := vm.pop()
		as, ok1 := a.(*object.String)
		bs, ok2 := b.(*object.String)
		if !ok1 || !ok2 {
			return vm.runtimeErrorf("cannot concatenate %s and %s", a.Type(), b.Type())
		}
		return vm.push(&object.String{Value: as.Value + bs.Value})

	case code.OpMatchFail:
		return vm.runtimeError("no pattern matched the subject")

	default:
		return vm.runtimeErrorf("unknown opcode %d", op)
	}
}

func nativeBool(b bool) *object.Boolean {
	if b {
		return trueObj
	}
	return falseObj
}

func isTruthy(obj object.Object) bool {
	switch v := obj.(type) {
	case *object.Boolean:
		return v.Value
	case *object.None:
		return false
	default:
		return true
	}
}

// stringify renders a value the way OpToString and interpolation expect:
// strings pass through unquoted, everything else uses its Inspect form.
func stringify(obj object.Object) string {
	if s, ok := obj.(*object.String); ok {
		return s.Value
	}
	return obj.Inspect()
}

func (vm *VM) buildArray(n int) error {
	elements := make([]object.Object, n)
	for i := n - 1; i >= 0; i-- {
		elements[i] = vm.pop()
	}
	return vm.push(&object.Array{Elements: elements})
}

func (vm *VM) buildHash(n int) error {
	hash := object.NewHash()
	pairs := make([]object.HashPair, n/2)
	for i := n/2 - 1; i >= 0; i-- {
		value := vm.pop()
		key := vm.pop()
		pairs[i] = object.HashPair{Key: key, Value: value}
	}
	for _, pair := range pairs {
		hashable, ok := pair.Key.(object.Hashable)
		if !ok {
			return vm.runtimeErrorf("unusable as hash key: %s", pair.Key.Type())
		}
		hash = hash.Set(hashable.HashKey(), pair)
	}
	return vm.push(hash)
}

func (vm *VM) executeIndex(left, index object.Object) error {
	switch {
	case left.Type() == object.ARRAY_OBJ && index.Type() == object.INTEGER_OBJ:
		arr := left.(*object.Array)
		i := index.(*object.Integer).Value
		if i < 0 || i >= int64(len(arr.Elements)) {
			return vm.runtimeErrorf("index out of bounds: %d", i)
		}
		return vm.push(arr.Elements[i])
	case left.Type() == object.HASH_OBJ:
		hash := left.(*object.Hash)
		hashable, ok := index.(object.Hashable)
		if !ok {
			return vm.runtimeErrorf("unusable as hash key: %s", index.Type())
		}
		pair, ok := hash.Get(hashable.HashKey())
		if !ok {
			return vm.push(&object.None{})
		}
		return vm.push(pair.Value)
	default:
		return vm.runtimeErrorf("index operator not supported: %s", left.Type())
	}
}

func (vm *VM) pushClosure(constIndex, numFree int) error {
	constant := vm.constants[constIndex]
	fn, ok := constant.(*object.CompiledFunction)
	if !ok {
		return vm.runtimeErrorf("not a function: %s", constant.Type())
	}
	free := make([]object.Object, numFree)
	for i := numFree - 1; i >= 0; i-- {
		free[i] = vm.pop()
	}
	return vm.push(&object.Closure{Fn: fn, Free: free})
}

// executeCall dispatches OpCall: the callee sits numArgs below the stack top.
func (vm *VM) executeCall(numArgs int) error {
	callee := vm.stack[vm.sp-1-numArgs]
	switch fn := callee.(type) {
	case *object.Closure:
		return vm.callClosure(fn, numArgs)
	case *object.Builtin:
		return vm.callBuiltin(fn, numArgs)
	default:
		return vm.runtimeErrorf("calling non-function of type %s", callee.Type())
	}
}

func (vm *VM) callClosure(cl *object.Closure, numArgs int) error {
	if numArgs != cl.Fn.NumParameters {
		return vm.runtimeErrorf("wrong number of arguments: want=%d, got=%d", cl.Fn.NumParameters, numArgs)
	}
	frame := NewFrame(cl, vm.sp-numArgs)
	if err := vm.pushFrame(frame); err != nil {
		return err
	}
	vm.sp = frame.basePointer + cl.Fn.NumLocals
	return nil
}

func (vm *VM) callBuiltin(builtin *object.Builtin, numArgs int) error {
	args := vm.stack[vm.sp-numArgs : vm.sp]
	result := builtin.Fn(args...)
	vm.sp = vm.sp - numArgs - 1

	if errObj, ok := result.(*object.Error); ok {
		return vm.runtimeError(errObj.Message)
	}
	if result == nil {
		return vm.push(&object.None{})
	}
	return vm.push(result)
}

// callAsGo implements object.Caller: it lets a NeedsCaller built-in (map,
// filter, fold) invoke a Flux closure or another built-in and get its result
// back synchronously, by driving step() until the pushed frame returns.
func (vm *VM) callAsGo(fn object.Object, args []object.Object) (object.Object, error) {
	// The callee occupies the slot below its arguments, as with OpCall, so
	// that OpReturnValue (sp = basePointer - 1) lands on it and not on the
	// calling built-in's own arguments.
	if err := vm.push(fn); err != nil {
		return nil, err
	}
	for _, a := range args {
		if err := vm.push(a); err != nil {
			return nil, err
		}
	}

	switch callee := fn.(type) {
	case *object.Closure:
		if len(args) != callee.Fn.NumParameters {
			return nil, fmt.Errorf("wrong number of arguments: want=%d, got=%d", callee.Fn.NumParameters, len(args))
		}
		baseFrameIndex := vm.frameIndex
		frame := NewFrame(callee, vm.sp-len(args))
		if err := vm.pushFrame(frame); err != nil {
			return nil, err
		}
		vm.sp = frame.basePointer + callee.Fn.NumLocals
		for vm.frameIndex > baseFrameIndex {
			if err := vm.step(); err != nil {
				return nil, err
			}
		}
		return vm.pop(), nil

	case *object.Builtin:
		result := callee.Fn(args...)
		vm.sp -= len(args) + 1
		if errObj, ok := result.(*object.Error); ok {
			return nil, fmt.Errorf("%s", errObj.Message)
		}
		return result, nil

	default:
		vm.sp -= len(args) + 1
		return nil, fmt.Errorf("calling non-function of type %s", fn.Type())
	}
}

// executeBinaryOperation handles OpAdd/OpSub/OpMul/OpDiv/OpMod. Left was
// pushed before right, so right sits on top and is popped first. Mixed
// integer/float operands coerce the integer to float; "+" on two strings
// concatenates instead of arithmetic, since the compiler emits the same
// OpAdd for both and only the runtime types distinguish them.
func (vm *VM) executeBinaryOperation(op code.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	switch {
	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		if op != code.OpAdd {
			return vm.runtimeErrorf("unsupported operator for strings")
		}
		return vm.push(&object.String{Value: left.(*object.String).Value + right.(*object.String).Value})

	case isNumeric(left) && isNumeric(right):
		if left.Type() == object.FLOAT_OBJ || right.Type() == object.FLOAT_OBJ {
			return vm.executeFloatBinaryOperation(op, asFloat(left), asFloat(right))
		}
		return vm.executeIntegerBinaryOperation(op, left.(*object.Integer).Value, right.(*object.Integer).Value)

	default:
		return vm.runtimeErrorf("type mismatch: %s %s", left.Type(), right.Type())
	}
}

func isNumeric(obj object.Object) bool {
	return obj.Type() == object.INTEGER_OBJ || obj.Type() == object.FLOAT_OBJ
}

func asFloat(obj object.Object) float64 {
	if i, ok := obj.(*object.Integer); ok {
		return float64(i.Value)
	}
	return obj.(*object.Float).Value
}

func (vm *VM) executeIntegerBinaryOperation(op code.Opcode, left, right int64) error {
	var result int64
	switch op {
	case code.OpAdd:
		result = left + right
	case code.OpSub:
		result = left - right
	case code.OpMul:
		result = left * right
	case code.OpDiv:
		if right == 0 {
			return vm.runtimeError("division by zero")
		}
		result = left / right
	case code.OpMod:
		if right == 0 {
			return vm.runtimeError("division by zero")
		}
		result = left % right
	default:
		return vm.runtimeErrorf("unknown integer operator: %d", op)
	}
	return vm.push(&object.Integer{Value: result})
}

func (vm *VM) executeFloatBinaryOperation(op code.Opcode, left, right float64) error {
	var result float64
	switch op {
	case code.OpAdd:
		result = left + right
	case code.OpSub:
		result = left - right
	case code.OpMul:
		result = left * right
	case code.OpDiv:
		if right == 0 {
			return vm.runtimeError("division by zero")
		}
		result = left / right
	case code.OpMod:
		if right == 0 {
			return vm.runtimeError("division by zero")
		}
		result = math.Mod(left, right)
	default:
		return vm.runtimeErrorf("unknown float operator: %d", op)
	}
	return vm.push(&object.Float{Value: result})
}

// executeComparison handles OpEqual/OpNotEqual (structural, any value type)
// and OpGreaterThan/OpGreaterEqual (numbers and strings only). The `<`/`<=`
// source forms reach here already operand-swapped by the compiler.
func (vm *VM) executeComparison(op code.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	switch op {
	case code.OpEqual:
		return vm.push(nativeBool(objectsEqual(left, right)))
	case code.OpNotEqual:
		return vm.push(nativeBool(!objectsEqual(left, right)))
	}

	switch {
	case isNumeric(left) && isNumeric(right):
		l, r := asFloat(left), asFloat(right)
		if op == code.OpGreaterThan {
			return vm.push(nativeBool(l > r))
		}
		return vm.push(nativeBool(l >= r))

	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		l, r := left.(*object.String).Value, right.(*object.String).Value
		if op == code.OpGreaterThan {
			return vm.push(nativeBool(l > r))
		}
		return vm.push(nativeBool(l >= r))

	default:
		return vm.runtimeErrorf("type mismatch: %s %s", left.Type(), right.Type())
	}
}

// objectsEqual implements structural equality across every value type,
// including recursively through arrays, cons lists and hashes, so that two
// independently-constructed values compare equal without pointer identity.
func objectsEqual(left, right object.Object) bool {
	if isNumeric(left) && isNumeric(right) {
		return asFloat(left) == asFloat(right)
	}
	if left.Type() != right.Type() {
		return false
	}
	switch l := left.(type) {
	case *object.Boolean:
		return l.Value == right.(*object.Boolean).Value
	case *object.String:
		return l.Value == right.(*object.String).Value
	case *object.None:
		return true
	case *object.EmptyList:
		return true
	case *object.Some:
		return objectsEqual(l.Value, right.(*object.Some).Value)
	case *object.Left:
		return objectsEqual(l.Value, right.(*object.Left).Value)
	case *object.Right:
		return objectsEqual(l.Value, right.(*object.Right).Value)
	case *object.Cons:
		r := right.(*object.Cons)
		return objectsEqual(l.Head, r.Head) && objectsEqual(l.Tail, r.Tail)
	case *object.Array:
		r := right.(*object.Array)
		if len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !objectsEqual(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *object.Hash:
		r := right.(*object.Hash)
		if l.Len() != r.Len() {
			return false
		}
		equal := true
		l.Iterate(func(pair object.HashPair) {
			hashable := pair.Key.(object.Hashable)
			otherPair, ok := r.Get(hashable.HashKey())
			if !ok || !objectsEqual(pair.Value, otherPair.Value) {
				equal = false
			}
		})
		return equal
	case *object.Closure:
		return l == right.(*object.Closure)
	default:
		return left == right
	}
}

func (vm *VM) executeBangOperator() error {
	operand := vm.pop()
	return vm.push(nativeBool(!isTruthy(operand)))
}

func (vm *VM) executeMinusOperator() error {
	operand := vm.pop()
	switch v := operand.(type) {
	case *object.Integer:
		return vm.push(&object.Integer{Value: -v.Value})
	case *object.Float:
		return vm.push(&object.Float{Value: -v.Value})
	default:
		return vm.runtimeErrorf("unsupported operand for unary -: %s", operand.Type())
	}
}

func (vm *VM) runtimeError(message string) error {
	return &RuntimeError{Message: message, Position: vm.currentPosition()}
}

func (vm *VM) runtimeErrorf(format string, a ...any) error {
	return vm.runtimeError(fmt.Sprintf(format, a...))
}

func (vm *VM) currentPosition() token.Span {
	frame := vm.currentFrame()
	if frame.cl != nil && frame.cl.Fn != nil && frame.cl.Fn.Positions != nil {
		if span, ok := frame.cl.Fn.Positions[frame.ip]; ok {
			return span
		}
	}
	return token.Span{}
}

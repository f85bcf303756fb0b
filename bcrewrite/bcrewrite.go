// Package bcrewrite provides a structured decode/rewrite framework over
// compiled bytecode: sequential decoding into [InstrView] records, a
// for-each iterator, and a rewrite pass that can replace instructions with
// differently-sized encodings while automatically fixing up every jump
// operand to keep pointing at the same logical target.
package bcrewrite

import (
	"fmt"

	"github.com/flux-lang/flux/code"
)

// InstrView is a single decoded instruction: its position, opcode, operands,
// and encoded length in bytes.
type InstrView struct {
	PC       int
	Op       code.Opcode
	Operands []int
	Len      int
}

// Encode round-trips the view back through [code.Make].
func (v InstrView) Encode() []byte {
	return code.Make(v.Op, v.Operands...)
}

// ErrorKind distinguishes the two ways decoding a single instruction can fail.
type ErrorKind int

const (
	// UnexpectedEnd means fewer bytes remained than the opcode's operands need.
	UnexpectedEnd ErrorKind = iota
	// UnknownOpcode means the byte at pc does not name a defined opcode.
	UnknownOpcode
)

// DecodeError reports why DecodeAt failed at a given program counter.
type DecodeError struct {
	Kind ErrorKind
	PC   int
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case UnknownOpcode:
		return fmt.Sprintf("unknown opcode at pc=%d", e.PC)
	default:
		return fmt.Sprintf("unexpected end of instructions at pc=%d", e.PC)
	}
}

// DecodeAt decodes a single instruction at pc within ins.
func DecodeAt(ins code.Instructions, pc int) (InstrView, error) {
	if pc >= len(ins) {
		return InstrView{}, &DecodeError{Kind: UnexpectedEnd, PC: pc}
	}
	def, err := code.Lookup(ins[pc])
	if err != nil {
		return InstrView{}, &DecodeError{Kind: UnknownOpcode, PC: pc}
	}
	width := 0
	for _, w := range def.OperandWidths {
		width += w
	}
	if pc+1+width > len(ins) {
		return InstrView{}, &DecodeError{Kind: UnexpectedEnd, PC: pc}
	}
	operands, read := code.ReadOperands(def, ins[pc+1:])
	return InstrView{PC: pc, Op: code.Opcode(ins[pc]), Operands: operands, Len: 1 + read}, nil
}

// ForEachInstr decodes ins sequentially, calling fn for each [InstrView].
// Stops and returns the error if decoding fails partway through.
func ForEachInstr(ins code.Instructions, fn func(InstrView)) error {
	pc := 0
	for pc < len(ins) {
		v, err := DecodeAt(ins, pc)
		if err != nil {
			return err
		}
		fn(v)
		pc += v.Len
	}
	return nil
}

// jumpOperandIndex returns the operand index holding a jump's absolute
// target, for opcodes where [code.IsJump] is true: always operand 0.
func jumpOperandIndex(_ code.Opcode) int { return 0 }

// InvalidJumpTarget reports a jump operand that, after a rewrite, no longer
// names a valid instruction boundary in the output.
type InvalidJumpTarget struct {
	PC     int
	Target int
}

func (e *InvalidJumpTarget) Error() string {
	return fmt.Sprintf("invalid jump target at pc=%d: %d", e.PC, e.Target)
}

// MapInstrs rewrites every instruction in ins through fn, which receives the
// decoded view and returns the replacement bytes (return the original
// v.Encode() to leave an instruction unchanged). The rewrite is two-pass:
// the first pass decodes the input and builds the replacement stream while
// recording old_pc -> new_pc; the second patches every jump instruction's
// operand to the new position of its original target.
func MapInstrs(ins code.Instructions, fn func(InstrView) []byte) (code.Instructions, error) {
	var out code.Instructions
	offsetMap := make(map[int]int)
	type pendingJump struct {
		newPC     int
		oldTarget int
	}
	var jumps []pendingJump

	pc := 0
	for pc < len(ins) {
		v, err := DecodeAt(ins, pc)
		if err != nil {
			return nil, err
		}
		offsetMap[v.PC] = len(out)
		replacement := fn(v)

		if code.IsJump(v.Op) && len(v.Operands) > 0 {
			jumps = append(jumps, pendingJump{newPC: len(out), oldTarget: v.Operands[jumpOperandIndex(v.Op)]})
		}

		out = append(out, replacement...)
		pc += v.Len
	}
	offsetMap[len(ins)] = len(out)

	for _, j := range jumps {
		newTarget, ok := offsetMap[j.oldTarget]
		if !ok {
			return nil, &InvalidJumpTarget{PC: j.newPC, Target: j.oldTarget}
		}
		def, err := code.Lookup(out[j.newPC])
		if err != nil {
			return nil, err
		}
		operands, _ := code.ReadOperands(def, out[j.newPC+1:])
		operands[jumpOperandIndex(code.Opcode(out[j.newPC]))] = newTarget
		patched := code.Make(code.Opcode(out[j.newPC]), operands...)
		copy(out[j.newPC:j.newPC+len(patched)], patched)
	}

	return out, nil
}

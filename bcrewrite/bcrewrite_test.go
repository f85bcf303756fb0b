package bcrewrite

import (
	"testing"

	"github.com/flux-lang/flux/code"
)

func TestDecodeAt(t *testing.T) {
	ins := code.Instructions{}
	ins = append(ins, code.Make(code.OpConstant, 65534)...)
	ins = append(ins, code.Make(code.OpAdd)...)

	v, err := DecodeAt(ins, 0)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if v.Op != code.OpConstant {
		t.Errorf("wrong opcode. want=%d, got=%d", code.OpConstant, v.Op)
	}
	if len(v.Operands) != 1 || v.Operands[0] != 65534 {
		t.Errorf("wrong operands: %v", v.Operands)
	}
	if v.Len != 3 {
		t.Errorf("wrong length. want=3, got=%d", v.Len)
	}

	v2, err := DecodeAt(ins, v.Len)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if v2.Op != code.OpAdd || v2.Len != 1 {
		t.Errorf("wrong second instruction: %+v", v2)
	}
}

func TestDecodeAtUnknownOpcode(t *testing.T) {
	ins := code.Instructions{255}
	_, err := DecodeAt(ins, 0)
	if err == nil {
		t.Fatal("expected an error decoding an unknown opcode")
	}
	decodeErr, ok := err.(*DecodeError)
	if !ok || decodeErr.Kind != UnknownOpcode {
		t.Errorf("expected UnknownOpcode, got %+v", err)
	}
}

func TestDecodeAtUnexpectedEnd(t *testing.T) {
	ins := code.Instructions{byte(code.OpConstant), 0}
	_, err := DecodeAt(ins, 0)
	if err == nil {
		t.Fatal("expected an error decoding a truncated instruction")
	}
	decodeErr, ok := err.(*DecodeError)
	if !ok || decodeErr.Kind != UnexpectedEnd {
		t.Errorf("expected UnexpectedEnd, got %+v", err)
	}
}

func TestForEachInstr(t *testing.T) {
	ins := code.Instructions{}
	ins = append(ins, code.Make(code.OpConstant, 1)...)
	ins = append(ins, code.Make(code.OpConstant, 2)...)
	ins = append(ins, code.Make(code.OpAdd)...)
	ins = append(ins, code.Make(code.OpPop)...)

	var seen []code.Opcode
	err := ForEachInstr(ins, func(v InstrView) {
		seen = append(seen, v.Op)
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	want := []code.Opcode{code.OpConstant, code.OpConstant, code.OpAdd, code.OpPop}
	if len(seen) != len(want) {
		t.Fatalf("wrong number of instructions. want=%d, got=%d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("instruction %d: want=%d, got=%d", i, want[i], seen[i])
		}
	}
}

// TestMapInstrsFixesUpJumpTargets widens every OpConstant into an
// OpConstantLong, shifting every instruction after the first one, and checks
// that a forward jump's target is patched to point at the same logical
// instruction in the rewritten stream.
func TestMapInstrsFixesUpJumpTargets(t *testing.T) {
	var ins code.Instructions
	ins = append(ins, code.Make(code.OpJump, 6)...) // pc 0, len 3
	ins = append(ins, code.Make(code.OpConstant, 1)...) // pc 3, len 3
	ins = append(ins, code.Make(code.OpConstant, 2)...) // pc 6, len 3 (jump target)

	out, err := MapInstrs(ins, func(v InstrView) []byte {
		if v.Op == code.OpConstant {
			return code.Make(code.OpConstantLong, v.Operands[0])
		}
		return v.Encode()
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	jumpView, err := DecodeAt(out, 0)
	if err != nil {
		t.Fatalf("unexpected error decoding rewritten jump: %s", err)
	}
	if jumpView.Op != code.OpJump {
		t.Fatalf("expected OpJump at pc 0, got %d", jumpView.Op)
	}

	// first OpConstant (width 2) became OpConstantLong (width 4): 3 -> 5
	// bytes, so the second instruction now starts at offset 3 + 5 = 8.
	wantTarget := 8
	if jumpView.Operands[0] != wantTarget {
		t.Errorf("jump target not fixed up. want=%d, got=%d", wantTarget, jumpView.Operands[0])
	}

	targetView, err := DecodeAt(out, jumpView.Operands[0])
	if err != nil {
		t.Fatalf("jump target does not land on an instruction boundary: %s", err)
	}
	if targetView.Op != code.OpConstantLong || targetView.Operands[0] != 2 {
		t.Errorf("jump did not land on the expected instruction: %+v", targetView)
	}
}

func TestMapInstrsInvalidJumpTarget(t *testing.T) {
	var ins code.Instructions
	ins = append(ins, code.Make(code.OpJump, 999)...)

	_, err := MapInstrs(ins, func(v InstrView) []byte { return v.Encode() })
	if err == nil {
		t.Fatal("expected an invalid jump target error")
	}
	if _, ok := err.(*InvalidJumpTarget); !ok {
		t.Errorf("expected *InvalidJumpTarget, got %T", err)
	}
}

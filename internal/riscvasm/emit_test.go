package riscvasm

import (
	"strings"
	"testing"

	"github.com/orizon-lang/orizon/internal/riscvlir"
)

func TestEmitArithRAndReturn(t *testing.T) {
	f := riscvlir.NewFunction("add")
	b := riscvlir.NewBasicBlock("add", "add")
	b.PushBack(riscvlir.ArithR{Op_: riscvlir.Add, Dst: riscvlir.A(0), LHS: riscvlir.A(0), RHS: riscvlir.A(1), Width: riscvlir.W4})
	b.PushBack(riscvlir.Return{Src: riscvlir.A(0), HasSrc: true})
	f.Blocks = []*riscvlir.BasicBlock{b}

	m := &riscvlir.Module{Name: "m", Functions: []*riscvlir.Function{f}}

	asm, err := Emit(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(asm, "add a0, a0, a1") {
		t.Fatalf("expected add instruction text, got:\n%s", asm)
	}

	if !strings.Contains(asm, "ret") {
		t.Fatalf("expected a plain ret (no SSA-flavored operand), got:\n%s", asm)
	}

	if strings.Contains(asm, "ret a0") {
		t.Fatalf("did not expect the debug-style 'ret a0' form in real assembly, got:\n%s", asm)
	}
}

func TestEmitCallOmitsArgsAlreadyMarshaledByLowering(t *testing.T) {
	f := riscvlir.NewFunction("caller")
	b := riscvlir.NewBasicBlock("caller", "caller")
	b.PushBack(riscvlir.Call{Dst: riscvlir.A(0), HasDst: true, Callee: "helper", Args: []riscvlir.Reg{riscvlir.A(0)}})
	b.PushBack(riscvlir.Return{Src: riscvlir.A(0), HasSrc: true})
	f.Blocks = []*riscvlir.BasicBlock{b}

	m := &riscvlir.Module{Name: "m", Functions: []*riscvlir.Function{f}}

	asm, err := Emit(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(asm, "call helper") {
		t.Fatalf("expected a plain call instruction, got:\n%s", asm)
	}

	if strings.Contains(asm, "= call") {
		t.Fatalf("did not expect the debug SSA-assignment form in real assembly, got:\n%s", asm)
	}
}

func TestEmitStackSlotUsesRealSPRelativeOffset(t *testing.T) {
	f := riscvlir.NewFunction("spills")
	b := riscvlir.NewBasicBlock("spills", "spills")
	slot := &riscvlir.StackSlot{Pos: 24, Size: 8}
	b.PushBack(riscvlir.StoreStack{Src: riscvlir.A(0), Slot: slot, Width: riscvlir.W8})
	b.PushBack(riscvlir.Return{HasSrc: false})
	f.Blocks = []*riscvlir.BasicBlock{b}

	m := &riscvlir.Module{Name: "m", Functions: []*riscvlir.Function{f}}

	asm, err := Emit(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(asm, "24(sp)") {
		t.Fatalf("expected a real 24(sp) operand, not a [slot@24] placeholder, got:\n%s", asm)
	}
}

func TestEmitLoadImmFloatExpandsToLuiAddiFmv(t *testing.T) {
	f := riscvlir.NewFunction("pi")
	b := riscvlir.NewBasicBlock("pi", "pi")
	b.PushBack(riscvlir.LoadImmFloat{Dst: riscvlir.FA(0), Imm: 3.14})
	b.PushBack(riscvlir.Return{Src: riscvlir.FA(0), HasSrc: true})
	f.Blocks = []*riscvlir.BasicBlock{b}

	m := &riscvlir.Module{Name: "m", Functions: []*riscvlir.Function{f}}

	asm, err := Emit(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"lui t6,", "addi t6, t6,", "fmv.w.x fa0, t6"} {
		if !strings.Contains(asm, want) {
			t.Fatalf("expected %q in the expanded float-immediate sequence, got:\n%s", want, asm)
		}
	}
}

func TestEmitGlobalArrayUsesZeroDirective(t *testing.T) {
	m := &riscvlir.Module{
		Name:    "m",
		Globals: []*riscvlir.Global{{Name: "buf", Kind: riscvlir.Int, IsArray: true, Len: 4}},
	}

	asm, err := Emit(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(asm, "buf:") || !strings.Contains(asm, ".zero 32") {
		t.Fatalf("expected a 4-element*8-byte zero-initialized array, got:\n%s", asm)
	}
}

func TestEmitQualifiesDuplicateBlockLabelsAcrossSpecializedClones(t *testing.T) {
	entry1 := riscvlir.NewBasicBlock("entry", "f")
	entry1.PushBack(riscvlir.Return{HasSrc: false})
	f1 := riscvlir.NewFunction("f")
	f1.Blocks = []*riscvlir.BasicBlock{entry1}

	entry2 := riscvlir.NewBasicBlock("entry", "f$clone1")
	entry2.PushBack(riscvlir.Return{HasSrc: false})
	f2 := riscvlir.NewFunction("f$clone1")
	f2.Blocks = []*riscvlir.BasicBlock{entry2}

	m := &riscvlir.Module{Name: "m", Functions: []*riscvlir.Function{f1, f2}}

	asm, err := Emit(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(asm, "f.entry:") || !strings.Contains(asm, "f$clone1.entry:") {
		t.Fatalf("expected function-qualified block labels for both clones, got:\n%s", asm)
	}
}

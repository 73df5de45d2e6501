package frame

import (
	"testing"

	"github.com/orizon-lang/orizon/internal/riscv"
	"github.com/orizon-lang/orizon/internal/riscvlir"
)

func buildLeafFunc() *riscvlir.Function {
	f := riscvlir.NewFunction("f")
	b := riscvlir.NewBasicBlock("entry", "f")
	b.PushBack(riscvlir.Return{Src: riscvlir.A(0), HasSrc: true})
	f.Blocks = []*riscvlir.BasicBlock{b}

	return f
}

func TestLayoutRoundsFrameTo16(t *testing.T) {
	f := buildLeafFunc()
	f.StackAddrPushBack(&riscvlir.StackSlot{Size: 8})

	size := Layout(f)
	if size%16 != 0 {
		t.Fatalf("expected frame size rounded to 16, got %d", size)
	}

	if size < 16 {
		t.Fatalf("expected at least ra slot + data slot, got %d", size)
	}
}

func TestReserveCalleeSaveSlotsBeforeLayoutIncludesThemInFrameSize(t *testing.T) {
	f := buildLeafFunc()
	f.CalleeSaved[riscvlir.P(18, riscvlir.Int)] = true // s2

	withoutCallee := Layout(buildLeafFunc())

	ReserveCalleeSaveSlots(f)
	withCallee := Layout(f)

	if withCallee <= withoutCallee {
		t.Fatalf("expected callee-save reservation to grow the frame: with=%d without=%d", withCallee, withoutCallee)
	}
}

func TestPrologueSkipsCalleeSavesForMain(t *testing.T) {
	f := riscvlir.NewFunction("main")
	f.CalleeSaved[riscvlir.P(18, riscvlir.Int)] = true

	out := Prologue(f, 16)
	for _, inst := range out {
		if ss, ok := inst.(riscvlir.StoreStack); ok && ss.Src == riscvlir.P(18, riscvlir.Int) {
			t.Fatalf("main must never save callee-saves, got %v", out)
		}
	}
}

func TestSpliceFramesInsertsPrologueAndEpilogueAroundReturn(t *testing.T) {
	f := buildLeafFunc()
	f.CalleeSaved[riscvlir.P(18, riscvlir.Int)] = true

	ReserveCalleeSaveSlots(f)
	frameSize := Layout(f)
	SpliceFrames(f, frameSize)

	b := f.Blocks[0]
	if len(b.Insts) == 0 {
		t.Fatalf("expected spliced instructions")
	}

	if _, ok := b.Insts[0].(riscvlir.ArithI); !ok {
		t.Fatalf("expected prologue's stack-allocate instruction first, got %v", b.Insts[0])
	}

	last := b.Insts[len(b.Insts)-1]
	if !riscvlir.IsReturn(last) {
		t.Fatalf("expected Return to remain the last instruction, got %v", last)
	}
}

func TestFixupOffsetsExpandsOversizedStackOffset(t *testing.T) {
	f := riscvlir.NewFunction("f")
	b := riscvlir.NewBasicBlock("entry", "f")
	slot := &riscvlir.StackSlot{Pos: 1 << 16, Size: 8}
	b.PushBack(riscvlir.LoadStack{Dst: riscvlir.A(0), Slot: slot, Width: riscvlir.W8})
	b.PushBack(riscvlir.Return{Src: riscvlir.A(0), HasSrc: true})
	f.Blocks = []*riscvlir.BasicBlock{b}

	FixupOffsets(f, riscv.NewDiagnostics())

	var sawLui bool

	for _, inst := range f.Blocks[0].Insts {
		if _, ok := inst.(riscvlir.Lui); ok {
			sawLui = true
		}
	}

	if !sawLui {
		t.Fatalf("expected oversized stack offset to expand via lui, got %v", f.Blocks[0].Insts)
	}
}

func TestFixupBranchesLeavesShortBranchesAlone(t *testing.T) {
	f := riscvlir.NewFunction("f")
	entry := riscvlir.NewBasicBlock("entry", "f")
	entry.PushBack(riscvlir.Branch{Pred: riscvlir.CmpEQ, LHS: riscvlir.A(0), RHS: riscvlir.A(1), Target: "exit"})
	entry.OutEdges = []string{"exit"}
	exit := riscvlir.NewBasicBlock("exit", "f")
	exit.PushBack(riscvlir.Return{HasSrc: false})
	f.Blocks = []*riscvlir.BasicBlock{entry, exit}

	before := len(f.Blocks)
	FixupBranches(f, true, riscv.NewDiagnostics())

	if len(f.Blocks) != before {
		t.Fatalf("expected no block split for an in-range branch, got %d blocks", len(f.Blocks))
	}
}

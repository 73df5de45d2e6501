package callsite

import (
	"testing"

	"github.com/orizon-lang/orizon/internal/riscv"
	"github.com/orizon-lang/orizon/internal/riscvlir"
)

func a(n int) riscvlir.Reg { return riscvlir.A(n) }

func buildCallAcrossFunc() *riscvlir.Function {
	f := riscvlir.NewFunction("f")
	b := riscvlir.NewBasicBlock("entry", "f")

	// a1 must survive the call, a0 is the call's argument.
	b.PushBack(riscvlir.ArithI{Op_: riscvlir.Add, Dst: a(1), LHS: riscvlir.Zero(), Imm: 5, Width: riscvlir.W8})
	b.PushBack(riscvlir.Call{Dst: a(0), HasDst: true, Callee: "helper", Args: []riscvlir.Reg{a(0)}})
	b.PushBack(riscvlir.ArithR{Op_: riscvlir.Add, Dst: a(0), LHS: a(0), RHS: a(1), Width: riscvlir.W8})
	b.PushBack(riscvlir.Return{Src: a(0), HasSrc: true})

	f.Blocks = []*riscvlir.BasicBlock{b}

	return f
}

func TestRewriteSimpleSavesAndRestoresAcrossCall(t *testing.T) {
	f := buildCallAcrossFunc()
	diag := riscv.NewDiagnostics()

	RewriteSimple(f, nil, diag)

	b := f.Blocks[0]

	var storeIdx, callIdx, loadIdx = -1, -1, -1

	for i, inst := range b.Insts {
		switch v := inst.(type) {
		case riscvlir.StoreStack:
			if v.Src == a(1) && storeIdx == -1 {
				storeIdx = i
			}
		case riscvlir.Call:
			callIdx = i
		case riscvlir.LoadStack:
			if v.Dst == a(1) && loadIdx == -1 {
				loadIdx = i
			}
		}
	}

	if storeIdx == -1 || callIdx == -1 || loadIdx == -1 {
		t.Fatalf("expected save/call/restore for a1, got %v", b.Insts)
	}

	if !(storeIdx < callIdx && callIdx < loadIdx) {
		t.Fatalf("expected save before call before restore, got store=%d call=%d load=%d", storeIdx, callIdx, loadIdx)
	}
}

func TestRewriteBorrowsFreeRegisterBeforeSpilling(t *testing.T) {
	f := buildCallAcrossFunc()
	diag := riscv.NewDiagnostics()

	Rewrite(f, nil, diag)

	b := f.Blocks[0]

	for _, inst := range b.Insts {
		if mv, ok := inst.(riscvlir.Move); ok && mv.Src == a(1) {
			return // found a borrow-based park, as expected when a free temp exists
		}
	}

	t.Fatalf("expected Rewrite to park a1 in a borrowed register, got %v", b.Insts)
}

func TestRewriteNeverBorrowsARegisterTheCalleeClobbers(t *testing.T) {
	f := buildCallAcrossFunc()
	diag := riscv.NewDiagnostics()

	t0 := riscvlir.P(5, riscvlir.Int)
	clobbered := riscvlir.NewRegSet(t0)
	info := func(string) riscvlir.RegSet { return clobbered }

	Rewrite(f, info, diag)

	b := f.Blocks[0]

	for _, inst := range b.Insts {
		if mv, ok := inst.(riscvlir.Move); ok && (mv.Dst == t0 || mv.Src == t0) {
			t.Fatalf("expected Rewrite to never borrow a register the callee's clobber set contains, got %v", b.Insts)
		}
	}
}

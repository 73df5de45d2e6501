package codegen

import (
	"fmt"

	"github.com/orizon-lang/orizon/internal/riscvlir"
	"github.com/orizon-lang/orizon/internal/rvmir"
)

// valueReg resolves a MIR value to the register holding it: an existing
// SSA binding for a Ref, or a memoized LoadImm for a literal (spec §4.4).
func (lw *lowerer) valueReg(v rvmir.Value) riscvlir.Reg {
	switch v.Kind {
	case rvmir.ValConstInt:
		return lw.loadConstInt(v.Int)
	case rvmir.ValConstFloat:
		return lw.loadConstFloat(v.Float)
	case rvmir.ValRef:
		if r, ok := lw.env[v.Ref]; ok {
			return r
		}

		r := lw.newVirt(classKind(v.Class))
		lw.env[v.Ref] = r

		return r
	default:
		return riscvlir.Zero()
	}
}

func (lw *lowerer) loadConstInt(v int64) riscvlir.Reg {
	if r, ok := lw.intConsts[v]; ok {
		return r
	}

	r := lw.newVirt(riscvlir.Int)
	lw.emit(riscvlir.LoadImmInt{Dst: r, Imm: v})
	lw.intConsts[v] = r

	return r
}

func (lw *lowerer) loadConstFloat(v float32) riscvlir.Reg {
	if r, ok := lw.floatConsts[v]; ok {
		return r
	}

	r := lw.newVirt(riscvlir.Float)
	lw.emit(riscvlir.LoadImmFloat{Dst: r, Imm: v})
	lw.floatConsts[v] = r

	return r
}

func arithOpFor(op rvmir.BinOpKind) riscvlir.ArithOp {
	switch op {
	case rvmir.OpAdd:
		return riscvlir.Add
	case rvmir.OpSub:
		return riscvlir.Sub
	case rvmir.OpMul:
		return riscvlir.Mul
	case rvmir.OpDiv:
		return riscvlir.Div
	case rvmir.OpMod:
		return riscvlir.Rem
	case rvmir.OpAnd:
		return riscvlir.And
	case rvmir.OpOr:
		return riscvlir.Or
	case rvmir.OpXor:
		return riscvlir.Xor
	case rvmir.OpShl:
		return riscvlir.Shl
	case rvmir.OpShr:
		return riscvlir.Shr
	default:
		panic(fmt.Sprintf("codegen: unhandled BinOpKind %v", op))
	}
}

func (lw *lowerer) lowerBinOp(b rvmir.BinOp) {
	dst := lw.newVirt(classKind(b.Class))

	switch b.Op {
	case rvmir.OpAdd, rvmir.OpSub:
		lw.lowerAddSub(b, dst)
	case rvmir.OpMod:
		lw.lowerMod(b, dst)
	default:
		lhs := lw.valueReg(b.LHS)
		rhs := lw.valueReg(b.RHS)
		lw.emit(riscvlir.ArithR{Op_: arithOpFor(b.Op), Dst: dst, LHS: lhs, RHS: rhs, Width: riscvlir.W4})
	}

	lw.bind(b.Dst, dst)
}

// lowerAddSub emits the immediate form when the RHS is a constant fitting
// a 12-bit signed immediate, rewriting a subtraction by that constant into
// an addition of its negation (spec §4.4). Falls back to the register
// form otherwise.
func (lw *lowerer) lowerAddSub(b rvmir.BinOp, dst riscvlir.Reg) {
	if b.RHS.Kind == rvmir.ValConstInt {
		imm := b.RHS.Int
		op := riscvlir.Add

		if b.Op == rvmir.OpSub {
			imm = -imm
		}

		if riscvlir.FitsSigned12(imm) {
			lhs := lw.valueReg(b.LHS)
			lw.emit(riscvlir.ArithI{Op_: op, Dst: dst, LHS: lhs, Imm: imm, Width: riscvlir.W4})

			return
		}
	}

	op := riscvlir.Add
	if b.Op == rvmir.OpSub {
		op = riscvlir.Sub
	}

	lhs := lw.valueReg(b.LHS)
	rhs := lw.valueReg(b.RHS)
	lw.emit(riscvlir.ArithR{Op_: op, Dst: dst, LHS: lhs, RHS: rhs, Width: riscvlir.W4})
}

// lowerMod short-circuits the well-known constant divisors: remainder by
// zero or by ±1 is always zero (spec §4.4).
func (lw *lowerer) lowerMod(b rvmir.BinOp, dst riscvlir.Reg) {
	if b.RHS.Kind == rvmir.ValConstInt {
		switch b.RHS.Int {
		case 0, 1, -1:
			lw.emit(riscvlir.Move{Dst: dst, Src: riscvlir.Zero(), Width: riscvlir.W4})
			return
		}
	}

	lhs := lw.valueReg(b.LHS)
	rhs := lw.valueReg(b.RHS)
	lw.emit(riscvlir.ArithR{Op_: riscvlir.Rem, Dst: dst, LHS: lhs, RHS: rhs, Width: riscvlir.W4})
}

func (lw *lowerer) lowerUnary(u rvmir.Unary) {
	if u.Src.Kind == rvmir.ValConstInt {
		v := u.Src.Int

		switch u.Op {
		case rvmir.OpNeg:
			v = -v
		case rvmir.OpNot:
			v = ^v
		}

		lw.bind(u.Dst, lw.loadConstInt(v))

		return
	}

	if u.Src.Kind == rvmir.ValConstFloat && u.Op == rvmir.OpNeg {
		lw.bind(u.Dst, lw.loadConstFloat(-u.Src.Float))
		return
	}

	src := lw.valueReg(u.Src)
	dst := lw.newVirt(classKind(u.Class))

	switch u.Op {
	case rvmir.OpNeg:
		lw.emit(riscvlir.Neg{Dst: dst, Src: src, Width: riscvlir.W4})
	case rvmir.OpNot:
		lw.emit(riscvlir.Not{Dst: dst, Src: src, Width: riscvlir.W4})
	case rvmir.OpPos:
		lw.emit(riscvlir.Move{Dst: dst, Src: src, Width: riscvlir.W4})
	}

	lw.bind(u.Dst, dst)
}

// lowerCmp materializes a Cmp's 0/1 result using set-less-than idioms
// (spec §4.4): slt directly for LT/GT, sub+sltiu (seqz) for EQ, sub+sltu
// (snez) for NE, and slt+xori for LE/GE. It also records the comparison
// so a later CondBr consuming this exact value can fuse it into a single
// Branch instead of materializing and then testing the 0/1 result.
func (lw *lowerer) lowerCmp(c rvmir.Cmp) {
	lw.cmpDefs[c.Dst] = c

	lhs := lw.valueReg(c.LHS)
	rhs := lw.valueReg(c.RHS)
	dst := lw.newVirt(riscvlir.Int)

	switch c.Pred {
	case rvmir.CmpEQ:
		tmp := lw.newVirt(riscvlir.Int)
		lw.emit(riscvlir.ArithR{Op_: riscvlir.Sub, Dst: tmp, LHS: lhs, RHS: rhs, Width: riscvlir.W4})
		lw.emit(riscvlir.ArithI{Op_: riscvlir.Sltu, Dst: dst, LHS: tmp, Imm: 1, Width: riscvlir.W4})
	case rvmir.CmpNE:
		tmp := lw.newVirt(riscvlir.Int)
		lw.emit(riscvlir.ArithR{Op_: riscvlir.Sub, Dst: tmp, LHS: lhs, RHS: rhs, Width: riscvlir.W4})
		lw.emit(riscvlir.ArithR{Op_: riscvlir.Sltu, Dst: dst, LHS: riscvlir.Zero(), RHS: tmp, Width: riscvlir.W4})
	case rvmir.CmpLT:
		lw.emit(riscvlir.ArithR{Op_: riscvlir.Slt, Dst: dst, LHS: lhs, RHS: rhs, Width: riscvlir.W4})
	case rvmir.CmpGT:
		lw.emit(riscvlir.ArithR{Op_: riscvlir.Slt, Dst: dst, LHS: rhs, RHS: lhs, Width: riscvlir.W4})
	case rvmir.CmpLE:
		tmp := lw.newVirt(riscvlir.Int)
		lw.emit(riscvlir.ArithR{Op_: riscvlir.Slt, Dst: tmp, LHS: rhs, RHS: lhs, Width: riscvlir.W4})
		lw.emit(riscvlir.ArithI{Op_: riscvlir.Xor, Dst: dst, LHS: tmp, Imm: 1, Width: riscvlir.W4})
	case rvmir.CmpGE:
		tmp := lw.newVirt(riscvlir.Int)
		lw.emit(riscvlir.ArithR{Op_: riscvlir.Slt, Dst: tmp, LHS: lhs, RHS: rhs, Width: riscvlir.W4})
		lw.emit(riscvlir.ArithI{Op_: riscvlir.Xor, Dst: dst, LHS: tmp, Imm: 1, Width: riscvlir.W4})
	}

	lw.bind(c.Dst, dst)
}

// lowerAlloca reserves the backing stack slot for a local array (or a
// scalar whose address is taken), exposes it under a synthesized label
// via LoadAddr, and records the base for subsequent GEPs (spec §4.4).
func (lw *lowerer) lowerAlloca(a rvmir.Alloca) {
	elemBytes := int64(4)
	size := ((int64(a.Len)*elemBytes + 7) / 8) * 8

	if size == 0 {
		size = 8
	}

	slot := &riscvlir.StackSlot{Size: size}
	lw.fn.StackAddrPushBack(slot)
	lw.allocaSlots[a.Dst] = slot

	label := fmt.Sprintf("%s.alloca.%s", lw.fn.Label, a.Dst)
	addr := lw.newVirt(riscvlir.Int)
	lw.emit(riscvlir.LoadAddr{Dst: addr, Label: label})
	lw.emit(riscvlir.StoreParamStack{Src: addr, Slot: slot, Width: riscvlir.W8})
	lw.bind(a.Dst, addr)
}

// gepBaseReg returns a register holding base's address: reloaded from the
// alloca's recorded slot if base names a local array, otherwise base's
// already-lowered value (itself an address, for chained GEPs, globals, or
// pointer parameters).
func (lw *lowerer) gepBaseReg(base rvmir.Value) riscvlir.Reg {
	if base.Kind == rvmir.ValRef {
		if slot, ok := lw.allocaSlots[base.Ref]; ok {
			r := lw.newVirt(riscvlir.Int)
			lw.emit(riscvlir.LoadParamStack{Dst: r, Slot: slot, Width: riscvlir.W8})

			return r
		}
	}

	return lw.valueReg(base)
}

// lowerGEP computes Base + Index*elemSize(Class) into a fresh address
// register, folding a constant index into an immediate add (spec §4.4).
func (lw *lowerer) lowerGEP(g rvmir.GEP) {
	baseReg := lw.gepBaseReg(g.Base)
	dst := lw.newVirt(riscvlir.Int)
	const elemSize = int64(4)

	if g.Index.Kind == rvmir.ValConstInt {
		off := g.Index.Int * elemSize

		switch {
		case off == 0:
			lw.emit(riscvlir.Move{Dst: dst, Src: baseReg, Width: riscvlir.W8})
		case riscvlir.FitsSigned12(off):
			lw.emit(riscvlir.ArithI{Op_: riscvlir.Add, Dst: dst, LHS: baseReg, Imm: off, Width: riscvlir.W8})
		default:
			hi, lo := riscvlir.HiLo(off)
			tmp := lw.newVirt(riscvlir.Int)
			lw.emit(riscvlir.Lui{Dst: tmp, Imm: hi})
			lw.emit(riscvlir.ArithI{Op_: riscvlir.Add, Dst: tmp, LHS: tmp, Imm: lo, Width: riscvlir.W8})
			lw.emit(riscvlir.ArithR{Op_: riscvlir.Add, Dst: dst, LHS: baseReg, RHS: tmp, Width: riscvlir.W8})
		}

		lw.bind(g.Dst, dst)

		return
	}

	idxReg := lw.valueReg(g.Index)
	scaled := idxReg

	if elemSize != 1 {
		scaled = lw.newVirt(riscvlir.Int)
		lw.emit(riscvlir.ArithI{Op_: riscvlir.Shl, Dst: scaled, LHS: idxReg, Imm: 2, Width: riscvlir.W8})
	}

	lw.emit(riscvlir.ArithR{Op_: riscvlir.Add, Dst: dst, LHS: baseReg, RHS: scaled, Width: riscvlir.W8})
	lw.bind(g.Dst, dst)
}

func (lw *lowerer) lowerLoad(l rvmir.Load) {
	addr := lw.valueReg(l.Addr)
	dst := lw.newVirt(classKind(l.Class))
	lw.emit(riscvlir.Load{Dst: dst, Base: addr, Offset: 0, Width: riscvlir.W4})
	lw.bind(l.Dst, dst)
}

func (lw *lowerer) lowerStore(s rvmir.Store) {
	addr := lw.valueReg(s.Addr)
	val := lw.valueReg(s.Val)
	lw.emit(riscvlir.Store{Src: val, Base: addr, Offset: 0, Width: riscvlir.W4})
}

func (lw *lowerer) lowerLoadGlobal(g rvmir.LoadGlobal) {
	if r, ok := lw.globalAddrs[g.Name]; ok {
		lw.bind(g.Dst, r)
		return
	}

	r := lw.newVirt(riscvlir.Int)
	lw.emit(riscvlir.LoadGlobal{Dst: r, Name: g.Name})
	lw.globalAddrs[g.Name] = r
	lw.bind(g.Dst, r)
}

// lowerCall marshals arguments per the RV64 psABI: the first 8 values of
// each class go into a0-a7/fa0-fa7, the rest spill to the outgoing
// argument area. Caller-save spill/restore across the call itself is left
// to the C8 callsite pass, which runs once operands are physical — see
// DESIGN.md (spec §4.4 describes that traffic as part of lowering, but at
// C4 time every operand is still virtual).
func (lw *lowerer) lowerCall(c rvmir.Call) {
	intIdx, floatIdx := 0, 0

	var args []riscvlir.Reg

	for i, av := range c.Args {
		class := rvmir.Int32
		if i < len(c.ArgClasses) {
			class = c.ArgClasses[i]
		}

		v := lw.valueReg(av)

		if class == rvmir.Float32 {
			if floatIdx < 8 {
				phys := riscvlir.FA(floatIdx)
				floatIdx++
				lw.emit(riscvlir.Move{Dst: phys, Src: v, Width: riscvlir.W4})
				args = append(args, phys)
			} else {
				slot := &riscvlir.StackSlot{Size: 8}
				lw.fn.StackAddrPushBack(slot)
				lw.emit(riscvlir.StoreParamStack{Src: v, Slot: slot, Width: riscvlir.W4})
			}
		} else {
			if intIdx < 8 {
				phys := riscvlir.A(intIdx)
				intIdx++
				lw.emit(riscvlir.Move{Dst: phys, Src: v, Width: riscvlir.W4})
				args = append(args, phys)
			} else {
				slot := &riscvlir.StackSlot{Size: 8}
				lw.fn.StackAddrPushBack(slot)
				lw.emit(riscvlir.StoreParamStack{Src: v, Slot: slot, Width: riscvlir.W4})
			}
		}
	}

	call := riscvlir.Call{Callee: c.Callee, Args: args}

	if c.HasDst {
		retPhys := riscvlir.A(0)
		if c.RetClass == rvmir.Float32 {
			retPhys = riscvlir.FA(0)
		}

		call.Dst = retPhys
		call.HasDst = true
		lw.emit(call)

		dst := lw.newVirt(classKind(c.RetClass))
		lw.emit(riscvlir.Move{Dst: dst, Src: retPhys, Width: riscvlir.W4})
		lw.bind(c.Dst, dst)

		return
	}

	lw.emit(call)
}

func (lw *lowerer) lowerJump(j rvmir.Jump, nextLabel string) {
	if j.Target == nextLabel {
		return
	}

	lw.emit(riscvlir.Jump{Target: j.Target})
}

func mirPredToLIR(p rvmir.CmpPred) riscvlir.CmpPred {
	switch p {
	case rvmir.CmpEQ:
		return riscvlir.CmpEQ
	case rvmir.CmpNE:
		return riscvlir.CmpNE
	case rvmir.CmpLT:
		return riscvlir.CmpLT
	case rvmir.CmpLE:
		return riscvlir.CmpLE
	case rvmir.CmpGT:
		return riscvlir.CmpGT
	default:
		return riscvlir.CmpGE
	}
}

func invertPred(p riscvlir.CmpPred) riscvlir.CmpPred {
	switch p {
	case riscvlir.CmpEQ:
		return riscvlir.CmpNE
	case riscvlir.CmpNE:
		return riscvlir.CmpEQ
	case riscvlir.CmpLT:
		return riscvlir.CmpGE
	case riscvlir.CmpLE:
		return riscvlir.CmpGT
	case riscvlir.CmpGT:
		return riscvlir.CmpLE
	default:
		return riscvlir.CmpLT
	}
}

// fuseCmp reports whether cond is exactly the result of an earlier Cmp in
// this function, returning that comparison's operands and predicate so
// lowerCondBr can fold it directly into a Branch rather than testing a
// materialized 0/1 value (spec §4.4).
func (lw *lowerer) fuseCmp(cond rvmir.Value) (riscvlir.CmpPred, riscvlir.Reg, riscvlir.Reg, bool) {
	if cond.Kind != rvmir.ValRef {
		return 0, riscvlir.Reg{}, riscvlir.Reg{}, false
	}

	c, ok := lw.cmpDefs[cond.Ref]
	if !ok {
		return 0, riscvlir.Reg{}, riscvlir.Reg{}, false
	}

	return mirPredToLIR(c.Pred), lw.valueReg(c.LHS), lw.valueReg(c.RHS), true
}

// lowerCondBr emits a fused Branch targeting the MIR false-successor
// (inverting the predicate, since Branch's own semantics are "taken =>
// Target"), followed by a Jump to the true-successor elided when it is
// next in layout order (spec §4.4).
func (lw *lowerer) lowerCondBr(c rvmir.CondBr, nextLabel string) {
	var (
		pred     riscvlir.CmpPred
		lhs, rhs riscvlir.Reg
	)

	if p, l, r, ok := lw.fuseCmp(c.Cond); ok {
		pred, lhs, rhs = invertPred(p), l, r
	} else {
		pred, lhs, rhs = riscvlir.CmpEQ, lw.valueReg(c.Cond), riscvlir.Zero()
	}

	lw.emit(riscvlir.Branch{Pred: pred, LHS: lhs, RHS: rhs, Target: c.False})
	lw.lowerJump(rvmir.Jump{Target: c.True}, nextLabel)
}

func (lw *lowerer) lowerReturn(r rvmir.Return) {
	if !r.HasVal {
		lw.emit(riscvlir.Return{HasSrc: false})
		return
	}

	v := lw.valueReg(r.Val)
	dst := riscvlir.A(0)

	if r.Class == rvmir.Float32 {
		dst = riscvlir.FA(0)
	}

	lw.emit(riscvlir.Move{Dst: dst, Src: v, Width: riscvlir.W4})
	lw.emit(riscvlir.Return{Src: dst, HasSrc: true})
}

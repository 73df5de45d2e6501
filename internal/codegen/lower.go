// Package codegen drives MIR->LIR lowering (C4) and the rest of the
// back-end pipeline (spec §4.4, §4.11). LowerFunction turns one rvmir
// function, in program order, into a riscvlir function ready for
// liveness/regalloc; LowerModule does the same for every function and
// global in a compilation unit.
package codegen

import (
	"fmt"

	"github.com/orizon-lang/orizon/internal/riscv"
	"github.com/orizon-lang/orizon/internal/riscvlir"
	"github.com/orizon-lang/orizon/internal/rvmir"
)

func classKind(c rvmir.Class) riscvlir.Kind {
	if c == rvmir.Float32 {
		return riscvlir.Float
	}

	return riscvlir.Int
}

// lowerer carries the per-function state C4 needs: the SSA name -> virtual
// register environment, constant memoization tables (spec §4.4's "all
// constants are memoized... per function"), the alloca/global address
// caches, and bookkeeping for phi resolution and branch fusion.
type lowerer struct {
	fn  *riscvlir.Function
	mfn *rvmir.Function
	opts *riscv.Options

	env         map[string]riscvlir.Reg
	intConsts   map[int64]riscvlir.Reg
	floatConsts map[float32]riscvlir.Reg
	globalAddrs map[string]riscvlir.Reg
	allocaSlots map[string]*riscvlir.StackSlot
	cmpDefs     map[string]rvmir.Cmp

	nextVirt    int
	cur         *riscvlir.BasicBlock
	phisByBlock map[string][]rvmir.Phi
	paramPrefix []riscvlir.Insn
}

// LowerModule lowers every global and function in m (spec §4.4, §3).
func LowerModule(m *rvmir.Module, opts *riscv.Options) *riscvlir.Module {
	if opts == nil {
		opts = riscv.NewOptions()
	}

	out := &riscvlir.Module{Name: m.Name}

	for _, g := range m.Globals {
		out.Globals = append(out.Globals, lowerGlobal(g))
	}

	for _, f := range m.Functions {
		out.Functions = append(out.Functions, LowerFunction(f, opts))
	}

	return out
}

func lowerGlobal(g *rvmir.GlobalVar) *riscvlir.Global {
	out := &riscvlir.Global{
		Name:    g.Name,
		Kind:    classKind(g.Class),
		IsArray: g.Kind == rvmir.GlobalArray,
		Len:     g.Len,
		Const:   g.Const,
	}

	for _, v := range g.Init {
		switch v.Kind {
		case rvmir.ValConstInt:
			out.IntInit = append(out.IntInit, v.Int)
		case rvmir.ValConstFloat:
			out.FloatInit = append(out.FloatInit, v.Float)
		}
	}

	return out
}

// LowerFunction lowers a single MIR function to LIR (spec §4.4, C4).
func LowerFunction(mf *rvmir.Function, opts *riscv.Options) *riscvlir.Function {
	f := riscvlir.NewFunction(mf.Name)
	f.IsExtern = mf.IsExtern

	lw := &lowerer{
		fn:          f,
		mfn:         mf,
		opts:        opts,
		env:         map[string]riscvlir.Reg{},
		intConsts:   map[int64]riscvlir.Reg{},
		floatConsts: map[float32]riscvlir.Reg{},
		globalAddrs: map[string]riscvlir.Reg{},
		allocaSlots: map[string]*riscvlir.StackSlot{},
		cmpDefs:     map[string]rvmir.Cmp{},
		nextVirt:    32,
		phisByBlock: map[string][]rvmir.Phi{},
	}

	lw.bindParams(mf)

	if mf.IsExtern {
		return f
	}

	for idx, mb := range mf.Blocks {
		nextLabel := ""
		if idx+1 < len(mf.Blocks) {
			nextLabel = mf.Blocks[idx+1].Label
		}

		nb := lw.lowerBlock(mb, nextLabel)
		f.Blocks = append(f.Blocks, nb)
	}

	if len(f.Blocks) > 0 {
		f.Blocks[0].Insts = append(append([]riscvlir.Insn{}, lw.paramPrefix...), f.Blocks[0].Insts...)
	}

	lw.resolveEdges()
	lw.resolvePhis()

	return f
}

func (lw *lowerer) newVirt(k riscvlir.Kind) riscvlir.Reg {
	r := riscvlir.V(lw.nextVirt, k)
	lw.nextVirt++

	return r
}

func (lw *lowerer) emit(i riscvlir.Insn) { lw.cur.PushBack(i) }

func (lw *lowerer) bind(name string, r riscvlir.Reg) { lw.env[name] = r }

// bindParams assigns each incoming parameter its ABI-fixed physical home
// (a0-a7/fa0-fa7, or an incoming stack slot past the eighth of a class),
// then moves it into a fresh virtual so the rest of lowering only ever
// deals in virtuals (spec §4.4, §6's psABI argument marshaling, mirrored
// in reverse for Call's outgoing side).
func (lw *lowerer) bindParams(mf *rvmir.Function) {
	intIdx, floatIdx := 0, 0

	for _, p := range mf.Params {
		k := classKind(p.Class)

		var v riscvlir.Reg

		if p.Class == rvmir.Float32 {
			if floatIdx < 8 {
				phys := riscvlir.FA(floatIdx)
				floatIdx++
				lw.fn.Params = append(lw.fn.Params, phys)
				v = lw.newVirt(k)
				lw.paramPrefix = append(lw.paramPrefix, riscvlir.Move{Dst: v, Src: phys, Width: riscvlir.W4})
			} else {
				slot := &riscvlir.StackSlot{Size: 8}
				lw.fn.StackAddrPushBack(slot)
				v = lw.newVirt(k)
				lw.paramPrefix = append(lw.paramPrefix, riscvlir.LoadParamStack{Dst: v, Slot: slot, Width: riscvlir.W4})
			}
		} else {
			if intIdx < 8 {
				phys := riscvlir.A(intIdx)
				intIdx++
				lw.fn.Params = append(lw.fn.Params, phys)
				v = lw.newVirt(k)
				lw.paramPrefix = append(lw.paramPrefix, riscvlir.Move{Dst: v, Src: phys, Width: riscvlir.W4})
			} else {
				slot := &riscvlir.StackSlot{Size: 8}
				lw.fn.StackAddrPushBack(slot)
				v = lw.newVirt(k)
				lw.paramPrefix = append(lw.paramPrefix, riscvlir.LoadParamStack{Dst: v, Slot: slot, Width: riscvlir.W4})
			}
		}

		lw.env[p.Name] = v
	}
}

func (lw *lowerer) lowerBlock(mb *rvmir.BasicBlock, nextLabel string) *riscvlir.BasicBlock {
	nb := riscvlir.NewBasicBlock(mb.Label, lw.fn.Label)
	lw.cur = nb

	var phis []rvmir.Phi

	for _, inst := range mb.Insts {
		switch i := inst.(type) {
		case rvmir.Phi:
			r := lw.newVirt(classKind(i.Class))
			lw.bind(i.Dst, r)
			phis = append(phis, i)
		case rvmir.BinOp:
			lw.lowerBinOp(i)
		case rvmir.Unary:
			lw.lowerUnary(i)
		case rvmir.Cmp:
			lw.lowerCmp(i)
		case rvmir.Alloca:
			lw.lowerAlloca(i)
		case rvmir.GEP:
			lw.lowerGEP(i)
		case rvmir.Load:
			lw.lowerLoad(i)
		case rvmir.Store:
			lw.lowerStore(i)
		case rvmir.LoadGlobal:
			lw.lowerLoadGlobal(i)
		case rvmir.Call:
			lw.lowerCall(i)
		case rvmir.Jump:
			lw.lowerJump(i, nextLabel)
		case rvmir.CondBr:
			lw.lowerCondBr(i, nextLabel)
		case rvmir.Return:
			lw.lowerReturn(i)
		default:
			panic(fmt.Sprintf("codegen: unhandled MIR instruction %T", inst))
		}
	}

	lw.phisByBlock[mb.Label] = phis

	return nb
}

// resolveEdges derives every block's OutEdges from its terminator (a Jump's
// single target, a Branch's target plus the layout-order fallthrough, or
// nothing for Return) and builds InEdges as the reverse mapping.
func (lw *lowerer) resolveEdges() {
	f := lw.fn

	for i, b := range f.Blocks {
		var outs []string

		if len(b.Insts) > 0 {
			switch t := b.Insts[len(b.Insts)-1].(type) {
			case riscvlir.Jump:
				outs = []string{t.Target}
			case riscvlir.Branch:
				outs = append(outs, t.Target)

				if i+1 < len(f.Blocks) {
					outs = append(outs, f.Blocks[i+1].Label)
				}
			case riscvlir.Return:
			default:
				if i+1 < len(f.Blocks) {
					outs = []string{f.Blocks[i+1].Label}
				}
			}
		}

		b.OutEdges = outs
	}

	for _, b := range f.Blocks {
		for _, t := range b.OutEdges {
			if tb := f.Block(t); tb != nil {
				tb.InEdges = append(tb.InEdges, b.Label)
			}
		}
	}
}

// regMove is one dst<-src copy that must happen simultaneously with every
// other regMove sharing its predecessor, since together they model several
// phis reading the same incoming edge at once.
type regMove struct {
	dst, src riscvlir.Reg
}

// resolvePhis inserts, in each predecessor, the moves needed to carry every
// incoming value into its phi's destination virtual immediately before that
// predecessor's terminator (spec §4.4). Phis sharing a predecessor are
// resolved together as one parallel copy via sequentializeMoves rather than
// one at a time, so a loop-carried two-variable swap (two phis in the same
// block whose incoming values are each other's destinations) still produces
// the right result instead of one move clobbering a value the other still
// needs.
func (lw *lowerer) resolvePhis() {
	for _, phis := range lw.phisByBlock {
		if len(phis) == 0 {
			continue
		}

		prep := map[string][]riscvlir.Insn{}
		moves := map[string][]regMove{}

		var predOrder []string

		for _, phi := range phis {
			dst := lw.env[phi.Dst]

			for _, inc := range phi.Incoming {
				pred := lw.fn.Block(inc.Pred)
				if pred == nil || len(pred.Insts) == 0 {
					continue
				}

				// Lower the incoming value into a scratch block first: a
				// not-yet-memoized constant would otherwise append its
				// LoadImm after pred's terminator via the ordinary emit
				// path. valueReg only ever reads an already-bound register
				// or defines a fresh one, so this prep never touches a
				// register any phi move below also targets.
				scratch := riscvlir.NewBasicBlock("", "")
				lw.cur = scratch
				v := lw.valueReg(inc.Val)

				if _, ok := moves[inc.Pred]; !ok {
					predOrder = append(predOrder, inc.Pred)
				}

				prep[inc.Pred] = append(prep[inc.Pred], scratch.Insts...)
				moves[inc.Pred] = append(moves[inc.Pred], regMove{dst: dst, src: v})
			}
		}

		for _, predLabel := range predOrder {
			pred := lw.fn.Block(predLabel)
			seq := sequentializeMoves(moves[predLabel], lw.newVirt)

			spliced := append(append([]riscvlir.Insn{}, prep[predLabel]...), seq...)

			at := len(pred.Insts) - 1
			for j, inst := range spliced {
				pred.InsertBefore(at+j, inst)
			}
		}
	}
}

// sequentializeMoves schedules a set of simultaneous dst<-src register
// copies into a correct sequential Move order. A dst is safe to overwrite
// as soon as nothing still needs its old value; once every dst still
// pending forms a cycle (each waiting on another pending dst), one node's
// current value is saved into a fresh temp and its dependents are
// redirected to read the temp, which frees that node to receive its own
// pending value and lets the rest of the cycle drain.
func sequentializeMoves(moves []regMove, newVirt func(riscvlir.Kind) riscvlir.Reg) []riscvlir.Insn {
	src := map[riscvlir.Reg]riscvlir.Reg{}

	var dsts []riscvlir.Reg

	for _, mv := range moves {
		if mv.dst == mv.src {
			continue
		}

		if _, seen := src[mv.dst]; !seen {
			dsts = append(dsts, mv.dst)
		}

		src[mv.dst] = mv.src
	}

	useCount := map[riscvlir.Reg]int{}
	for _, s := range src {
		useCount[s]++
	}

	// loc[r] tracks where the value originally held by r currently lives:
	// itself, until some earlier move relocates it into a temp to break a
	// cycle.
	loc := map[riscvlir.Reg]riscvlir.Reg{}
	for _, dst := range dsts {
		loc[dst] = dst
	}

	var ready []riscvlir.Reg

	for _, dst := range dsts {
		if useCount[dst] == 0 {
			ready = append(ready, dst)
		}
	}

	done := map[riscvlir.Reg]bool{}

	var out []riscvlir.Insn

	for len(done) < len(dsts) {
		for len(ready) > 0 {
			dst := ready[len(ready)-1]
			ready = ready[:len(ready)-1]

			if done[dst] {
				continue
			}

			s := src[dst]

			realSrc, ok := loc[s]
			if !ok {
				realSrc = s
			}

			out = append(out, riscvlir.Move{Dst: dst, Src: realSrc, Width: riscvlir.W4})
			done[dst] = true
			loc[s] = dst
			useCount[s]--

			if useCount[s] == 0 {
				if _, isDst := src[s]; isDst && !done[s] {
					ready = append(ready, s)
				}
			}
		}

		if len(done) == len(dsts) {
			break
		}

		for _, dst := range dsts {
			if done[dst] {
				continue
			}

			tmp := newVirt(dst.Kind)
			out = append(out, riscvlir.Move{Dst: tmp, Src: dst, Width: riscvlir.W4})
			loc[dst] = tmp
			ready = append(ready, dst)

			break
		}
	}

	return out
}

// Package callsite inserts the save/restore traffic a call site needs to
// protect caller-save values that stay live across it (spec §4.8, C8).
// Two engines are ported from handle_call.rs: RewriteSimple always spills
// to a dedicated stack slot (v3), while Rewrite tries to borrow another
// free physical register first and only falls back to the stack when the
// pool is exhausted (v4, the default per riscv.Options).
package callsite

import (
	"sort"

	"github.com/orizon-lang/orizon/internal/codegen/liveness"
	"github.com/orizon-lang/orizon/internal/riscv"
	"github.com/orizon-lang/orizon/internal/riscvlir"
)

// CalleeInfo answers what physical registers a call to name might clobber
// and what it reads/writes directly — supplied by the module driver once
// it has walked the call graph (spec §4.11). A nil CalleeInfo treats every
// call as clobbering the full caller-save set, the conservative default.
type CalleeInfo func(name string) riscvlir.RegSet

func callerSaveLiveAcross(live riscvlir.RegSet, info CalleeInfo, callee string) []riscvlir.Reg {
	var clobbered riscvlir.RegSet
	if info != nil {
		clobbered = info(callee)
	}

	var out []riscvlir.Reg

	for r := range live {
		if !r.IsPhysical() || r.ID == 1 || !riscvlir.IsCallerSave(r.ID) {
			continue
		}

		if clobbered != nil && !clobbered.Contains(r) {
			continue // callee provably never touches this one
		}

		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// RewriteSimple is the v3 engine: every caller-save register live across a
// call gets its own persistent stack slot, stored immediately before the
// call and reloaded immediately after.
func RewriteSimple(f *riscvlir.Function, info CalleeInfo, diag *riscv.Diagnostics) {
	liveness.Compute(f)

	slots := map[riscvlir.Reg]*riscvlir.StackSlot{}

	slotFor := func(r riscvlir.Reg) *riscvlir.StackSlot {
		if s, ok := slots[r]; ok {
			return s
		}

		s := &riscvlir.StackSlot{Size: 8}
		f.StackAddrPushBack(s)
		slots[r] = s

		return s
	}

	for _, b := range f.Blocks {
		var out []riscvlir.Insn

		liveness.WalkBackward(b, func(il liveness.InstLive) {
			call, ok := il.Inst.(riscvlir.Call)
			if !ok {
				out = append(out, il.Inst)
				return
			}

			toSave := callerSaveLiveAcross(il.LiveNow, info, call.Callee)

			// WalkBackward visits tail-to-head and out is reversed once at
			// the end of the block, so a group's parts must be pushed in
			// the REVERSE of their intended final order: push the
			// restores first so they land after the call, then the call,
			// then the saves so they land before it.
			for _, r := range toSave {
				out = append(out, riscvlir.LoadStack{Dst: r, Slot: slotFor(r), Width: riscvlir.W8})
				diag.RecordCallerSave(f.Label, b.Label, "restore "+r.String()+" after call to "+call.Callee)
			}

			out = append(out, call)

			for _, r := range toSave {
				out = append(out, riscvlir.StoreStack{Src: r, Slot: slotFor(r), Width: riscvlir.W8})
				diag.RecordCallerSave(f.Label, b.Label, "save "+r.String()+" across call to "+call.Callee)
			}
		})

		reverseInsts(out)
		b.Insts = out
	}
}

// Rewrite is the v4 engine: it first tries to park each live caller-save
// value in a physical register the call site provably won't touch
// (neither an argument, nor the callee's clobber set, nor anything else
// live across the call), and only spills to the stack when no such
// register remains (spec §4.8).
func Rewrite(f *riscvlir.Function, info CalleeInfo, diag *riscv.Diagnostics) {
	liveness.Compute(f)

	slots := map[riscvlir.Reg]*riscvlir.StackSlot{}

	slotFor := func(r riscvlir.Reg) *riscvlir.StackSlot {
		if s, ok := slots[r]; ok {
			return s
		}

		s := &riscvlir.StackSlot{Size: 8}
		f.StackAddrPushBack(s)
		slots[r] = s

		return s
	}

	for _, b := range f.Blocks {
		var out []riscvlir.Insn

		liveness.WalkBackward(b, func(il liveness.InstLive) {
			call, ok := il.Inst.(riscvlir.Call)
			if !ok {
				out = append(out, il.Inst)
				return
			}

			toSave := callerSaveLiveAcross(il.LiveNow, info, call.Callee)

			var clobbered riscvlir.RegSet
			if info != nil {
				clobbered = info(call.Callee)
			}

			borrowable := borrowableRegs(il.LiveNow, call, clobbered)

			type parking struct {
				reg    riscvlir.Reg
				tmpReg riscvlir.Reg
				hasReg bool
				slot   *riscvlir.StackSlot
			}

			var parks []parking

			for _, r := range toSave {
				if tmp, ok := borrowable.GetAvailable(r.Kind); ok {
					borrowable.Use(tmp)
					parks = append(parks, parking{reg: r, tmpReg: tmp, hasReg: true})
				} else {
					parks = append(parks, parking{reg: r, slot: slotFor(r)})
				}
			}

			// Same reverse-push trick as RewriteSimple: push the
			// post-call restores first, then the call, then the pre-call
			// parks, so the single end-of-block reverse puts them back in
			// the correct park/call/restore order.
			for i := len(parks) - 1; i >= 0; i-- {
				p := parks[i]
				if p.hasReg {
					out = append(out, riscvlir.Move{Dst: p.reg, Src: p.tmpReg, Width: riscvlir.W8})
				} else {
					out = append(out, riscvlir.LoadStack{Dst: p.reg, Slot: p.slot, Width: riscvlir.W8})
				}
			}

			out = append(out, call)

			for _, p := range parks {
				if p.hasReg {
					out = append(out, riscvlir.Move{Dst: p.tmpReg, Src: p.reg, Width: riscvlir.W8})
					diag.RecordCallerSave(f.Label, b.Label, "borrow "+p.tmpReg.String()+" to park "+p.reg.String()+" across call to "+call.Callee)
				} else {
					out = append(out, riscvlir.StoreStack{Src: p.reg, Slot: p.slot, Width: riscvlir.W8})
					diag.RecordCallerSave(f.Label, b.Label, "spill "+p.reg.String()+" across call to "+call.Callee+" (no free register to borrow)")
				}
			}
		})

		reverseInsts(out)
		b.Insts = out
	}
}

// borrowableRegs starts from every non-reserved register and marks
// unavailable: everything live across the call, the call's own arg
// registers, the call's destination (if any), and every caller-save
// register the callee's clobber set says it may touch — what's left is
// safe to clobber as a temporary parking spot. Callee-save ids are never
// excluded here even if clobbered: the callee's own prologue/epilogue
// restores them before returning, so a caller-save value parked there
// survives the call regardless of what the callee does to it internally.
func borrowableRegs(live riscvlir.RegSet, call riscvlir.Call, clobbered riscvlir.RegSet) riscvlir.RegUsedStat {
	s := riscvlir.InitUnspecialRegs()

	for r := range live {
		s.Use(r)
	}

	for _, a := range call.Args {
		s.Use(a)
	}

	if call.HasDst {
		s.Use(call.Dst)
	}

	for r := range clobbered {
		if r.IsPhysical() && riscvlir.IsCallerSave(r.ID) {
			s.Use(r)
		}
	}

	return s
}

// reverseInsts reverses insts in place — WalkBackward visits tail to
// head, and within each call site the parts were appended in the forward
// order we want to end up with reversed relative to block-building.
func reverseInsts(insts []riscvlir.Insn) {
	for i, j := 0, len(insts)-1; i < j; i, j = i+1, j-1 {
		insts[i], insts[j] = insts[j], insts[i]
	}
}

// Package liveness computes block-level live-in/live-out sets and
// per-instruction live-now traversal for a LIR function (spec §4.5, C5).
// It is the shared foundation the allocator (C6), the spill rewriter
// (C7), and the call-site pass (C8) all build on.
package liveness

import "github.com/orizon-lang/orizon/internal/riscvlir"

// Reserved is the set of physical register IDs that are permanently live
// in every block, per spec invariant 4: zero, ra, sp, gp, tp, and s0.
var Reserved = []int{0, 1, 2, 3, 4, 8}

// Compute runs the backward dataflow fixpoint over f's blocks, filling in
// LiveUse/LiveDef/LiveIn/LiveOut on every block, then unions Reserved into
// every live-in/live-out set so the allocator can never recolor them
// (spec §4.5's final step, matching the original's
// calc_live_for_handle_call/calc_live_for_handle_spill).
func Compute(f *riscvlir.Function) {
	computeUseDef(f)

	changed := true
	for changed {
		changed = false

		for _, b := range f.Blocks {
			newOut := riscvlir.RegSet{}
			for _, succLabel := range b.OutEdges {
				succ := f.Block(succLabel)
				if succ == nil {
					continue
				}

				for r := range succ.LiveIn {
					newOut[r] = struct{}{}
				}
			}

			newIn := b.LiveUse.Clone()
			for r := range newOut {
				if !b.LiveDef.Contains(r) {
					newIn[r] = struct{}{}
				}
			}

			if !equalSets(newIn, b.LiveIn) || !equalSets(newOut, b.LiveOut) {
				changed = true
			}

			b.LiveIn = newIn
			b.LiveOut = newOut
		}
	}

	addReserved(f)
}

func addReserved(f *riscvlir.Function) {
	for _, b := range f.Blocks {
		if b.LiveIn == nil {
			b.LiveIn = riscvlir.RegSet{}
		}

		if b.LiveOut == nil {
			b.LiveOut = riscvlir.RegSet{}
		}

		for _, id := range Reserved {
			b.LiveIn.Add(riscvlir.P(id, riscvlir.Int))
			b.LiveOut.Add(riscvlir.P(id, riscvlir.Int))
		}
	}
}

// computeUseDef derives each block's local live_use (read before any
// local def) and live_def (defined somewhere in the block) summaries.
func computeUseDef(f *riscvlir.Function) {
	for _, b := range f.Blocks {
		use := riscvlir.RegSet{}
		def := riscvlir.RegSet{}

		for _, inst := range b.Insts {
			for _, r := range riscvlir.UseRegs(inst) {
				if !def.Contains(r) {
					use.Add(r)
				}
			}

			for _, r := range riscvlir.DefRegs(inst) {
				def.Add(r)
			}
		}

		b.LiveUse = use
		b.LiveDef = def
	}
}

func equalSets(a, b riscvlir.RegSet) bool {
	if len(a) != len(b) {
		return false
	}

	for r := range a {
		if !b.Contains(r) {
			return false
		}
	}

	return true
}

// InstLive pairs an instruction with the live-now set immediately before
// it (excludes its own defs, includes its own uses) — spec §4.5's
// per-instruction backward traversal.
type InstLive struct {
	Inst    riscvlir.Insn
	Index   int
	LiveNow riscvlir.RegSet
}

// WalkBackward calls visit once per instruction in b, tail to head,
// starting live-now from b.LiveOut. Every call-site analysis (C8) and
// spill-choice heuristic (C7) is built on this traversal (spec §4.5).
func WalkBackward(b *riscvlir.BasicBlock, visit func(InstLive)) {
	live := b.LiveOut.Clone()

	for idx := len(b.Insts) - 1; idx >= 0; idx-- {
		inst := b.Insts[idx]

		for _, r := range riscvlir.DefRegs(inst) {
			live.Remove(r)
		}

		visit(InstLive{Inst: inst, Index: idx, LiveNow: live.Clone()})

		for _, r := range riscvlir.UseRegs(inst) {
			live.Add(r)
		}
	}
}

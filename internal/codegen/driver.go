package codegen

import (
	"fmt"

	"github.com/orizon-lang/orizon/internal/codegen/callsite"
	"github.com/orizon-lang/orizon/internal/codegen/frame"
	"github.com/orizon-lang/orizon/internal/codegen/liveness"
	"github.com/orizon-lang/orizon/internal/codegen/regalloc"
	"github.com/orizon-lang/orizon/internal/codegen/specialize"
	"github.com/orizon-lang/orizon/internal/codegen/spill"
	"github.com/orizon-lang/orizon/internal/riscv"
	"github.com/orizon-lang/orizon/internal/riscvlir"
	"github.com/orizon-lang/orizon/internal/rvmir"
)

// Compile runs the full back end over one MIR module: lowering (C4),
// register allocation to fixpoint (C5-C7), call-site save/restore (C8),
// function specialization (C9), frame layout with overflow fixup (C10),
// and a final per-function Verify pass — the module driver described in
// spec §4.11.
func Compile(m *rvmir.Module, opts *riscv.Options) (*riscvlir.Module, *riscv.Diagnostics, error) {
	if opts == nil {
		opts = riscv.NewOptions()
	}

	diag := riscv.NewDiagnostics()
	lir := LowerModule(m, opts)

	for _, f := range lir.Functions {
		if f.IsExtern {
			continue
		}

		if err := allocateToFixpoint(f, opts, diag); err != nil {
			return nil, diag, riscv.Wrap(f.Label, "", "", err)
		}

		assignCalleeSaved(f)
	}

	clobber := computeClobberSets(lir)
	calleeInfo := func(name string) riscvlir.RegSet { return clobber[name] }

	for _, f := range lir.Functions {
		if f.IsExtern {
			continue
		}

		if opts.SimpleCallerSaveFallback {
			callsite.RewriteSimple(f, calleeInfo, diag)
		} else {
			callsite.Rewrite(f, calleeInfo, diag)
		}
	}

	sites := collectCallSites(lir)
	usedRegs := func(name string) map[riscvlir.Reg]bool { return toRegBoolMap(clobber[name]) }
	specialize.Specialize(lir, sites, usedRegs, diag)

	for _, f := range lir.Functions {
		if f.IsExtern {
			continue
		}

		frame.ReserveCalleeSaveSlots(f)
		frameSize := frame.Layout(f)
		frame.SpliceFrames(f, frameSize)
		frame.FixupOffsets(f, diag)
		frame.FixupBranches(f, opts.ExpandBranchOverflow, diag)
	}

	for _, f := range lir.Functions {
		if err := Verify(f); err != nil {
			return nil, diag, riscv.Wrap(f.Label, "", "", err)
		}
	}

	return lir, diag, nil
}

// allocateToFixpoint repeats liveness -> build -> coalesce -> allocate ->
// spill-rewrite until a coloring with no spills is found or MaxSpillRetries
// is exhausted (spec §4.6-§4.7's iterated allocator).
func allocateToFixpoint(f *riscvlir.Function, opts *riscv.Options, diag *riscv.Diagnostics) error {
	for attempt := 0; attempt < opts.MaxSpillRetries; attempt++ {
		liveness.Compute(f)

		g := regalloc.Build(f)

		coalesced := g.Coalesce(f)
		for old, new := range coalesced {
			f.ReplaceReg(old, new)
		}

		liveness.Compute(f)
		g = regalloc.Build(f)
		result := regalloc.Allocate(g)

		if len(result.Spills) == 0 {
			for old, new := range result.Colors {
				f.ReplaceReg(old, new)
			}

			return nil
		}

		spill.Rewrite(f, result.Spills, diag)
	}

	return fmt.Errorf("exceeded %d spill-rewrite retries without reaching a valid coloring", opts.MaxSpillRetries)
}

// assignCalleeSaved records which callee-save physical registers f's own
// instructions actually define, once allocation has replaced every virtual
// with a physical register (spec §4.9's input to specialization).
func assignCalleeSaved(f *riscvlir.Function) {
	for _, b := range f.Blocks {
		for _, inst := range b.Insts {
			for _, r := range riscvlir.DefRegs(inst) {
				if r.IsPhysical() && riscvlir.IsCalleeSave(r.ID) {
					f.CalleeSaved[r] = true
				}
			}
		}
	}
}

// computeClobberSets returns, per function, the set of physical registers
// it or any function reachable from it (by direct or transitive call) may
// define — the conservative clobber set callsite.CalleeInfo and
// specialize's usedRegs both need (spec §4.11). Mutually- or
// self-recursive call graphs are handled by iterating direct-union-of-
// successors to an actual fixpoint rather than a single memoized
// depth-first walk: a DFS that returns an empty set the moment it
// re-enters a function already on the current path under-approximates
// every other function waiting on that result, since the in-progress
// function hasn't finished accumulating its own direct set yet.
func computeClobberSets(m *riscvlir.Module) map[string]riscvlir.RegSet {
	direct := map[string]riscvlir.RegSet{}
	calls := map[string][]string{}

	for _, f := range m.Functions {
		set := riscvlir.NewRegSet()

		for _, b := range f.Blocks {
			for _, inst := range b.Insts {
				for _, r := range riscvlir.DefRegs(inst) {
					if r.IsPhysical() {
						set.Add(r)
					}
				}

				if call, ok := inst.(riscvlir.Call); ok {
					calls[f.Label] = append(calls[f.Label], call.Callee)
				}
			}
		}

		direct[f.Label] = set
	}

	out := map[string]riscvlir.RegSet{}
	for name, set := range direct {
		out[name] = set.Clone()
	}

	for changed := true; changed; {
		changed = false

		for _, f := range m.Functions {
			merged := out[f.Label]

			for _, callee := range calls[f.Label] {
				calleeSet, ok := out[callee]
				if !ok {
					continue
				}

				for r := range calleeSet {
					if !merged.Contains(r) {
						merged.Add(r)
						changed = true
					}
				}
			}
		}
	}

	return out
}

func toRegBoolMap(s riscvlir.RegSet) map[riscvlir.Reg]bool {
	out := map[riscvlir.Reg]bool{}
	for r := range s {
		out[r] = true
	}

	return out
}

// collectCallSites gathers, for every call instruction in the module, the
// callee-save registers live across it — the context specialize.Specialize
// groups by (spec §4.9).
func collectCallSites(m *riscvlir.Module) []specialize.CallSite {
	var sites []specialize.CallSite

	for _, f := range m.Functions {
		if f.IsExtern {
			continue
		}

		liveness.Compute(f)

		for _, b := range f.Blocks {
			liveness.WalkBackward(b, func(il liveness.InstLive) {
				call, ok := il.Inst.(riscvlir.Call)
				if !ok {
					return
				}

				live := riscvlir.NewRegSet()

				for r := range il.LiveNow {
					if r.IsPhysical() && riscvlir.IsCalleeSave(r.ID) {
						live.Add(r)
					}
				}

				sites = append(sites, specialize.CallSite{
					CallerFunc:  f.Label,
					Block:       b.Label,
					InstIndex:   il.Index,
					Callee:      call.Callee,
					LiveCallees: live,
				})
			})
		}
	}

	return sites
}

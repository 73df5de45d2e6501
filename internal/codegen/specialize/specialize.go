// Package specialize implements function splitting (spec §4.9, C9):
// cloning a callee once per distinct required callee-save bitmap so each
// clone's prologue/epilogue only preserves the registers its actual call
// sites need, grounded on real_deep_clone in handle_call.rs.
package specialize

import (
	"fmt"
	"sort"

	"github.com/orizon-lang/orizon/internal/riscv"
	"github.com/orizon-lang/orizon/internal/riscvlir"
)

// CallSite identifies one call instruction by function/block/index so the
// specializer can retarget it after cloning.
type CallSite struct {
	CallerFunc  string
	Block       string
	InstIndex   int
	Callee      string
	LiveCallees riscvlir.RegSet // callee-save registers live at this call site
}

// bitmapKey renders a RegSet intersected with used into a stable, sorted
// string so distinct call sites that need the same saved set share a
// clone (spec §4.9's "groups call sites by this bitmap").
func bitmapKey(live riscvlir.RegSet, used map[riscvlir.Reg]bool) string {
	var ids []int

	for r := range live {
		if used[r] {
			ids = append(ids, r.ID)
		}
	}

	sort.Ints(ids)

	return fmt.Sprintf("%v", ids)
}

func bitmapSet(live riscvlir.RegSet, used map[riscvlir.Reg]bool) riscvlir.RegSet {
	out := riscvlir.RegSet{}

	for r := range live {
		if used[r] {
			out.Add(r)
		}
	}

	return out
}

// Specialize clones each non-main function in m once per distinct
// required callee-save context among its call sites, retargets matching
// call sites to the clone, and returns the updated module. usedRegs
// reports the callee-save registers f itself (recursively) touches —
// supplied by the driver's used-register closure (spec §4.11).
func Specialize(m *riscvlir.Module, sites []CallSite, usedRegs func(fn string) map[riscvlir.Reg]bool, diag *riscv.Diagnostics) {
	byCallee := map[string][]CallSite{}
	for _, cs := range sites {
		byCallee[cs.Callee] = append(byCallee[cs.Callee], cs)
	}

	for calleeName, callSites := range byCallee {
		if calleeName == "main" {
			continue // spec §4.9: main never specializes, it may use any register freely
		}

		callee := m.FunctionByName(calleeName)
		if callee == nil || callee.IsExtern {
			continue
		}

		used := usedRegs(calleeName)

		groups := map[string][]CallSite{}
		bitmaps := map[string]riscvlir.RegSet{}

		for _, cs := range callSites {
			key := bitmapKey(cs.LiveCallees, used)
			groups[key] = append(groups[key], cs)
			bitmaps[key] = bitmapSet(cs.LiveCallees, used)
		}

		if len(groups) <= 1 {
			// Single context: the original function already serves every
			// call site, no clone needed. Still pin its callee-saved set.
			for key, bm := range bitmaps {
				callee.CalleeSaved = toBoolMap(bm)
				diag.RecordSpecialize(calleeName, "", fmt.Sprintf("single context %s, no clone needed", key))
			}

			continue
		}

		keys := make([]string, 0, len(groups))
		for key := range groups {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for gi, key := range keys {
			bm := bitmaps[key]

			var target *riscvlir.Function

			if gi == 0 {
				// First group keeps the original function identity.
				target = callee
				target.CalleeSaved = toBoolMap(bm)
			} else {
				suffix := fmt.Sprintf(".spec%d", gi)
				target = deepClone(callee, calleeName+suffix)
				target.CalleeSaved = toBoolMap(bm)
				m.Functions = append(m.Functions, target)
			}

			diag.RecordSpecialize(calleeName, "", fmt.Sprintf("context %s -> %s", key, target.Label))

			for _, cs := range groups[key] {
				retarget(m, cs, target.Label)
			}
		}
	}
}

func toBoolMap(s riscvlir.RegSet) map[riscvlir.Reg]bool {
	out := map[riscvlir.Reg]bool{}
	for r := range s {
		out[r] = true
	}

	return out
}

// deepClone copies f's blocks, instructions, stack state, and spill map
// under a new name, clearing IsHeader on the clone (spec §4.9: "is_header
// cleared on non-first clones").
func deepClone(f *riscvlir.Function, newName string) *riscvlir.Function {
	clone := riscvlir.NewFunction(newName)
	clone.Params = append([]riscvlir.Reg(nil), f.Params...)
	clone.EntryLabel = f.EntryLabel
	clone.IsExtern = f.IsExtern
	clone.IsHeader = false

	labelSuffix := "$" + newName

	renamed := map[string]string{}
	for _, b := range f.Blocks {
		renamed[b.Label] = b.Label + labelSuffix
	}

	for _, b := range f.Blocks {
		nb := riscvlir.NewBasicBlock(renamed[b.Label], newName)

		for _, in := range b.InEdges {
			nb.InEdges = append(nb.InEdges, renamed[in])
		}

		for _, out := range b.OutEdges {
			nb.OutEdges = append(nb.OutEdges, renamed[out])
		}

		for _, inst := range b.Insts {
			nb.PushBack(relabelAll(inst, renamed))
		}

		clone.Blocks = append(clone.Blocks, nb)
	}

	clone.StackAddr = append([]*riscvlir.StackSlot(nil), f.StackAddr...)

	for r, s := range f.SpillStackMap {
		clone.SpillStackMap[r] = s
	}

	return clone
}

// relabelAll rewrites every block-label operand an instruction carries
// (jump/branch targets) through renamed, leaving non-label instructions
// untouched.
func relabelAll(inst riscvlir.Insn, renamed map[string]string) riscvlir.Insn {
	switch i := inst.(type) {
	case riscvlir.Jump:
		if n, ok := renamed[i.Target]; ok {
			i.Target = n
		}

		return i
	case riscvlir.Branch:
		if n, ok := renamed[i.Target]; ok {
			i.Target = n
		}

		return i
	default:
		return inst
	}
}

// retarget rewrites the call instruction named by cs to call newCallee
// instead, leaving every other operand untouched.
func retarget(m *riscvlir.Module, cs CallSite, newCallee string) {
	caller := m.FunctionByName(cs.CallerFunc)
	if caller == nil {
		return
	}

	b := caller.Block(cs.Block)
	if b == nil || cs.InstIndex >= len(b.Insts) {
		return
	}

	call, ok := b.Insts[cs.InstIndex].(riscvlir.Call)
	if !ok {
		return
	}

	call.Callee = newCallee
	b.Insts[cs.InstIndex] = call
}

// Package spill rewrites a function's spilled virtual registers into
// explicit stack traffic around a small borrowed-register pool, using a
// Belady "farthest next use" heuristic to pick which resident value to
// evict when the pool is full (spec §4.7, C7; grounded in
// handle_spill.rs's choose_borrow/borrow/return_reg trio).
package spill

import (
	"sort"

	"github.com/orizon-lang/orizon/internal/riscv"
	"github.com/orizon-lang/orizon/internal/riscvlir"
)

// scratchPoolSize bounds how many spilled values may be resident in
// physical registers at once within a block. Small and fixed rather than
// drawn from the full allocatable set: the pool exists only to host
// spill traffic, never competing with the allocator's own assignment for
// non-spilled virtuals.
const scratchPoolSize = 3

func scratchPool(k riscvlir.Kind) []riscvlir.Reg {
	// t3-t5 for ints, ft8-ft10 for floats: deliberately away from the
	// argument/return registers so spill code never disturbs a call's
	// marshaling area.
	var ids []int
	if k == riscvlir.Int {
		ids = []int{28, 29, 30}
	} else {
		ids = []int{29, 30, 31}
	}

	out := make([]riscvlir.Reg, len(ids))
	for i, id := range ids {
		out[i] = riscvlir.P(id, k)
	}

	return out
}

// occurrence is one future reference to a spilled register within a
// block, encoded the way handle_spill.rs does: index<<1 | isDef, so a
// farther-away reference always sorts after a nearer one, and at equal
// index a def (cheaper to evict — its old value isn't needed) sorts
// after a use.
type occurrence struct {
	index int
	isDef bool
}

func (o occurrence) key() int {
	k := o.index << 1
	if o.isDef {
		k |= 1
	}

	return k
}

// Rewrite mutates f in place, replacing every operand referencing a
// register in spilled with a borrowed physical register, inserting the
// stack loads/stores that keep values coherent across borrows. f must
// already carry fresh liveness (liveness.Compute) and a spill set from
// regalloc.Allocate.
func Rewrite(f *riscvlir.Function, spilled map[riscvlir.Reg]bool, diag *riscv.Diagnostics) {
	if len(spilled) == 0 {
		return
	}

	for r := range spilled {
		if _, ok := f.SpillStackMap[r]; !ok {
			slot := &riscvlir.StackSlot{Size: 8}
			f.StackAddrPushBack(slot)
			f.SpillStackMap[r] = slot
		}
	}

	for _, b := range f.Blocks {
		rewriteBlock(f, b, spilled, diag)
	}
}

func rewriteBlock(f *riscvlir.Function, b *riscvlir.BasicBlock, spilled map[riscvlir.Reg]bool, diag *riscv.Diagnostics) {
	occurs := buildOccurrences(b, spilled)

	holder := map[riscvlir.Reg]riscvlir.Reg{}   // scratch physical -> spilled virtual it currently holds
	rentedBy := map[riscvlir.Reg]riscvlir.Reg{} // spilled virtual -> scratch physical it's borrowing

	pools := map[riscvlir.Kind][]riscvlir.Reg{
		riscvlir.Int:   scratchPool(riscvlir.Int),
		riscvlir.Float: scratchPool(riscvlir.Float),
	}

	term := b.Terminator()
	limit := len(b.Insts)

	if term != nil && (riscvlir.IsBranch(term) || riscvlir.IsJump(term) || riscvlir.IsReturn(term)) {
		limit--
	}

	var out []riscvlir.Insn

	for idx := 0; idx < limit; idx++ {
		inst := b.Insts[idx]

		advanceOccurrences(occurs, idx)

		inst = borrowOperands(f, b, inst, idx, spilled, occurs, holder, rentedBy, pools, &out, diag)
		out = append(out, inst)

		releaseExpired(f, b, occurs, holder, rentedBy, &out, diag)
	}

	// Anything still borrowed at block end that's live-out must return to
	// its stack slot (spec §4.7's block-boundary flush).
	for virt, phys := range rentedBy {
		if b.LiveOut.Contains(virt) {
			slot := f.SpillStackMap[virt]
			out = append(out, riscvlir.StoreStack{Src: phys, Slot: slot, Width: riscvlir.W8})
			diag.RecordSpill(f.Label, b.Label, "flush "+virt.String()+" to its spill slot at block exit")
		}
	}

	if term != nil && limit < len(b.Insts) {
		out = append(out, term)
	}

	b.Insts = out
}

func buildOccurrences(b *riscvlir.BasicBlock, spilled map[riscvlir.Reg]bool) map[riscvlir.Reg][]occurrence {
	occurs := map[riscvlir.Reg][]occurrence{}

	for idx, inst := range b.Insts {
		for _, r := range riscvlir.UseRegs(inst) {
			if spilled[r] {
				occurs[r] = append(occurs[r], occurrence{index: idx, isDef: false})
			}
		}

		for _, r := range riscvlir.DefRegs(inst) {
			if spilled[r] {
				occurs[r] = append(occurs[r], occurrence{index: idx, isDef: true})
			}
		}
	}

	return occurs
}

func advanceOccurrences(occurs map[riscvlir.Reg][]occurrence, idx int) {
	for r, q := range occurs {
		for len(q) > 0 && q[0].index <= idx {
			q = q[1:]
		}

		occurs[r] = q
	}
}

// borrowOperands ensures every spilled register this instruction touches
// has a resident physical register, evicting via farthest-next-use when
// the pool is full, then returns inst with those operands replaced.
func borrowOperands(
	f *riscvlir.Function,
	b *riscvlir.BasicBlock,
	inst riscvlir.Insn,
	idx int,
	spilled map[riscvlir.Reg]bool,
	occurs map[riscvlir.Reg][]occurrence,
	holder map[riscvlir.Reg]riscvlir.Reg,
	rentedBy map[riscvlir.Reg]riscvlir.Reg,
	pools map[riscvlir.Kind][]riscvlir.Reg,
	out *[]riscvlir.Insn,
	diag *riscv.Diagnostics,
) riscvlir.Insn {
	defs := map[riscvlir.Reg]bool{}
	for _, r := range riscvlir.DefRegs(inst) {
		defs[r] = true
	}

	for _, r := range riscvlir.AllRegs(inst) {
		if !spilled[r] {
			continue
		}

		if _, already := rentedBy[r]; already {
			continue
		}

		phys := acquire(f, b, r, occurs, holder, rentedBy, pools[r.Kind], out, diag)

		if !defs[r] {
			slot := f.SpillStackMap[r]
			*out = append(*out, riscvlir.LoadStack{Dst: phys, Slot: slot, Width: riscvlir.W8})
			diag.RecordSpill(f.Label, b.Label, "reload "+r.String()+" into "+phys.String())
		}

		holder[phys] = r
		rentedBy[r] = phys
	}

	for _, r := range riscvlir.AllRegs(inst) {
		if phys, ok := rentedBy[r]; ok {
			inst = riscvlir.ReplaceReg(inst, r, phys)
		}
	}

	return inst
}

// acquire returns a scratch physical register for virt, evicting the
// resident whose next occurrence is farthest away (ties favor evicting a
// def, since its stale value needn't be preserved).
func acquire(
	f *riscvlir.Function,
	b *riscvlir.BasicBlock,
	virt riscvlir.Reg,
	occurs map[riscvlir.Reg][]occurrence,
	holder map[riscvlir.Reg]riscvlir.Reg,
	rentedBy map[riscvlir.Reg]riscvlir.Reg,
	pool []riscvlir.Reg,
	out *[]riscvlir.Insn,
	diag *riscv.Diagnostics,
) riscvlir.Reg {
	for _, phys := range pool {
		if _, busy := holder[phys]; !busy {
			return phys
		}
	}

	type choice struct {
		phys riscvlir.Reg
		virt riscvlir.Reg
		key  int
	}

	var choices []choice

	for phys, resident := range holder {
		q := occurs[resident]

		key := 1<<62 | 1 // nothing left => treat as infinitely far, def-flavored
		if len(q) > 0 {
			key = q[0].key()
		}

		choices = append(choices, choice{phys: phys, virt: resident, key: key})
	}

	sort.Slice(choices, func(i, j int) bool { return choices[i].key < choices[j].key })

	victim := choices[len(choices)-1]

	q := occurs[victim.virt]
	if len(q) == 0 || !q[0].isDef {
		slot := f.SpillStackMap[victim.virt]
		*out = append(*out, riscvlir.StoreStack{Src: victim.phys, Slot: slot, Width: riscvlir.W8})
		diag.RecordSpill(f.Label, b.Label, "evict "+victim.virt.String()+" from "+victim.phys.String()+" back to its spill slot")
	}

	delete(holder, victim.phys)
	delete(rentedBy, victim.virt)

	return victim.phys
}

// releaseExpired drops any borrow whose spilled register has no further
// occurrence left in the block (nothing to flush — a later block-exit
// flush handles live-out values).
func releaseExpired(
	f *riscvlir.Function,
	b *riscvlir.BasicBlock,
	occurs map[riscvlir.Reg][]occurrence,
	holder map[riscvlir.Reg]riscvlir.Reg,
	rentedBy map[riscvlir.Reg]riscvlir.Reg,
	out *[]riscvlir.Insn,
	diag *riscv.Diagnostics,
) {
	for virt, phys := range rentedBy {
		if len(occurs[virt]) > 0 {
			continue
		}

		if b.LiveOut.Contains(virt) {
			slot := f.SpillStackMap[virt]
			*out = append(*out, riscvlir.StoreStack{Src: phys, Slot: slot, Width: riscvlir.W8})
			diag.RecordSpill(f.Label, b.Label, "flush "+virt.String()+" early, no further use this block")
		}

		delete(holder, phys)
		delete(rentedBy, virt)
	}
}

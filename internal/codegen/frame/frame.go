// Package frame finalizes a function's stack layout and fixes up
// operands that no longer fit their instruction encoding once that
// layout is known: oversized load/store offsets and overlong branch
// displacements (spec §4.10, C10). It runs last, after every spill and
// call-site decision is final.
package frame

import (
	"github.com/orizon-lang/orizon/internal/riscv"
	"github.com/orizon-lang/orizon/internal/riscvlir"
)

const stackAlign = 16

// raSlotSize is the 8 bytes always reserved for the return address, laid
// out first so every callee-save slot sits at a fixed offset from it.
const raSlotSize = 8

// ReserveCalleeSaveSlots appends one persistent 8-byte stack slot per
// register in f.CalleeSaved, keyed in f.SpillStackMap so Prologue and
// Epilogue agree on which slot holds which register. Must run before
// Layout, or the callee-save area never makes it into frame_size.
func ReserveCalleeSaveSlots(f *riscvlir.Function) {
	if f.Label == "main" {
		return
	}

	for r := range f.CalleeSaved {
		calleeSaveSlot(f, r)
	}
}

// Layout assigns every stack slot in f a final SP-relative offset and
// rounds the frame to a 16-byte boundary (spec §4.10's first two steps).
// Call ReserveCalleeSaveSlots first so its slots are included. Returns
// the final frame size.
func Layout(f *riscvlir.Function) int64 {
	var size int64 = raSlotSize

	for _, slot := range f.StackAddr {
		slot.Pos = size
		size += slot.Size
	}

	if rem := size % stackAlign; rem != 0 {
		size += stackAlign - rem
	}

	return size
}

// Prologue builds the instruction sequence that allocates the frame and
// saves ra plus every callee-save register f actually uses (spec §4.10).
// main never gets callee-save spill/restore (spec §4.9).
func Prologue(f *riscvlir.Function, frameSize int64) []riscvlir.Insn {
	var out []riscvlir.Insn

	out = append(out, allocateFrame(-frameSize)...)
	out = append(out, riscvlir.StoreStack{Src: riscvlir.RA(), Slot: &riscvlir.StackSlot{Pos: 0, Size: 8}, Width: riscvlir.W8})

	if f.Label == "main" {
		return out
	}

	for r := range f.CalleeSaved {
		slot := calleeSaveSlot(f, r)
		out = append(out, riscvlir.StoreStack{Src: r, Slot: slot, Width: riscvlir.W8})
	}

	return out
}

// Epilogue builds the reverse of Prologue, to be spliced in immediately
// before every Return instruction.
func Epilogue(f *riscvlir.Function, frameSize int64) []riscvlir.Insn {
	var out []riscvlir.Insn

	if f.Label != "main" {
		for r := range f.CalleeSaved {
			slot := calleeSaveSlot(f, r)
			out = append(out, riscvlir.LoadStack{Dst: r, Slot: slot, Width: riscvlir.W8})
		}
	}

	out = append(out, riscvlir.LoadStack{Dst: riscvlir.RA(), Slot: &riscvlir.StackSlot{Pos: 0, Size: 8}, Width: riscvlir.W8})
	out = append(out, allocateFrame(frameSize)...)

	return out
}

// calleeSaveSlot gives every callee-save register its own persistent
// frame slot, appended once and reused by every prologue/epilogue pair.
func calleeSaveSlot(f *riscvlir.Function, r riscvlir.Reg) *riscvlir.StackSlot {
	if f.SpillStackMap == nil {
		f.SpillStackMap = map[riscvlir.Reg]*riscvlir.StackSlot{}
	}

	if s, ok := f.SpillStackMap[r]; ok {
		return s
	}

	s := &riscvlir.StackSlot{Size: 8}
	f.StackAddrPushBack(s)
	f.SpillStackMap[r] = s

	return s
}

func allocateFrame(delta int64) []riscvlir.Insn {
	if riscvlir.FitsSigned12(delta) {
		return []riscvlir.Insn{riscvlir.ArithI{Op_: riscvlir.Add, Dst: riscvlir.SP(), LHS: riscvlir.SP(), Imm: delta, Width: riscvlir.W8}}
	}

	hi, lo := riscvlir.HiLo(delta)
	tmp := riscvlir.P(30, riscvlir.Int) // t5: riscvlir.IsFixupScratch, excluded from allocation

	return []riscvlir.Insn{
		riscvlir.Lui{Dst: tmp, Imm: hi},
		riscvlir.ArithI{Op_: riscvlir.Add, Dst: tmp, LHS: tmp, Imm: lo, Width: riscvlir.W8},
		riscvlir.ArithR{Op_: riscvlir.Add, Dst: riscvlir.SP(), LHS: riscvlir.SP(), RHS: tmp, Width: riscvlir.W8},
	}
}

// SpliceFrames inserts the prologue at the entry block's head and an
// epilogue immediately before every Return (spec §4.10).
func SpliceFrames(f *riscvlir.Function, frameSize int64) {
	prologue := Prologue(f, frameSize)
	epilogue := Epilogue(f, frameSize)
	entry := f.FirstBlock()

	for _, b := range f.Blocks {
		var out []riscvlir.Insn

		if b == entry {
			out = append(out, prologue...)
		}

		for _, inst := range b.Insts {
			if riscvlir.IsReturn(inst) {
				out = append(out, epilogue...)
			}

			out = append(out, inst)
		}

		b.Insts = out
	}
}

// FixupOffsets rewrites any Load/Store/LoadStack/StoreStack whose final
// offset exceeds the 12-bit signed immediate range into an
// lui+add+memop(0) sequence using a scratch integer register (spec
// §4.10's overflow fixup).
func FixupOffsets(f *riscvlir.Function, diag *riscv.Diagnostics) {
	tmp := riscvlir.P(29, riscvlir.Int) // t4: riscvlir.IsFixupScratch, distinct from the frame-size temp

	for _, b := range f.Blocks {
		var out []riscvlir.Insn

		for _, inst := range b.Insts {
			switch i := inst.(type) {
			case riscvlir.Load:
				if riscvlir.FitsSigned12(i.Offset) {
					out = append(out, i)
					continue
				}

				out = append(out, expandBase(tmp, i.Base, i.Offset)...)
				out = append(out, riscvlir.Load{Dst: i.Dst, Base: tmp, Offset: 0, Width: i.Width})
				diag.RecordSpill(f.Label, b.Label, "expanded oversized load offset via lui/add")
			case riscvlir.Store:
				if riscvlir.FitsSigned12(i.Offset) {
					out = append(out, i)
					continue
				}

				out = append(out, expandBase(tmp, i.Base, i.Offset)...)
				out = append(out, riscvlir.Store{Src: i.Src, Base: tmp, Offset: 0, Width: i.Width})
				diag.RecordSpill(f.Label, b.Label, "expanded oversized store offset via lui/add")
			case riscvlir.LoadStack:
				if riscvlir.FitsSigned12(i.Slot.Pos) {
					out = append(out, i)
					continue
				}

				out = append(out, expandBase(tmp, riscvlir.SP(), i.Slot.Pos)...)
				out = append(out, riscvlir.Load{Dst: i.Dst, Base: tmp, Offset: 0, Width: i.Width})
			case riscvlir.StoreStack:
				if riscvlir.FitsSigned12(i.Slot.Pos) {
					out = append(out, i)
					continue
				}

				out = append(out, expandBase(tmp, riscvlir.SP(), i.Slot.Pos)...)
				out = append(out, riscvlir.Store{Src: i.Src, Base: tmp, Offset: 0, Width: i.Width})
			default:
				out = append(out, inst)
			}
		}

		b.Insts = out
	}
}

func expandBase(tmp, base riscvlir.Reg, offset int64) []riscvlir.Insn {
	hi, lo := riscvlir.HiLo(offset)

	return []riscvlir.Insn{
		riscvlir.Lui{Dst: tmp, Imm: hi},
		riscvlir.ArithI{Op_: riscvlir.Add, Dst: tmp, LHS: tmp, Imm: lo, Width: riscvlir.W8},
		riscvlir.ArithR{Op_: riscvlir.Add, Dst: tmp, LHS: tmp, RHS: base, Width: riscvlir.W8},
	}
}

// FixupBranches expands any conditional branch whose target lies outside
// the ±4KiB B-type window into an inverted branch-over-jump pair (spec
// §4.10/§9 open question 2), when enabled is set. A branch needing
// expansion splits its block: the inverted branch and an unconditional
// jump to the original target replace it, falling through into a new
// block holding whatever instructions followed the branch.
func FixupBranches(f *riscvlir.Function, enabled bool, diag *riscv.Diagnostics) {
	if !enabled {
		return
	}

	for {
		if !fixupOneBranch(f, diag) {
			return
		}
	}
}

// fixupOneBranch expands at most one oversized branch per call, since
// splitting a block invalidates offsets for everything after it; the
// caller loops until a full pass finds nothing left to expand.
func fixupOneBranch(f *riscvlir.Function, diag *riscv.Diagnostics) bool {
	offsets := blockByteOffsets(f)

	for bi, b := range f.Blocks {
		for idx, inst := range b.Insts {
			br, ok := inst.(riscvlir.Branch)
			if !ok {
				continue
			}

			here := offsets[b.Label] + int64(idx)*4
			there, known := offsets[br.Target]

			if !known || riscvlir.BranchDisplacementFits(there-here) {
				continue
			}

			splitBlockAtBranch(f, bi, idx, br, diag)

			return true
		}
	}

	return false
}

// splitBlockAtBranch replaces b.Insts[idx] (a too-far Branch) with an
// inverted branch to a fresh fallthrough block plus a Jump to the
// original target, moving every instruction after idx into that new
// fallthrough block.
func splitBlockAtBranch(f *riscvlir.Function, bi, idx int, br riscvlir.Branch, diag *riscv.Diagnostics) {
	b := f.Blocks[bi]
	fallthroughLabel := b.Label + "$over"

	rest := append([]riscvlir.Insn(nil), b.Insts[idx+1:]...)
	fallthroughBlock := riscvlir.NewBasicBlock(fallthroughLabel, f.Label)
	fallthroughBlock.Insts = rest
	fallthroughBlock.InEdges = []string{b.Label}
	fallthroughBlock.OutEdges = b.OutEdges

	b.Insts = append(append([]riscvlir.Insn(nil), b.Insts[:idx]...),
		riscvlir.BranchOverTarget(br, fallthroughLabel),
		riscvlir.Jump{Target: br.Target},
	)
	b.OutEdges = []string{fallthroughLabel, br.Target}

	tail := append([]*riscvlir.BasicBlock(nil), f.Blocks[bi+1:]...)
	f.Blocks = append(append(f.Blocks[:bi+1], fallthroughBlock), tail...)

	diag.RecordSpill(f.Label, b.Label, "expanded branch to "+br.Target+" into branch-over-jump via new block "+fallthroughLabel+" (displacement overflow)")
}

// blockByteOffsets assigns each block a monotonically increasing byte
// offset assuming every instruction is one 4-byte word, a conservative
// approximation adequate for deciding whether a branch needs expansion.
func blockByteOffsets(f *riscvlir.Function) map[string]int64 {
	offsets := map[string]int64{}

	var pos int64

	for _, b := range f.Blocks {
		offsets[b.Label] = pos
		pos += int64(len(b.Insts)) * 4
	}

	return offsets
}

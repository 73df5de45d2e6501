// Package riscvlir is the low-level IR for the RV64 back end: register and
// operand identities, typed instructions with def/use accessors, and the
// basic-block/function containers they live in. It sits one step above
// assembly text, the same way internal/lir sits above x64 text — but the
// register file, ABI classification, and opcode set are RV64's rather than
// x64's.
package riscvlir

import "fmt"

// Kind is the register bank: general-purpose integer or single-precision
// float. The two banks never interfere with each other.
type Kind int

const (
	Int Kind = iota
	Float
)

func (k Kind) String() string {
	if k == Float {
		return "f"
	}

	return "x"
}

// Reg identifies a register by (id, kind). IDs below 32 are physical RV64
// registers in ABI order; IDs at or above firstVirtual are virtual, minted
// fresh by lowering (C4) and by the spill rewriter's physical borrows (C7).
type Reg struct {
	ID   int
	Kind Kind
}

const firstVirtual = 32

func V(id int, k Kind) Reg { return Reg{ID: id, Kind: k} }
func P(id int, k Kind) Reg { return Reg{ID: id, Kind: k} }

func (r Reg) IsPhysical() bool { return r.ID < firstVirtual }
func (r Reg) IsVirtual() bool  { return r.ID >= firstVirtual }

// Physical register name tables, RV64 ABI order. Index == ID within bank.
var intNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var floatNames = [32]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
	"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
	"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
}

func (r Reg) String() string {
	if r.IsVirtual() {
		return fmt.Sprintf("%%%s%d", r.Kind, r.ID)
	}

	if r.ID < 0 || r.ID >= 32 {
		return fmt.Sprintf("<bad-reg %d>", r.ID)
	}

	if r.Kind == Float {
		return floatNames[r.ID]
	}

	return intNames[r.ID]
}

// ABI classification predicates. Pure functions of (id, kind); id ranges
// are identical across the integer and float banks (spec §3).
func IsArgument(id int) bool   { return id >= 10 && id <= 17 }
func IsCallerSave(id int) bool { return (id >= 5 && id <= 7) || (id >= 28 && id <= 31) || IsArgument(id) }
func IsCalleeSave(id int) bool { return (id >= 8 && id <= 9) || (id >= 18 && id <= 27) }
func IsReserved(id int) bool   { return id >= 0 && id <= 4 }

// IsPermanentlyLive reports whether id must be treated as live in every
// live-in/live-out set and is never a coloring candidate: zero, ra, sp,
// gp, tp, and s0 (spec invariant 4 — s0 doubles as the frame pointer).
func IsPermanentlyLive(id int) bool { return IsReserved(id) || id == 8 }

// IsFixupScratch reports whether id is t4, t5, or t6: ordinary caller-save
// registers by ABI convention, but reserved for late-pipeline scratch use
// once register allocation has already finalized every other register —
// frame layout's allocateFrame (frame-size materialization) and
// FixupOffsets (oversized-offset expansion) use t4/t5, and assembly
// emission's float-immediate expansion uses t6. Excluded from the
// allocator's coloring universe so none of these ever clobbers a value
// the allocator placed there.
func IsFixupScratch(id int) bool { return id == 29 || id == 30 || id == 31 }

func (r Reg) IsArgument() bool        { return r.IsPhysical() && IsArgument(r.ID) }
func (r Reg) IsCallerSave() bool      { return r.IsPhysical() && IsCallerSave(r.ID) }
func (r Reg) IsCalleeSave() bool      { return r.IsPhysical() && IsCalleeSave(r.ID) }
func (r Reg) IsReserved() bool        { return r.IsPhysical() && IsReserved(r.ID) }
func (r Reg) IsPermanentlyLive() bool { return r.IsPhysical() && IsPermanentlyLive(r.ID) }

// Well-known physical registers used throughout the pipeline.
func Zero() Reg { return P(0, Int) }
func RA() Reg   { return P(1, Int) }
func SP() Reg   { return P(2, Int) }
func S0() Reg   { return P(8, Int) }
func A(n int) Reg      { return P(10+n, Int) }
func FA(n int) Reg     { return P(10+n, Float) }

// Allocatable reports whether id in the given bank is a legal coloring
// target: not reserved, not permanently live, not fixup scratch.
func Allocatable(id int) bool {
	return id >= 0 && id < 32 && !IsPermanentlyLive(id) && !IsFixupScratch(id)
}

// AllPhysical returns every physical register ID in a bank, 0..31.
func AllPhysical() []int {
	ids := make([]int, 32)
	for i := range ids {
		ids[i] = i
	}

	return ids
}

// RegUsedStat is a bitmap-backed availability set over the 32 physical IDs
// of one or both banks, answering "what colors remain" in O(1) and
// composing by union — the data structure the allocator (C6) and the
// spill rewriter (C7) repeatedly query against a growing neighbor set.
type RegUsedStat struct {
	used [2]uint32 // bit i set => physical id i of that bank is in use
}

// InitUnavailable marks every register (both banks) unavailable; callers
// then release() specific IDs back in.
func InitUnavailable() RegUsedStat { return RegUsedStat{used: [2]uint32{0xFFFFFFFF, 0xFFFFFFFF}} }

// InitUnspecialRegs marks every non-reserved, non-permanently-live,
// non-fixup-scratch register in both banks available — the allocator's
// starting universe of colors.
func InitUnspecialRegs() RegUsedStat {
	s := RegUsedStat{}
	for id := 0; id < 32; id++ {
		if IsPermanentlyLive(id) || IsFixupScratch(id) {
			s.Use(P(id, Int))
			s.Use(P(id, Float))
		}
	}

	return s
}

// InitForKind marks the opposite bank entirely unavailable, restricting
// queries to the requested kind.
func InitForKind(k Kind) RegUsedStat {
	s := InitUnspecialRegs()
	other := Float
	if k == Float {
		other = Int
	}

	s.used[other] = 0xFFFFFFFF

	return s
}

func (s *RegUsedStat) bank(k Kind) *uint32 {
	if k == Float {
		return &s.used[1]
	}

	return &s.used[0]
}

func (s *RegUsedStat) Use(r Reg) {
	if r.IsPhysical() {
		*s.bank(r.Kind) |= 1 << uint(r.ID)
	}
}

func (s *RegUsedStat) Release(r Reg) {
	if r.IsPhysical() {
		*s.bank(r.Kind) &^= 1 << uint(r.ID)
	}
}

// Merge ORs other's used bits into s: the union of two "already spoken for"
// sets, used when combining call-site constraints with neighbor colors.
func (s *RegUsedStat) Merge(other RegUsedStat) {
	s.used[0] |= other.used[0]
	s.used[1] |= other.used[1]
}

func (s RegUsedStat) IsAvailable(r Reg) bool {
	if !r.IsPhysical() {
		return false
	}

	return (s.used[r.Kind] & (1 << uint(r.ID))) == 0
}

// GetAvailable returns an arbitrary available physical register of kind k,
// or false if none remain. Lowest ID wins for determinism.
func (s RegUsedStat) GetAvailable(k Kind) (Reg, bool) {
	bits := s.used[k]

	for id := 0; id < 32; id++ {
		if bits&(1<<uint(id)) == 0 {
			return P(id, k), true
		}
	}

	return Reg{}, false
}

// NumAvailable counts the available registers of kind k.
func (s RegUsedStat) NumAvailable(k Kind) int {
	bits := s.used[k]
	n := 0

	for id := 0; id < 32; id++ {
		if bits&(1<<uint(id)) == 0 {
			n++
		}
	}

	return n
}

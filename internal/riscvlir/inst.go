package riscvlir

import (
	"fmt"
	"strings"
)

// Opcode is the closed set of RV64 template instructions the back end
// emits (spec §3). Each opcode fixes its operand roles; the concrete Go
// type of an Insn value IS its opcode, so a type switch over Insn is an
// exhaustive match the compiler enforces — the reason this package never
// hides instruction shape behind virtual dispatch (spec §9).
type Opcode int

const (
	OpArithR Opcode = iota // Dst = LHS <op> RHS, all registers
	OpArithI                // Dst = LHS <op> Imm
	OpMove
	OpNeg
	OpNot
	OpLui
	OpLoadAddr
	OpLoadImmInt
	OpLoadImmFloat
	OpLoad
	OpStore
	OpLoadStack
	OpStoreStack
	OpLoadParamStack
	OpStoreParamStack
	OpCall
	OpBranch
	OpJump
	OpReturn
	OpLoadGlobal
)

// ArithOp enumerates the operators usable in OpArithR/OpArithI.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Shl
	Shr
	Slt  // signed set-less-than, used to materialize Cmp results (spec §4.4)
	Sltu // unsigned set-less-than, used for seqz/snez idioms
)

func (a ArithOp) String() string {
	return [...]string{"add", "sub", "mul", "div", "rem", "and", "or", "xor", "sll", "srl", "slt", "sltu"}[a]
}

// CmpPred mirrors rvmir.CmpPred for the fused Branch(cmp) opcode, kept as
// its own type so riscvlir has no dependency on the mid-level IR package.
type CmpPred int

const (
	CmpEQ CmpPred = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

func (p CmpPred) String() string {
	return [...]string{"eq", "ne", "lt", "le", "gt", "ge"}[p]
}

// invert returns the predicate for !p, used when a branch's taken edge is
// rewritten to target the MIR false-successor (spec §4.4).
func (p CmpPred) invert() CmpPred {
	switch p {
	case CmpEQ:
		return CmpNE
	case CmpNE:
		return CmpEQ
	case CmpLT:
		return CmpGE
	case CmpLE:
		return CmpGT
	case CmpGT:
		return CmpLE
	default:
		return CmpLT
	}
}

// Insn is implemented by every concrete instruction struct below. It is
// intentionally minimal: all other queries (def/use, call/branch/jump
// tests, rewrites) are free functions that type-switch over Insn, per the
// package doc's exhaustiveness rationale.
type Insn interface {
	Op() Opcode
	String() string
}

// width helpers: 4 for a 32-bit value, 8 for a 64-bit (address/pointer).
const (
	W4 = 4
	W8 = 8
)

type ArithR struct {
	Op_          ArithOp
	Dst, LHS, RHS Reg
	Width        int
}

func (i ArithR) Op() Opcode { return OpArithR }
func (i ArithR) String() string {
	return fmt.Sprintf("%s %s, %s, %s", i.Op_, i.Dst, i.LHS, i.RHS)
}

type ArithI struct {
	Op_      ArithOp
	Dst, LHS Reg
	Imm      int64
	Width    int
}

func (i ArithI) Op() Opcode { return OpArithI }
func (i ArithI) String() string {
	return fmt.Sprintf("%si %s, %s, %d", i.Op_, i.Dst, i.LHS, i.Imm)
}

type Move struct {
	Dst, Src Reg
	Width    int
}

func (i Move) Op() Opcode     { return OpMove }
func (i Move) String() string { return fmt.Sprintf("mv %s, %s", i.Dst, i.Src) }

type Neg struct {
	Dst, Src Reg
	Width    int
}

func (i Neg) Op() Opcode     { return OpNeg }
func (i Neg) String() string { return fmt.Sprintf("neg %s, %s", i.Dst, i.Src) }

type Not struct {
	Dst, Src Reg
	Width    int
}

func (i Not) Op() Opcode     { return OpNot }
func (i Not) String() string { return fmt.Sprintf("not %s, %s", i.Dst, i.Src) }

// Lui loads Imm's bits [31:12] into Dst's high bits; always paired with an
// ArithI Add (low 12 bits) by the overflow-fixup pass (C10) or by lowering
// (C4) when a constant doesn't fit a 12-bit signed immediate.
type Lui struct {
	Dst Reg
	Imm int64
}

func (i Lui) Op() Opcode     { return OpLui }
func (i Lui) String() string { return fmt.Sprintf("lui %s, %#x", i.Dst, i.Imm) }

// LoadAddr materializes the address of a synthesized local label (e.g. a
// const-array's backing storage) into Dst.
type LoadAddr struct {
	Dst   Reg
	Label string
}

func (i LoadAddr) Op() Opcode     { return OpLoadAddr }
func (i LoadAddr) String() string { return fmt.Sprintf("la %s, %s", i.Dst, i.Label) }

type LoadImmInt struct {
	Dst Reg
	Imm int64
}

func (i LoadImmInt) Op() Opcode     { return OpLoadImmInt }
func (i LoadImmInt) String() string { return fmt.Sprintf("li %s, %d", i.Dst, i.Imm) }

// LoadImmFloat materializes a bit-exact binary32 literal into Dst (RV64F
// register). Expanded at emission time either as lui+addi+fmv.w.x over an
// integer scratch, or as a .rodata pool load — implementer's choice per
// spec §9 open question 4; this back end takes the lui/addi route to avoid
// growing a separate constant section per function.
type LoadImmFloat struct {
	Dst Reg
	Imm float32
}

func (i LoadImmFloat) Op() Opcode     { return OpLoadImmFloat }
func (i LoadImmFloat) String() string { return fmt.Sprintf("li.s %s, %g", i.Dst, i.Imm) }

type Load struct {
	Dst, Base Reg
	Offset    int64
	Width     int
}

func (i Load) Op() Opcode { return OpLoad }
func (i Load) String() string {
	return fmt.Sprintf("l%s %s, %d(%s)", widthSuffix(i.Width, i.Dst.Kind), i.Dst, i.Offset, i.Base)
}

type Store struct {
	Src, Base Reg
	Offset    int64
	Width     int
}

func (i Store) Op() Opcode { return OpStore }
func (i Store) String() string {
	return fmt.Sprintf("s%s %s, %d(%s)", widthSuffix(i.Width, i.Src.Kind), i.Src, i.Offset, i.Base)
}

func widthSuffix(width int, k Kind) string {
	if k == Float {
		if width == W8 {
			return "d"
		}

		return "w" // flw/fsw (single precision)
	}

	if width == W8 {
		return "d"
	}

	return "w"
}

// StackSlot is a region of the owning function's frame, always 8-byte
// aligned. Pos is a monotonically increasing logical offset until C10
// assigns the final SP-relative offset (spec §3's StackSlot/§4.10).
type StackSlot struct {
	Pos  int64
	Size int64
}

// LoadStack/StoreStack/LoadParamStack/StoreParamStack are pseudo-opcodes
// carrying a StackSlot pointer rather than a raw offset; C10 rewrites them
// to SP-relative Load/Store once the frame layout is final (spec §4.2).
type LoadStack struct {
	Dst   Reg
	Slot  *StackSlot
	Width int
}

func (i LoadStack) Op() Opcode     { return OpLoadStack }
func (i LoadStack) String() string { return fmt.Sprintf("l%s %s, [slot@%d]", widthSuffix(i.Width, i.Dst.Kind), i.Dst, i.Slot.Pos) }

type StoreStack struct {
	Src   Reg
	Slot  *StackSlot
	Width int
}

func (i StoreStack) Op() Opcode { return OpStoreStack }
func (i StoreStack) String() string {
	return fmt.Sprintf("s%s %s, [slot@%d]", widthSuffix(i.Width, i.Src.Kind), i.Src, i.Slot.Pos)
}

// LoadParamStack/StoreParamStack address the incoming/outgoing argument
// area rather than the local-spill area; kept as distinct opcodes because
// their offset sign and base differ at frame-layout time (incoming args
// sit above the callee's frame, outgoing args below the caller's sp).
type LoadParamStack struct {
	Dst   Reg
	Slot  *StackSlot
	Width int
}

func (i LoadParamStack) Op() Opcode { return OpLoadParamStack }
func (i LoadParamStack) String() string {
	return fmt.Sprintf("l%s %s, [param@%d]", widthSuffix(i.Width, i.Dst.Kind), i.Dst, i.Slot.Pos)
}

type StoreParamStack struct {
	Src   Reg
	Slot  *StackSlot
	Width int
}

func (i StoreParamStack) Op() Opcode { return OpStoreParamStack }
func (i StoreParamStack) String() string {
	return fmt.Sprintf("s%s %s, [param@%d]", widthSuffix(i.Width, i.Src.Kind), i.Src, i.Slot.Pos)
}

// Call invokes Callee with Args already placed per psABI (a0-a7/fa0-fa7,
// overflow on the outgoing-argument stack area — spec §4.4/§6).
type Call struct {
	Dst    Reg
	HasDst bool
	Callee string
	Args   []Reg
}

func (i Call) Op() Opcode { return OpCall }
func (i Call) String() string {
	var b strings.Builder
	if i.HasDst {
		fmt.Fprintf(&b, "%s = ", i.Dst)
	}

	fmt.Fprintf(&b, "call %s(", i.Callee)

	for idx, a := range i.Args {
		if idx > 0 {
			b.WriteString(", ")
		}

		b.WriteString(a.String())
	}

	b.WriteString(")")

	return b.String()
}

// Branch is the fused compare-and-branch: LHS Pred RHS taken => Target.
// Lowering (C4) always arranges Target to be the MIR false-successor and
// elides the trailing Jump to the true-successor when it is next in
// layout order (spec §4.4).
type Branch struct {
	Pred     CmpPred
	LHS, RHS Reg
	Target   string
}

func (i Branch) Op() Opcode { return OpBranch }
func (i Branch) String() string {
	return fmt.Sprintf("b%s %s, %s, %s", i.Pred, i.LHS, i.RHS, i.Target)
}

type Jump struct{ Target string }

func (i Jump) Op() Opcode     { return OpJump }
func (i Jump) String() string { return fmt.Sprintf("j %s", i.Target) }

type Return struct {
	Src    Reg
	HasSrc bool
}

func (i Return) Op() Opcode { return OpReturn }
func (i Return) String() string {
	if !i.HasSrc {
		return "ret"
	}

	return fmt.Sprintf("ret %s", i.Src)
}

// LoadGlobal materializes the address of module-level global Name into
// Dst; lowering caches the result register per function so repeat
// accesses to the same global reuse it instead of re-emitting (spec §4.4).
type LoadGlobal struct {
	Dst  Reg
	Name string
}

func (i LoadGlobal) Op() Opcode     { return OpLoadGlobal }
func (i LoadGlobal) String() string { return fmt.Sprintf("la %s, %s", i.Dst, i.Name) }

// DefRegs returns the registers written by inst.
func DefRegs(inst Insn) []Reg {
	switch i := inst.(type) {
	case ArithR:
		return []Reg{i.Dst}
	case ArithI:
		return []Reg{i.Dst}
	case Move:
		return []Reg{i.Dst}
	case Neg:
		return []Reg{i.Dst}
	case Not:
		return []Reg{i.Dst}
	case Lui:
		return []Reg{i.Dst}
	case LoadAddr:
		return []Reg{i.Dst}
	case LoadImmInt:
		return []Reg{i.Dst}
	case LoadImmFloat:
		return []Reg{i.Dst}
	case Load:
		return []Reg{i.Dst}
	case LoadStack:
		return []Reg{i.Dst}
	case LoadParamStack:
		return []Reg{i.Dst}
	case Call:
		if i.HasDst {
			return []Reg{i.Dst}
		}

		return nil
	case LoadGlobal:
		return []Reg{i.Dst}
	default:
		return nil
	}
}

// UseRegs returns the registers read by inst.
func UseRegs(inst Insn) []Reg {
	switch i := inst.(type) {
	case ArithR:
		return []Reg{i.LHS, i.RHS}
	case ArithI:
		return []Reg{i.LHS}
	case Move:
		return []Reg{i.Src}
	case Neg:
		return []Reg{i.Src}
	case Not:
		return []Reg{i.Src}
	case Load:
		return []Reg{i.Base}
	case Store:
		return []Reg{i.Src, i.Base}
	case StoreStack:
		return []Reg{i.Src}
	case StoreParamStack:
		return []Reg{i.Src}
	case Call:
		return append([]Reg(nil), i.Args...)
	case Branch:
		return []Reg{i.LHS, i.RHS}
	case Return:
		if i.HasSrc {
			return []Reg{i.Src}
		}

		return nil
	default:
		return nil
	}
}

// AllRegs returns the union of def and use registers, in def-then-use
// order, each appearing once per occurrence (duplicates preserved — the
// interference builder cares about occurrence count, not set membership).
func AllRegs(inst Insn) []Reg {
	return append(DefRegs(inst), UseRegs(inst)...)
}

// ReplaceReg substitutes every occurrence of old with new and returns the
// rewritten instruction; it never changes the instruction's opcode or
// operand schema (spec §4.2).
func ReplaceReg(inst Insn, old, new Reg) Insn {
	sub := func(r Reg) Reg {
		if r == old {
			return new
		}

		return r
	}

	switch i := inst.(type) {
	case ArithR:
		i.Dst, i.LHS, i.RHS = sub(i.Dst), sub(i.LHS), sub(i.RHS)
		return i
	case ArithI:
		i.Dst, i.LHS = sub(i.Dst), sub(i.LHS)
		return i
	case Move:
		i.Dst, i.Src = sub(i.Dst), sub(i.Src)
		return i
	case Neg:
		i.Dst, i.Src = sub(i.Dst), sub(i.Src)
		return i
	case Not:
		i.Dst, i.Src = sub(i.Dst), sub(i.Src)
		return i
	case Lui:
		i.Dst = sub(i.Dst)
		return i
	case LoadAddr:
		i.Dst = sub(i.Dst)
		return i
	case LoadImmInt:
		i.Dst = sub(i.Dst)
		return i
	case LoadImmFloat:
		i.Dst = sub(i.Dst)
		return i
	case Load:
		i.Dst, i.Base = sub(i.Dst), sub(i.Base)
		return i
	case Store:
		i.Src, i.Base = sub(i.Src), sub(i.Base)
		return i
	case LoadStack:
		i.Dst = sub(i.Dst)
		return i
	case StoreStack:
		i.Src = sub(i.Src)
		return i
	case LoadParamStack:
		i.Dst = sub(i.Dst)
		return i
	case StoreParamStack:
		i.Src = sub(i.Src)
		return i
	case Call:
		if i.HasDst {
			i.Dst = sub(i.Dst)
		}

		args := make([]Reg, len(i.Args))
		for idx, a := range i.Args {
			args[idx] = sub(a)
		}

		i.Args = args

		return i
	case Branch:
		i.LHS, i.RHS = sub(i.LHS), sub(i.RHS)
		return i
	case Return:
		if i.HasSrc {
			i.Src = sub(i.Src)
		}

		return i
	case LoadGlobal:
		i.Dst = sub(i.Dst)
		return i
	default:
		return inst
	}
}

// ReplaceLabel substitutes inst's target label (branches and jumps only)
// and returns the rewritten instruction.
func ReplaceLabel(inst Insn, newLabel string) Insn {
	switch i := inst.(type) {
	case Branch:
		i.Target = newLabel
		return i
	case Jump:
		i.Target = newLabel
		return i
	default:
		return inst
	}
}

// SetWidth sets the 4/8-byte memory-width flag on memory-class
// instructions and returns the rewritten instruction; a no-op elsewhere.
func SetWidth(inst Insn, width int) Insn {
	switch i := inst.(type) {
	case Load:
		i.Width = width
		return i
	case Store:
		i.Width = width
		return i
	case LoadStack:
		i.Width = width
		return i
	case StoreStack:
		i.Width = width
		return i
	case LoadParamStack:
		i.Width = width
		return i
	case StoreParamStack:
		i.Width = width
		return i
	default:
		return inst
	}
}

func IsCall(inst Insn) bool   { _, ok := inst.(Call); return ok }
func IsBranch(inst Insn) bool { _, ok := inst.(Branch); return ok }
func IsJump(inst Insn) bool   { _, ok := inst.(Jump); return ok }
func IsReturn(inst Insn) bool { _, ok := inst.(Return); return ok }

// CalleeLabel returns a call instruction's callee name.
func CalleeLabel(inst Insn) (string, bool) {
	if c, ok := inst.(Call); ok {
		return c.Callee, true
	}

	return "", false
}

// BranchOverTarget inverts a Branch's predicate and target — used by the
// overflow-fixup pass (C10) to expand a too-far conditional branch into
// "branch over an unconditional jump" (spec §4.10, §9 open question 2).
func BranchOverTarget(b Branch, fallthroughTarget string) Branch {
	b.Pred = b.Pred.invert()
	b.Target = fallthroughTarget

	return b
}

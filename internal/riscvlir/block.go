package riscvlir

import "strings"

// BasicBlock is a per-function CFG node: an ordered list of instructions
// plus the flow-graph and liveness annotations C5/C6 attach to it
// (spec §3). Edges are stored as label references rather than owning
// pointers — see the package doc on arena/index style in spec §9.
type BasicBlock struct {
	Label    string
	FuncName string
	Insts    []Insn

	InEdges  []string
	OutEdges []string

	LiveUse RegSet
	LiveDef RegSet
	LiveIn  RegSet
	LiveOut RegSet
}

func NewBasicBlock(label, funcName string) *BasicBlock {
	return &BasicBlock{Label: label, FuncName: funcName}
}

func (b *BasicBlock) PushBack(i Insn) { b.Insts = append(b.Insts, i) }

// InsertBefore inserts i immediately before the instruction currently at
// index, shifting the rest down.
func (b *BasicBlock) InsertBefore(index int, i Insn) {
	b.Insts = append(b.Insts, nil)
	copy(b.Insts[index+1:], b.Insts[index:])
	b.Insts[index] = i
}

// Terminator returns the block's last instruction, or nil if empty.
func (b *BasicBlock) Terminator() Insn {
	if len(b.Insts) == 0 {
		return nil
	}

	return b.Insts[len(b.Insts)-1]
}

func (b *BasicBlock) String() string {
	var s strings.Builder

	s.WriteString(b.Label)
	s.WriteString(":\n")

	for _, i := range b.Insts {
		s.WriteString("  ")
		s.WriteString(i.String())
		s.WriteString("\n")
	}

	return s.String()
}

// Function is a per-function CFG of LIR blocks plus the stack-slot table,
// spill map, and recursive-closure bookkeeping the back end threads
// through C4-C10 (spec §3).
type Function struct {
	Label      string
	Params     []Reg
	EntryLabel string
	Blocks     []*BasicBlock

	StackAddr     []*StackSlot
	SpillStackMap map[Reg]*StackSlot

	CalleeSaved map[Reg]bool

	IsExtern    bool
	IsHeader    bool // true for the original (unspecialized) function; cleared on specialize clones

	Context *Context
}

func NewFunction(label string) *Function {
	return &Function{
		Label:         label,
		SpillStackMap: map[Reg]*StackSlot{},
		CalleeSaved:   map[Reg]bool{},
		Context:       NewContext(),
	}
}

func (f *Function) Block(label string) *BasicBlock {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}

	return nil
}

func (f *Function) FirstBlock() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}

	return f.Blocks[0]
}

// BlocksInLayoutOrder returns blocks in their current emission order —
// identical to Blocks today, but a named accessor since layout order is a
// distinct concept from CFG discovery order once C9 clones blocks.
func (f *Function) BlocksInLayoutOrder() []*BasicBlock { return f.Blocks }

func (f *Function) StackAddrPushBack(s *StackSlot)  { f.StackAddr = append(f.StackAddr, s) }
func (f *Function) StackAddrPushFront(s *StackSlot) { f.StackAddr = append([]*StackSlot{s}, f.StackAddr...) }

// ReplaceReg delegates to every instruction in every block.
func (f *Function) ReplaceReg(old, new Reg) {
	for _, b := range f.Blocks {
		for idx, inst := range b.Insts {
			b.Insts[idx] = ReplaceReg(inst, old, new)
		}
	}
}

// Module bundles every function and global for one compilation unit
// (spec §3).
type Module struct {
	Name      string
	Globals   []*Global
	Functions []*Function
}

func (m *Module) FunctionByName(name string) *Function {
	for _, f := range m.Functions {
		if f.Label == name {
			return f
		}
	}

	return nil
}

// Global is a module-level variable surviving into the LIR stage so the
// emitter can produce .data directives (spec §6).
type Global struct {
	Name   string
	Kind   Kind
	IsArray bool
	Len    int
	IntInit   []int64
	FloatInit []float32
	Const  bool
}

// Context carries per-function compilation state that must outlive a
// single pass: the running stack offset during layout and the
// prologue/epilogue callbacks C10 installs once the frame is final
// (spec §3's Function.context). Modeled as plain fields rather than the
// source's boxed closures, since Go has no ownership reason to indirect
// through dyn FnMut here — see spec §9 on replacing process-wide mutable
// state with an owned, threaded Context.
type Context struct {
	StackOffset int64
	Prologue    []Insn
	Epilogue    []Insn
}

func NewContext() *Context { return &Context{} }

// RegSet is a small, hashable set of registers used for live-in/live-out
// and def/use summaries (spec §3). Backed by a map for simplicity — block
// counts are small enough that a bitset-per-kind would be premature.
type RegSet map[Reg]struct{}

func NewRegSet(regs ...Reg) RegSet {
	s := make(RegSet, len(regs))
	for _, r := range regs {
		s[r] = struct{}{}
	}

	return s
}

func (s RegSet) Contains(r Reg) bool { _, ok := s[r]; return ok }
func (s RegSet) Add(r Reg)           { s[r] = struct{}{} }
func (s RegSet) Remove(r Reg)        { delete(s, r) }

func (s RegSet) Clone() RegSet {
	out := make(RegSet, len(s))
	for r := range s {
		out[r] = struct{}{}
	}

	return out
}

// Union returns a new set containing every register in s or other.
func (s RegSet) Union(other RegSet) RegSet {
	out := s.Clone()
	for r := range other {
		out[r] = struct{}{}
	}

	return out
}

func (s RegSet) Slice() []Reg {
	out := make([]Reg, 0, len(s))
	for r := range s {
		out = append(out, r)
	}

	return out
}

// Package rvmir defines the mid-level IR consumed by the RISC-V back end.
// It is produced by an external SysY front end (lexer, parser, AST-to-MIR
// lowering — out of scope here) and is SSA for every virtual value: each
// name is assigned by exactly one instruction or parameter.
package rvmir

import "fmt"

// Class is the value class a MIR value or slot carries. The back end only
// ever sees signed 32-bit integers and IEEE-754 binary32 floats.
type Class int

const (
	Int32 Class = iota
	Float32
)

func (c Class) String() string {
	if c == Float32 {
		return "f32"
	}

	return "i32"
}

// ValueKind tags the union carried by Value.
type ValueKind int

const (
	ValInvalid ValueKind = iota
	ValConstInt
	ValConstFloat
	ValRef
)

// Value is a tagged union: an integer/float literal or a reference to a
// name defined earlier in the same function (instruction result, block
// parameter, or phi destination).
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float32
	Ref   string
	Class Class
}

func ConstInt(v int64) Value   { return Value{Kind: ValConstInt, Int: v, Class: Int32} }
func ConstFloat(v float32) Value { return Value{Kind: ValConstFloat, Float: v, Class: Float32} }
func Ref(name string, c Class) Value { return Value{Kind: ValRef, Ref: name, Class: c} }

func (v Value) String() string {
	switch v.Kind {
	case ValConstInt:
		return fmt.Sprintf("%d", v.Int)
	case ValConstFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValRef:
		return v.Ref
	default:
		return "<invalid>"
	}
}

// GlobalKind distinguishes scalar globals from array globals.
type GlobalKind int

const (
	GlobalScalar GlobalKind = iota
	GlobalArray
)

// GlobalVar is a module-level variable: a scalar or an array of a single
// element class, optionally const (immutable after initialization).
type GlobalVar struct {
	Name     string
	Kind     GlobalKind
	Class    Class
	Len      int     // element count; 1 for scalars
	Init     []Value // initializer literals, may be shorter than Len (zero-padded)
	Const    bool
}

// Param is a function parameter: a name bound at entry plus its class.
type Param struct {
	Name  string
	Class Class
}

// Function is an SSA control-flow graph of MIR instructions.
type Function struct {
	Name     string
	Params   []Param
	RetClass Class
	HasRet   bool // false for void functions
	Blocks   []*BasicBlock
	IsExtern bool // declared, not defined; body absent (runtime/library function)
}

func (f *Function) Block(label string) *BasicBlock {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}

	return nil
}

// BasicBlock is a straight-line sequence of instructions ending in a
// terminator (Jump, CondBr, or Return).
type BasicBlock struct {
	Name  string // block-unique label within the function
	Label string
	Insts []Inst
}

// Module is the compilation unit handed to the back end: globals plus
// functions, consumed by reference and never mutated by the pipeline.
type Module struct {
	Name      string
	Globals   []*GlobalVar
	Functions []*Function
}

func (m *Module) FunctionByName(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// Inst is implemented by every MIR instruction kind enumerated in the
// back end's opcode-directed lowering (spec §4.4).
type Inst interface{ isMIRInst() }

// BinOpKind enumerates the binary arithmetic/logical/shift operators.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
)

// BinOp computes Op(LHS, RHS) and binds the result to Dst.
type BinOp struct {
	Dst      string
	Op       BinOpKind
	LHS, RHS Value
	Class    Class
}

func (BinOp) isMIRInst() {}

// UnaryOpKind enumerates the unary operators.
type UnaryOpKind int

const (
	OpNeg UnaryOpKind = iota
	OpNot
	OpPos
)

// Unary computes Op(Src) and binds the result to Dst.
type Unary struct {
	Dst   string
	Op    UnaryOpKind
	Src   Value
	Class Class
}

func (Unary) isMIRInst() {}

// CmpPred enumerates comparison predicates; signedness is carried by Class
// plus a separate Signed flag since pointer comparisons are unsigned.
type CmpPred int

const (
	CmpEQ CmpPred = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

// Cmp evaluates LHS Pred RHS and binds a 0/1 integer result to Dst.
type Cmp struct {
	Dst      string
	Pred     CmpPred
	LHS, RHS Value
	Class    Class // operand class (result is always Int32)
}

func (Cmp) isMIRInst() {}

// Alloca reserves a stack array of Len elements of Class and binds its
// address to Dst. Len==1 models a scalar local whose address is taken.
type Alloca struct {
	Dst   string
	Class Class
	Len   int
}

func (Alloca) isMIRInst() {}

// GEP computes Base + Index*elemSize(Class) and binds the address to Dst.
type GEP struct {
	Dst   string
	Base  Value
	Index Value
	Class Class // element class, for sizing
}

func (GEP) isMIRInst() {}

// Load reads Class from Addr into Dst.
type Load struct {
	Dst   string
	Addr  Value
	Class Class
}

func (Load) isMIRInst() {}

// Store writes Val to Addr.
type Store struct {
	Addr Value
	Val  Value
}

func (Store) isMIRInst() {}

// LoadGlobal materializes the address of a global variable into Dst.
type LoadGlobal struct {
	Dst  string
	Name string
}

func (LoadGlobal) isMIRInst() {}

// Call invokes Callee with Args, optionally binding the result to Dst.
type Call struct {
	Dst        string
	HasDst     bool
	Callee     string
	Args       []Value
	ArgClasses []Class
	RetClass   Class
}

func (Call) isMIRInst() {}

// Jump is an unconditional edge to Target.
type Jump struct{ Target string }

func (Jump) isMIRInst() {}

// CondBr branches to True when Cond holds a Cmp-produced truth value,
// otherwise to False. True is the first MIR successor, False the second.
type CondBr struct {
	Cond        Value
	True, False string
}

func (CondBr) isMIRInst() {}

// Return exits the function, optionally carrying a value.
type Return struct {
	Val    Value
	HasVal bool
	Class  Class
}

func (Return) isMIRInst() {}

// PhiIncoming pairs a predecessor block label with the value flowing in
// from it.
type PhiIncoming struct {
	Pred string
	Val  Value
}

// Phi merges values from multiple predecessors into Dst at block entry.
type Phi struct {
	Dst      string
	Class    Class
	Incoming []PhiIncoming
}

func (Phi) isMIRInst() {}

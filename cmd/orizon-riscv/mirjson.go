package main

import (
	"encoding/json"
	"fmt"

	"github.com/orizon-lang/orizon/internal/rvmir"
)

// The front end hands the back end MIR as JSON rather than a Go value:
// this file defines that wire format's DTOs and the conversion into
// rvmir's in-memory types. rvmir.Inst is a closed Go interface (no JSON
// tags, no discriminator), so each instruction is decoded as a tagged
// object keyed by "op" and dispatched through instFromJSON.

type moduleJSON struct {
	Name      string         `json:"name"`
	Globals   []globalJSON   `json:"globals"`
	Functions []functionJSON `json:"functions"`
}

type globalJSON struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`  // "scalar" | "array"
	Class     string    `json:"class"` // "i32" | "f32"
	Len       int       `json:"len"`
	IntInit   []int64   `json:"int_init,omitempty"`
	FloatInit []float32 `json:"float_init,omitempty"`
	Const     bool      `json:"const"`
}

type paramJSON struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type functionJSON struct {
	Name     string      `json:"name"`
	Params   []paramJSON `json:"params"`
	RetClass string      `json:"ret_class"`
	HasRet   bool        `json:"has_ret"`
	IsExtern bool        `json:"is_extern"`
	Blocks   []blockJSON `json:"blocks"`
}

type blockJSON struct {
	Label string     `json:"label"`
	Insts []instJSON `json:"insts"`
}

// valueJSON mirrors rvmir.Value's tagged union: exactly one of Int/Float/
// Ref is meaningful, selected by Kind.
type valueJSON struct {
	Kind  string  `json:"kind"` // "int" | "float" | "ref"
	Int   int64   `json:"int,omitempty"`
	Float float32 `json:"float,omitempty"`
	Ref   string  `json:"ref,omitempty"`
	Class string  `json:"class,omitempty"`
}

type phiIncomingJSON struct {
	Pred string    `json:"pred"`
	Val  valueJSON `json:"val"`
}

// instJSON is a catch-all envelope: every field any instruction kind
// needs, most left zero-valued for kinds that don't use them. "op"
// selects which fields instFromJSON reads.
type instJSON struct {
	Op         string            `json:"op"`
	Dst        string            `json:"dst,omitempty"`
	HasDst     bool              `json:"has_dst,omitempty"`
	BinOp      string            `json:"bin_op,omitempty"`
	UnaryOp    string            `json:"unary_op,omitempty"`
	Pred       string            `json:"pred,omitempty"`
	LHS        *valueJSON        `json:"lhs,omitempty"`
	RHS        *valueJSON        `json:"rhs,omitempty"`
	Src        *valueJSON        `json:"src,omitempty"`
	Addr       *valueJSON        `json:"addr,omitempty"`
	Val        *valueJSON        `json:"val,omitempty"`
	HasVal     bool              `json:"has_val,omitempty"`
	Base       *valueJSON        `json:"base,omitempty"`
	Index      *valueJSON        `json:"index,omitempty"`
	Class      string            `json:"class,omitempty"`
	Len        int               `json:"len,omitempty"`
	Name       string            `json:"name,omitempty"`
	Callee     string            `json:"callee,omitempty"`
	Args       []valueJSON       `json:"args,omitempty"`
	ArgClasses []string          `json:"arg_classes,omitempty"`
	RetClass   string            `json:"ret_class,omitempty"`
	Target     string            `json:"target,omitempty"`
	Cond       *valueJSON        `json:"cond,omitempty"`
	True       string            `json:"true,omitempty"`
	False      string            `json:"false,omitempty"`
	Incoming   []phiIncomingJSON `json:"incoming,omitempty"`
}

func classFromJSON(s string) rvmir.Class {
	if s == "f32" {
		return rvmir.Float32
	}

	return rvmir.Int32
}

func valueFromJSON(v *valueJSON) rvmir.Value {
	if v == nil {
		return rvmir.Value{}
	}

	switch v.Kind {
	case "int":
		return rvmir.ConstInt(v.Int)
	case "float":
		return rvmir.ConstFloat(v.Float)
	default:
		return rvmir.Ref(v.Ref, classFromJSON(v.Class))
	}
}

var binOpNames = map[string]rvmir.BinOpKind{
	"add": rvmir.OpAdd, "sub": rvmir.OpSub, "mul": rvmir.OpMul, "div": rvmir.OpDiv,
	"mod": rvmir.OpMod, "and": rvmir.OpAnd, "or": rvmir.OpOr, "xor": rvmir.OpXor,
	"shl": rvmir.OpShl, "shr": rvmir.OpShr,
}

var unaryOpNames = map[string]rvmir.UnaryOpKind{
	"neg": rvmir.OpNeg, "not": rvmir.OpNot, "pos": rvmir.OpPos,
}

var cmpPredNames = map[string]rvmir.CmpPred{
	"eq": rvmir.CmpEQ, "ne": rvmir.CmpNE, "lt": rvmir.CmpLT,
	"le": rvmir.CmpLE, "gt": rvmir.CmpGT, "ge": rvmir.CmpGE,
}

func instFromJSON(j instJSON) (rvmir.Inst, error) {
	switch j.Op {
	case "binop":
		op, ok := binOpNames[j.BinOp]
		if !ok {
			return nil, fmt.Errorf("unknown bin_op %q", j.BinOp)
		}

		return rvmir.BinOp{Dst: j.Dst, Op: op, LHS: valueFromJSON(j.LHS), RHS: valueFromJSON(j.RHS), Class: classFromJSON(j.Class)}, nil
	case "unary":
		op, ok := unaryOpNames[j.UnaryOp]
		if !ok {
			return nil, fmt.Errorf("unknown unary_op %q", j.UnaryOp)
		}

		return rvmir.Unary{Dst: j.Dst, Op: op, Src: valueFromJSON(j.Src), Class: classFromJSON(j.Class)}, nil
	case "cmp":
		pred, ok := cmpPredNames[j.Pred]
		if !ok {
			return nil, fmt.Errorf("unknown pred %q", j.Pred)
		}

		return rvmir.Cmp{Dst: j.Dst, Pred: pred, LHS: valueFromJSON(j.LHS), RHS: valueFromJSON(j.RHS), Class: classFromJSON(j.Class)}, nil
	case "alloca":
		return rvmir.Alloca{Dst: j.Dst, Class: classFromJSON(j.Class), Len: j.Len}, nil
	case "gep":
		return rvmir.GEP{Dst: j.Dst, Base: valueFromJSON(j.Base), Index: valueFromJSON(j.Index), Class: classFromJSON(j.Class)}, nil
	case "load":
		return rvmir.Load{Dst: j.Dst, Addr: valueFromJSON(j.Addr), Class: classFromJSON(j.Class)}, nil
	case "store":
		return rvmir.Store{Addr: valueFromJSON(j.Addr), Val: valueFromJSON(j.Val)}, nil
	case "load_global":
		return rvmir.LoadGlobal{Dst: j.Dst, Name: j.Name}, nil
	case "call":
		args := make([]rvmir.Value, len(j.Args))
		for i := range j.Args {
			args[i] = valueFromJSON(&j.Args[i])
		}

		classes := make([]rvmir.Class, len(j.ArgClasses))
		for i, c := range j.ArgClasses {
			classes[i] = classFromJSON(c)
		}

		return rvmir.Call{Dst: j.Dst, HasDst: j.HasDst, Callee: j.Callee, Args: args, ArgClasses: classes, RetClass: classFromJSON(j.RetClass)}, nil
	case "jump":
		return rvmir.Jump{Target: j.Target}, nil
	case "condbr":
		return rvmir.CondBr{Cond: valueFromJSON(j.Cond), True: j.True, False: j.False}, nil
	case "return":
		return rvmir.Return{Val: valueFromJSON(j.Val), HasVal: j.HasVal, Class: classFromJSON(j.Class)}, nil
	case "phi":
		incoming := make([]rvmir.PhiIncoming, len(j.Incoming))
		for i, inc := range j.Incoming {
			incoming[i] = rvmir.PhiIncoming{Pred: inc.Pred, Val: valueFromJSON(&inc.Val)}
		}

		return rvmir.Phi{Dst: j.Dst, Class: classFromJSON(j.Class), Incoming: incoming}, nil
	default:
		return nil, fmt.Errorf("unknown instruction op %q", j.Op)
	}
}

func moduleFromJSON(raw []byte) (*rvmir.Module, error) {
	var mj moduleJSON
	if err := json.Unmarshal(raw, &mj); err != nil {
		return nil, fmt.Errorf("decoding MIR JSON: %w", err)
	}

	m := &rvmir.Module{Name: mj.Name}

	for _, g := range mj.Globals {
		kind := rvmir.GlobalScalar
		if g.Kind == "array" {
			kind = rvmir.GlobalArray
		}

		init := make([]rvmir.Value, 0, len(g.IntInit)+len(g.FloatInit))

		for _, v := range g.IntInit {
			init = append(init, rvmir.ConstInt(v))
		}

		for _, v := range g.FloatInit {
			init = append(init, rvmir.ConstFloat(v))
		}

		m.Globals = append(m.Globals, &rvmir.GlobalVar{
			Name: g.Name, Kind: kind, Class: classFromJSON(g.Class), Len: g.Len, Init: init, Const: g.Const,
		})
	}

	for _, fj := range mj.Functions {
		f := &rvmir.Function{
			Name:     fj.Name,
			RetClass: classFromJSON(fj.RetClass),
			HasRet:   fj.HasRet,
			IsExtern: fj.IsExtern,
		}

		for _, p := range fj.Params {
			f.Params = append(f.Params, rvmir.Param{Name: p.Name, Class: classFromJSON(p.Class)})
		}

		for _, bj := range fj.Blocks {
			b := &rvmir.BasicBlock{Name: bj.Label, Label: bj.Label}

			for _, ij := range bj.Insts {
				inst, err := instFromJSON(ij)
				if err != nil {
					return nil, fmt.Errorf("function %s, block %s: %w", fj.Name, bj.Label, err)
				}

				b.Insts = append(b.Insts, inst)
			}

			f.Blocks = append(f.Blocks, b)
		}

		m.Functions = append(m.Functions, f)
	}

	return m, nil
}

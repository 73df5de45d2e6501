// Package riscvasm renders a fully allocated, framed riscvlir.Module as
// GNU-assembler RV64 text: a strings.Builder walked function by function,
// block by block, with one case per instruction kind. Unlike
// riscvlir.Insn.String() (a debug printer used by the lowering package's
// own tests), Emit produces assembler the real toolchain accepts:
// "call"/"ret" instead of SSA-flavored "%s = call f(...)"/"ret %s", and
// real SP-relative offsets instead of "[slot@N]" placeholders.
package riscvasm

import (
	"fmt"
	"math"
	"strings"

	"github.com/orizon-lang/orizon/internal/riscvlir"
)

// Emit renders m as a complete .s file: a .data section for every global,
// followed by a .text section with one label per function.
func Emit(m *riscvlir.Module) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# module %s\n", m.Name)

	if len(m.Globals) > 0 {
		b.WriteString(".data\n")

		for _, g := range m.Globals {
			emitGlobal(&b, g)
		}
	}

	b.WriteString(".text\n")

	for _, f := range m.Functions {
		if f.IsExtern {
			continue
		}

		if err := emitFunc(&b, f); err != nil {
			return "", fmt.Errorf("riscvasm: function %s: %w", f.Label, err)
		}
	}

	return b.String(), nil
}

func emitGlobal(b *strings.Builder, g *riscvlir.Global) {
	fmt.Fprintf(b, ".globl %s\n", g.Name)
	fmt.Fprintf(b, ".align %d\n", align(g))
	fmt.Fprintf(b, "%s:\n", g.Name)

	switch {
	case len(g.IntInit) > 0:
		for _, v := range g.IntInit {
			fmt.Fprintf(b, "  .word %d\n", v)
		}
	case len(g.FloatInit) > 0:
		for _, v := range g.FloatInit {
			fmt.Fprintf(b, "  .word %d # %g\n", int64(math.Float32bits(v)), v)
		}
	case g.IsArray:
		fmt.Fprintf(b, "  .zero %d\n", elemSize(g.Kind)*int64(g.Len))
	default:
		fmt.Fprintf(b, "  .zero %d\n", elemSize(g.Kind))
	}
}

func align(g *riscvlir.Global) int {
	if elemSize(g.Kind) == 8 {
		return 3
	}

	return 2
}

func elemSize(k riscvlir.Kind) int64 {
	if k == riscvlir.Float {
		return 4
	}

	return 8
}

func emitFunc(b *strings.Builder, f *riscvlir.Function) error {
	fmt.Fprintf(b, ".globl %s\n", f.Label)
	fmt.Fprintf(b, "%s:\n", f.Label)

	for _, blk := range f.Blocks {
		if blk.Label != f.Label {
			fmt.Fprintf(b, "%s:\n", blockLabel(f.Label, blk.Label))
		}

		for _, inst := range blk.Insts {
			if err := emitInst(b, inst); err != nil {
				return err
			}
		}
	}

	b.WriteString("\n")

	return nil
}

// blockLabel qualifies a block label with its owning function so two
// functions sharing a block name (e.g. both specialized clones carrying
// an "entry" block) never collide in the assembled text.
func blockLabel(fn, block string) string {
	if block == fn {
		return block
	}

	return fn + "." + block
}

func emitInst(b *strings.Builder, inst riscvlir.Insn) error {
	switch i := inst.(type) {
	case riscvlir.ArithR:
		fmt.Fprintf(b, "  %s %s, %s, %s\n", i.Op_, i.Dst, i.LHS, i.RHS)
	case riscvlir.ArithI:
		fmt.Fprintf(b, "  %si %s, %s, %d\n", i.Op_, i.Dst, i.LHS, i.Imm)
	case riscvlir.Move:
		emitMove(b, i)
	case riscvlir.Neg:
		fmt.Fprintf(b, "  neg %s, %s\n", i.Dst, i.Src)
	case riscvlir.Not:
		fmt.Fprintf(b, "  not %s, %s\n", i.Dst, i.Src)
	case riscvlir.Lui:
		fmt.Fprintf(b, "  lui %s, %d\n", i.Dst, i.Imm)
	case riscvlir.LoadAddr:
		fmt.Fprintf(b, "  la %s, %s\n", i.Dst, i.Label)
	case riscvlir.LoadImmInt:
		fmt.Fprintf(b, "  li %s, %d\n", i.Dst, i.Imm)
	case riscvlir.LoadImmFloat:
		emitLoadImmFloat(b, i)
	case riscvlir.Load:
		fmt.Fprintf(b, "  l%s %s, %d(%s)\n", widthSuffix(i.Width, i.Dst.Kind), i.Dst, i.Offset, i.Base)
	case riscvlir.Store:
		fmt.Fprintf(b, "  s%s %s, %d(%s)\n", widthSuffix(i.Width, i.Src.Kind), i.Src, i.Offset, i.Base)
	case riscvlir.LoadStack:
		fmt.Fprintf(b, "  l%s %s, %d(sp)\n", widthSuffix(i.Width, i.Dst.Kind), i.Dst, i.Slot.Pos)
	case riscvlir.StoreStack:
		fmt.Fprintf(b, "  s%s %s, %d(sp)\n", widthSuffix(i.Width, i.Src.Kind), i.Src, i.Slot.Pos)
	case riscvlir.LoadParamStack:
		fmt.Fprintf(b, "  l%s %s, %d(sp)\n", widthSuffix(i.Width, i.Dst.Kind), i.Dst, i.Slot.Pos)
	case riscvlir.StoreParamStack:
		fmt.Fprintf(b, "  s%s %s, %d(sp)\n", widthSuffix(i.Width, i.Src.Kind), i.Src, i.Slot.Pos)
	case riscvlir.Call:
		fmt.Fprintf(b, "  call %s\n", i.Callee)
	case riscvlir.Branch:
		fmt.Fprintf(b, "  b%s %s, %s, %s\n", i.Pred, i.LHS, i.RHS, i.Target)
	case riscvlir.Jump:
		fmt.Fprintf(b, "  j %s\n", i.Target)
	case riscvlir.Return:
		b.WriteString("  ret\n")
	case riscvlir.LoadGlobal:
		fmt.Fprintf(b, "  la %s, %s\n", i.Dst, i.Name)
	default:
		return fmt.Errorf("unhandled instruction kind %T", inst)
	}

	return nil
}

// emitMove lowers a cross-bank Move (e.g. binding a float argument's
// incoming a-register, or materializing an integer from a comparison into
// a spill slot of the other kind) to the real bit-move instruction; a
// same-bank Move is the ordinary register-register pseudo-op.
func emitMove(b *strings.Builder, i riscvlir.Move) {
	if i.Dst.Kind == i.Src.Kind {
		fmt.Fprintf(b, "  mv %s, %s\n", i.Dst, i.Src)
		return
	}

	if i.Dst.Kind == riscvlir.Float {
		fmt.Fprintf(b, "  fmv.w.x %s, %s\n", i.Dst, i.Src)
		return
	}

	fmt.Fprintf(b, "  fmv.x.w %s, %s\n", i.Dst, i.Src)
}

// emitLoadImmFloat materializes a binary32 literal via an integer scratch
// plus a cross-bank move, per the lui/addi route documented on
// riscvlir.LoadImmFloat. t6 is safe to clobber here regardless of what
// else is live: riscvlir.IsFixupScratch excludes it from the register
// allocator's coloring universe, so no virtual is ever assigned to it.
func emitLoadImmFloat(b *strings.Builder, i riscvlir.LoadImmFloat) {
	bits := int64(int32(math.Float32bits(i.Imm)))
	scratch := riscvlir.P(31, riscvlir.Int) // t6
	hi, lo := riscvlir.HiLo(bits)

	fmt.Fprintf(b, "  lui %s, %d\n", scratch, hi)
	fmt.Fprintf(b, "  addi %s, %s, %d\n", scratch, scratch, lo)
	fmt.Fprintf(b, "  fmv.w.x %s, %s\n", i.Dst, scratch)
}

func widthSuffix(width int, k riscvlir.Kind) string {
	if k == riscvlir.Float {
		if width == riscvlir.W8 {
			return "d"
		}

		return "w"
	}

	if width == riscvlir.W8 {
		return "d"
	}

	return "w"
}

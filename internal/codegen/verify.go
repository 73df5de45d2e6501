package codegen

import (
	"fmt"

	"github.com/orizon-lang/orizon/internal/riscvlir"
)

// Verify asserts the invariants the pipeline promises once C10 has run
// (spec §4.11): no virtual register survives into the final instruction
// stream, every function's stack slots occupy disjoint byte ranges, and
// every label a Branch or Jump names resolves to a real block. It returns
// the first violation found rather than collecting all of them, matching
// the fail-fast debug_assert style the rest of the pipeline already
// follows for unrecoverable invariant breaks.
func Verify(f *riscvlir.Function) error {
	if f.IsExtern {
		return nil
	}

	if err := verifyNoVirtuals(f); err != nil {
		return err
	}

	if err := verifyStackSlotsDisjoint(f); err != nil {
		return err
	}

	return verifyLabelsResolve(f)
}

func verifyNoVirtuals(f *riscvlir.Function) error {
	for _, b := range f.Blocks {
		for _, inst := range b.Insts {
			for _, r := range riscvlir.AllRegs(inst) {
				if r.IsVirtual() {
					return fmt.Errorf("unallocated virtual register %s survived into %q (%s)", r, inst, b.Label)
				}
			}
		}
	}

	return nil
}

// verifyStackSlotsDisjoint walks f.StackAddr in Pos order and checks each
// slot's [Pos, Pos+Size) range ends at or before the next slot's Pos — the
// property Layout's running offset is supposed to guarantee.
func verifyStackSlotsDisjoint(f *riscvlir.Function) error {
	slots := append([]*riscvlir.StackSlot(nil), f.StackAddr...)

	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.Pos < b.Pos+b.Size && b.Pos < a.Pos+a.Size {
				return fmt.Errorf("overlapping stack slots at offsets %d (size %d) and %d (size %d)", a.Pos, a.Size, b.Pos, b.Size)
			}
		}
	}

	return nil
}

func verifyLabelsResolve(f *riscvlir.Function) error {
	for _, b := range f.Blocks {
		for _, inst := range b.Insts {
			var target string

			switch i := inst.(type) {
			case riscvlir.Branch:
				target = i.Target
			case riscvlir.Jump:
				target = i.Target
			default:
				continue
			}

			if f.Block(target) == nil {
				return fmt.Errorf("block %q references unresolved label %q", b.Label, target)
			}
		}
	}

	return nil
}

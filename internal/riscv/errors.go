// Package riscv holds the ambient engineering surface shared across the
// RISC-V back end's pipeline stages: error types, diagnostic recording,
// and pipeline configuration.
package riscv

import "fmt"

// CompileError names the function, block, and register involved in a
// fatal back-end failure, matching the context the driver's verification
// pass (spec §4.11) needs to report precisely which invariant broke.
type CompileError struct {
	Func  string
	Block string
	Reg   string
	Err   error
}

func (e *CompileError) Error() string {
	ctx := e.Func

	if e.Block != "" {
		ctx = fmt.Sprintf("%s/%s", ctx, e.Block)
	}

	if e.Reg != "" {
		ctx = fmt.Sprintf("%s (%s)", ctx, e.Reg)
	}

	return fmt.Sprintf("%s: %s", ctx, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Wrap builds a CompileError, matching the familiar
// fmt.Errorf("...: %w", err) wrapping style but carrying structured
// context a caller can inspect instead of just a formatted string.
func Wrap(fn, block, reg string, err error) error {
	if err == nil {
		return nil
	}

	return &CompileError{Func: fn, Block: block, Reg: reg, Err: err}
}

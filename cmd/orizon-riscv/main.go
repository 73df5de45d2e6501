// Command orizon-riscv runs the RV64 back end over a MIR JSON file and
// writes the resulting assembly, following the same single-purpose
// cmd/* layout (flag-only CLI, no subcommands) as orizon-repro and
// orizon-profile.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/orizon-lang/orizon/internal/codegen"
	"github.com/orizon-lang/orizon/internal/riscv"
	"github.com/orizon-lang/orizon/internal/riscvasm"
)

func main() {
	var (
		in               string
		out              string
		watch            bool
		abi              string
		simpleCallerSave bool
		maxSpillRetries  int
		enableMulPow2    bool
		enableRemPow2    bool
	)

	flag.StringVar(&in, "in", "", "input MIR JSON file")
	flag.StringVar(&out, "out", "", "output assembly path (default: stdout)")
	flag.BoolVar(&watch, "watch", false, "re-run the pipeline whenever -in changes")
	flag.StringVar(&abi, "abi", "", "psABI revision to target, checked against -min-abi")
	flag.BoolVar(&simpleCallerSave, "simple-callsite", false, "use the slot-per-call caller-save fallback instead of register borrowing")
	flag.IntVar(&maxSpillRetries, "max-spill-retries", 8, "bound on the allocate/spill-rewrite cycle")
	flag.BoolVar(&enableMulPow2, "opt-mul-pow2", false, "rewrite multiplication by a power of two into a shift")
	flag.BoolVar(&enableRemPow2, "opt-rem-pow2", false, "rewrite remainder by a power of two into a mask")
	minABI := flag.String("min-abi", "", "minimum required psABI revision (semver)")
	flag.Parse()

	if in == "" {
		fmt.Fprintln(os.Stderr, "orizon-riscv: -in is required")
		os.Exit(2)
	}

	optFuncs := []riscv.Option{
		riscv.WithSimpleCallerSaveFallback(simpleCallerSave),
		riscv.WithMaxSpillRetries(maxSpillRetries),
		riscv.WithMulPow2Opt(enableMulPow2),
		riscv.WithRemPow2Opt(enableRemPow2),
	}

	if *minABI != "" {
		optFuncs = append(optFuncs, riscv.WithMinABIVersion(*minABI))
	}

	opts := riscv.NewOptions(optFuncs...)

	if abi != "" {
		if err := opts.CheckABIConstraint(abi); err != nil {
			fmt.Fprintf(os.Stderr, "orizon-riscv: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(in, out, opts); err != nil {
		fmt.Fprintf(os.Stderr, "orizon-riscv: %v\n", err)
		os.Exit(1)
	}

	if !watch {
		return
	}

	if err := watchAndRerun(in, out, opts); err != nil {
		fmt.Fprintf(os.Stderr, "orizon-riscv: watch: %v\n", err)
		os.Exit(1)
	}
}

func run(in, out string, opts *riscv.Options) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	m, err := moduleFromJSON(raw)
	if err != nil {
		return err
	}

	lir, diag, err := codegen.Compile(m, opts)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", in, err)
	}

	for _, fn := range m.Functions {
		for _, ev := range diag.ForFunc(fn.Name) {
			fmt.Fprintf(os.Stderr, "orizon-riscv: %s %s/%s: %s\n", ev.Kind, fn.Name, ev.Block, ev.Detail)
		}
	}

	asm, err := riscvasm.Emit(lir)
	if err != nil {
		return fmt.Errorf("emitting assembly: %w", err)
	}

	if out == "" {
		_, err := fmt.Println(asm)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil && filepath.Dir(out) != "." {
		return fmt.Errorf("creating output directory: %w", err)
	}

	return os.WriteFile(out, []byte(asm), 0o644)
}

// watchAndRerun re-invokes run every time in's containing directory
// reports a write to in, the same fsnotify-driven loop
// internal/runtime/vfs's FSNotifyWatcher builds on, trimmed to this
// command's one-file use case.
func watchAndRerun(in, out string, opts *riscv.Options) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(in)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	fmt.Fprintf(os.Stderr, "orizon-riscv: watching %s for changes\n", in)

	target, err := filepath.Abs(in)
	if err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			evPath, err := filepath.Abs(ev.Name)
			if err != nil || evPath != target {
				continue
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if err := run(in, out, opts); err != nil {
				fmt.Fprintf(os.Stderr, "orizon-riscv: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "orizon-riscv: recompiled %s\n", in)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			fmt.Fprintf(os.Stderr, "orizon-riscv: watcher error: %v\n", err)
		}
	}
}

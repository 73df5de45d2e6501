package riscv

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
)

// Options carries the pipeline's tunable toggles, following the same
// config-struct-plus-functional-options idiom internal/packagemanager
// uses for its resolver options.
type Options struct {
	// EnableMulPow2Opt rewrites multiplication by a power of two into a
	// shift left. Off by default (spec §9 open question 1's conservative
	// default).
	EnableMulPow2Opt bool

	// EnableRemPow2Opt rewrites remainder by a power of two into a mask.
	// Off by default, same rationale as EnableMulPow2Opt.
	EnableRemPow2Opt bool

	// ExpandBranchOverflow turns a conditional branch whose target falls
	// outside the +-4KiB window into an inverted branch-over-jump pair
	// (spec §4.10 open question 2). On by default: without it, overflowing
	// branches simply fail to assemble.
	ExpandBranchOverflow bool

	// MaxSpillRetries bounds how many times the allocate/spill-rewrite/
	// liveness cycle (spec §4.11) may repeat before the driver gives up
	// and reports a CompileError.
	MaxSpillRetries int

	// MinABIVersion, when set, is the minimum RV64 psABI revision the
	// emitted assembly must target; the CLI's -abi flag is checked
	// against it with a semver constraint before the pipeline runs.
	MinABIVersion *semver.Version

	// SimpleCallerSaveFallback selects the slot-per-call caller-save
	// strategy instead of the default register-borrowing one (spec §4.8
	// open question 3's two call-site engines).
	SimpleCallerSaveFallback bool
}

// Option mutates an Options value being built by NewOptions.
type Option func(*Options)

// NewOptions builds an Options value from conservative defaults, then
// applies opts in order.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		EnableMulPow2Opt:     false,
		EnableRemPow2Opt:     false,
		ExpandBranchOverflow: true,
		MaxSpillRetries:      8,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func WithMulPow2Opt(enable bool) Option     { return func(o *Options) { o.EnableMulPow2Opt = enable } }
func WithRemPow2Opt(enable bool) Option     { return func(o *Options) { o.EnableRemPow2Opt = enable } }
func WithBranchOverflowExpansion(enable bool) Option {
	return func(o *Options) { o.ExpandBranchOverflow = enable }
}
func WithMaxSpillRetries(n int) Option { return func(o *Options) { o.MaxSpillRetries = n } }
func WithSimpleCallerSaveFallback(enable bool) Option {
	return func(o *Options) { o.SimpleCallerSaveFallback = enable }
}

// WithMinABIVersion parses v as a semver version and sets it as the
// minimum required psABI revision.
func WithMinABIVersion(v string) Option {
	return func(o *Options) {
		if parsed, err := semver.NewVersion(v); err == nil {
			o.MinABIVersion = parsed
		}
	}
}

// CheckABIConstraint validates candidate against o.MinABIVersion using a
// ">=" semver constraint, the same pattern
// internal/packagemanager/resolver.go uses to gate dependency versions.
// A nil MinABIVersion accepts anything.
func (o *Options) CheckABIConstraint(candidate string) error {
	if o.MinABIVersion == nil {
		return nil
	}

	cv, err := semver.NewVersion(candidate)
	if err != nil {
		return fmt.Errorf("parsing ABI version %q: %w", candidate, err)
	}

	constraint, err := semver.NewConstraint(">=" + o.MinABIVersion.String())
	if err != nil {
		return fmt.Errorf("building ABI constraint: %w", err)
	}

	if !constraint.Check(cv) {
		return fmt.Errorf("ABI version %s does not satisfy >=%s", cv, o.MinABIVersion)
	}

	return nil
}

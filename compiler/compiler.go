// Package compiler drives the four-pass pipeline from a parsed module to
// bytecode: prototype building (proto), syntax-context lowering (lower),
// and code generation/finalization (codegen), with an optional sanity
// pass at the end, mirroring go/ssa's BuilderMode-style options struct
// for its own top-level Program.Build entry point.
package compiler

import (
	"janus/bytecode"
	"janus/codegen"
	"janus/diag"
	"janus/lower"
	"janus/proto"
	"janus/pt"
)

// Options configures the pipeline. The zero value runs the minimal,
// fastest path: no sanity checking, no debug names.
type Options struct {
	// EmitDebugNames is accepted but not read by any pass: the
	// compiled module, its disassembly and its error messages are the
	// same whether it is set or not.
	EmitDebugNames bool

	// SanityCheck runs codegen.SanityCheck on every compiled function
	// and turns any reported violation into an error, instead of
	// shipping a bytecode.Module that may violate spec.md §8's
	// invariants. Intended for compiler development and tests; real
	// builds should not need it if every pass is correct.
	SanityCheck bool
}

// Compile runs the full pipeline over a parsed module and produces its
// bytecode form.
func Compile(m pt.Module, opts Options) (*bytecode.Module, error) {
	protos, err := proto.Build(m)
	if err != nil {
		return nil, err
	}

	stModule, err := lower.Module(m, protos)
	if err != nil {
		return nil, err
	}

	bcModule, err := codegen.Module(stModule)
	if err != nil {
		return nil, err
	}

	if opts.SanityCheck {
		if err := checkModule(bcModule); err != nil {
			return nil, err
		}
	}

	return bcModule, nil
}

// checkModule runs codegen.SanityCheck over every function in m and
// reports the first violation found, wrapped as an internal diagnostic
// naming the offending function.
func checkModule(m *bytecode.Module) error {
	for _, f := range m.Functions {
		for _, violation := range codegen.SanityCheck(f) {
			return diag.InternalErrorf("sanity check failed for function %q: %v", f.Name, violation)
		}
	}
	return nil
}

package codegen

import (
	"github.com/bits-and-blooms/bitset"

	"janus/bytecode"
	"janus/diag"
)

// SanityCheck walks a finalized function's instruction streams and
// reports every violation of spec.md §8's quantified invariants it can
// check from bytecode alone: jump locality, reverse pairing, register
// range, and register conservation. It
// mirrors go/ssa's sanity checker in spirit — a post-build pass that
// reports everything wrong rather than stopping at the first problem —
// but, unlike that checker, returns its findings instead of panicking,
// since a malformed function here is an internal compiler bug, not a
// user error, and diag.Internal already exists to say so without a
// panic/recover dance.
func SanityCheck(f *bytecode.Function) []error {
	var errs []error

	checkJumpLocality(f.Forward, "forward", &errs)
	checkJumpLocality(f.Backward, "backward", &errs)
	checkReversePairing(f, &errs)
	checkRegisterRange(f, &errs)
	checkRegisterConservation(f, &errs)

	return errs
}

// checkRegisterConservation walks the forward stream tracking which
// registers are live (via a bitset, one bit per register) and verifies
// the live set starts at exactly BorrowRegisters∪StealRegisters and
// ends at exactly ReturnRegisters (spec.md §8's "register conservation").
// A StoreRegister marks its register live; a FreeRegister marks it
// dead, and it is an internal error to free a register that was never
// live, since that means some earlier pass lost track of ownership.
func checkRegisterConservation(f *bytecode.Function, errs *[]error) {
	if f.NumRegisters == 0 {
		return
	}
	live := bitset.New(uint(f.NumRegisters))
	for _, r := range f.BorrowRegisters {
		live.Set(uint(r))
	}
	for _, r := range f.StealRegisters {
		live.Set(uint(r))
	}

	for i, ins := range f.Forward {
		switch ins.Op {
		case bytecode.StoreRegister, bytecode.StoreGlobalRegister:
			live.Set(uint(ins.Operand))
		case bytecode.FreeRegister:
			if !live.Test(uint(ins.Operand)) {
				*errs = append(*errs, diag.InternalErrorf("sanity: forward instruction %d frees register %d that was not live", i, ins.Operand))
			}
			live.Clear(uint(ins.Operand))
		}
	}

	want := bitset.New(uint(f.NumRegisters))
	for _, r := range f.ReturnRegisters {
		want.Set(uint(r))
	}
	if !live.Equal(want) {
		*errs = append(*errs, diag.InternalErrorf("sanity: live register set at function exit (%s) does not match declared return registers (%s)", live.String(), want.String()))
	}
}

func checkJumpLocality(instrs []bytecode.Instruction, dir string, errs *[]error) {
	n := len(instrs)
	for i, ins := range instrs {
		switch ins.Op {
		case bytecode.Jump, bytecode.JumpIfTrue, bytecode.JumpIfFalse, bytecode.StepIter:
			if ins.Operand < 0 || ins.Operand > n {
				*errs = append(*errs, diag.InternalErrorf("sanity: %s instruction %d (%s) targets out-of-range index %d (len %d)", dir, i, ins.Op, ins.Operand, n))
			}
		}
	}
}

// checkReversePairing verifies that every Reverse placeholder in one
// stream targets a position in the other stream that also holds a
// Reverse (spec.md §8's "Reverse pairing").
func checkReversePairing(f *bytecode.Function, errs *[]error) {
	for i, ins := range f.Forward {
		if ins.Op != bytecode.Reverse {
			continue
		}
		if ins.Operand < 0 || ins.Operand >= len(f.Backward) {
			*errs = append(*errs, diag.InternalErrorf("sanity: forward Reverse at %d targets out-of-range backward index %d", i, ins.Operand))
			continue
		}
		if f.Backward[ins.Operand].Op != bytecode.Reverse {
			*errs = append(*errs, diag.InternalErrorf("sanity: forward Reverse at %d targets backward index %d, which is not a Reverse", i, ins.Operand))
		}
	}
	for i, ins := range f.Backward {
		if ins.Op != bytecode.Reverse {
			continue
		}
		if ins.Operand < 0 || ins.Operand >= len(f.Forward) {
			*errs = append(*errs, diag.InternalErrorf("sanity: backward Reverse at %d targets out-of-range forward index %d", i, ins.Operand))
			continue
		}
		if f.Forward[ins.Operand].Op != bytecode.Reverse {
			*errs = append(*errs, diag.InternalErrorf("sanity: backward Reverse at %d targets forward index %d, which is not a Reverse", i, ins.Operand))
		}
	}
}

// checkRegisterRange verifies every register-carrying instruction stays
// within the function's declared register count.
func checkRegisterRange(f *bytecode.Function, errs *[]error) {
	check := func(instrs []bytecode.Instruction, dir string) {
		for i, ins := range instrs {
			switch ins.Op {
			case bytecode.LoadRegister, bytecode.StoreRegister, bytecode.FreeRegister,
				bytecode.LoadGlobalRegister, bytecode.StoreGlobalRegister,
				bytecode.CreateIter, bytecode.Push, bytecode.Pull:
				if ins.Operand < 0 || ins.Operand >= f.NumRegisters {
					*errs = append(*errs, diag.InternalErrorf("sanity: %s instruction %d (%s) references register %d outside [0,%d)", dir, i, ins.Op, ins.Operand, f.NumRegisters))
				}
			}
		}
	}
	check(f.Forward, "forward")
	check(f.Backward, "backward")
}

package codegen

import "janus/bytecode"

// RewriteGlobal rewrites every LoadRegister/StoreRegister in both
// directions of f to its Global counterpart, in place, so that state
// set up by the module's top-level statements persists into every
// later call (spec.md §4.5).
func RewriteGlobal(f *bytecode.Function) {
	rewriteGlobal(f.Forward)
	rewriteGlobal(f.Backward)
}

func rewriteGlobal(instrs []bytecode.Instruction) {
	for i, ins := range instrs {
		switch ins.Op {
		case bytecode.LoadRegister:
			instrs[i] = bytecode.InsLoadGlobalRegister(ins.Operand)
		case bytecode.StoreRegister:
			instrs[i] = bytecode.InsStoreGlobalRegister(ins.Operand)
		}
	}
}

package codegen

import (
	"janus/bytecode"
	"janus/st"
)

// Module compiles every function of m, applies the global-function
// register rewrite to the synthesized top-level initializer, and
// assembles the resulting bytecode.Module.
func Module(m *st.Module) (*bytecode.Module, error) {
	funcs := make([]*bytecode.Function, len(m.Functions))
	for i, f := range m.Functions {
		compiled, err := Function(f)
		if err != nil {
			return nil, err
		}
		funcs[i] = compiled
	}

	global, err := Function(m.GlobalFunc)
	if err != nil {
		return nil, err
	}
	RewriteGlobal(global)

	globalIdx := len(funcs)
	funcs = append(funcs, global)

	return &bytecode.Module{
		Functions:     funcs,
		MainIdx:       m.MainIdx,
		GlobalFuncIdx: globalIdx,
	}, nil
}
